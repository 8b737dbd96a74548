// XingCheng 行程规划引擎服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/xingcheng/xingcheng/internal/config"
	"github.com/xingcheng/xingcheng/internal/database"
	"github.com/xingcheng/xingcheng/internal/handler"
	"github.com/xingcheng/xingcheng/internal/metrics"
	"github.com/xingcheng/xingcheng/internal/middleware"
	"github.com/xingcheng/xingcheng/internal/repository"
	"github.com/xingcheng/xingcheng/pkg/editor"
	"github.com/xingcheng/xingcheng/pkg/logger"
	"github.com/xingcheng/xingcheng/pkg/planner/filter"
	"github.com/xingcheng/xingcheng/pkg/planner/score"
	"github.com/xingcheng/xingcheng/pkg/travel"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// .env 不存在时忽略，直接读环境变量
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: "console",
	})

	// 打印版本信息
	fmt.Printf("XingCheng 行程规划引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	// 数据库可选：连接失败时降级为无持久化模式，行程生成依赖请求内联的景点目录
	var (
		pois  handler.POICatalog
		plans handler.PlanStore
		db    *database.DB
	)
	if db, err = database.New(&cfg.Database); err != nil {
		logger.Warn().Err(err).Msg("数据库不可用，以无持久化模式启动")
		db = nil
	} else {
		pois = repository.NewPOIRepository(db)
		plans = repository.NewPlanRepository(db)
		go sampleDBStats(db)
	}

	builderCfg := cfg.Planner.BuilderConfig()

	// 创建处理器
	planHandler := handler.NewPlanHandler(pois, plans, builderCfg, cfg.Planner.Seed)
	ed := editor.New(filter.Default(), score.NewEngine(score.DefaultWeights()), travel.NewEstimator(), builderCfg)
	editHandler := handler.NewEditHandler(pois, plans, ed)

	// 创建 HTTP 服务器
	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		if db != nil {
			if err := db.Health(r.Context()); err != nil {
				status = "degraded"
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"%s","service":"xingcheng"}`, status)
	})

	// 版本信息端点
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "XingCheng 行程规划引擎 API v1",
			"endpoints": {
				"plans": {
					"generate": "POST /api/v1/plans/generate",
					"get": "GET /api/v1/plans/get?id=",
					"list": "GET /api/v1/plans/list",
					"edit": "POST /api/v1/plans/edit"
				}
			}
		}`))
	})

	// 行程生成 API
	mux.HandleFunc("/api/v1/plans/generate", planHandler.Generate)

	// 行程查询 API
	mux.HandleFunc("/api/v1/plans/get", planHandler.Get)
	mux.HandleFunc("/api/v1/plans/list", planHandler.List)

	// 行程编辑 API
	mux.HandleFunc("/api/v1/plans/edit", editHandler.Edit)

	// ========================================
	// 监控端点
	// ========================================

	// Prometheus 指标端点
	if cfg.Metrics.Enabled {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, metrics.Handler())
	}

	// ========================================
	// 中间件
	// ========================================

	// 中间件执行顺序：requestID -> rateLimit -> cors -> recovery -> accessLog -> handler
	rateLimiter := newRateLimiter(float64(cfg.API.RateLimit))
	var root http.Handler = middleware.AccessLogMiddleware(mux)
	root = middleware.RecoveryMiddleware(root)
	if cfg.API.CORS.Enabled {
		root = middleware.CORSMiddleware(cfg.API.CORS.Origins)(root)
	}
	root = rateLimitMiddleware(rateLimiter, root)
	root = middleware.RequestIDMiddleware(root)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("env", cfg.App.Env).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("数据库关闭失败")
		}
	}

	logger.Info().Msg("服务器已关闭")
}

// sampleDBStats 周期性采样连接池状态上报指标
func sampleDBStats(db *database.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		stats := db.Stats()
		metrics.SetDBConnections("open", stats.OpenConnections)
		metrics.SetDBConnections("in_use", stats.InUse)
		metrics.SetDBConnections("idle", stats.Idle)
	}
}

// rateLimiter 简单的令牌桶限流器
type rateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // 每秒添加的令牌数
	lastRefill time.Time
	mu         sync.Mutex
}

// newRateLimiter 创建限流器
func newRateLimiter(requestsPerSecond float64) *rateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 100
	}
	return &rateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2, // 允许突发流量
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// allow 检查是否允许请求
func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// rateLimitMiddleware 限流中间件
func rateLimitMiddleware(rl *rateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "RATE_LIMITED",
				"message": "请求过于频繁，请稍后重试",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
