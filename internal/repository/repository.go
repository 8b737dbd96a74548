// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Repository 通用仓储接口
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*T, int, error)
}

// ListFilter 列表查询过滤器
type ListFilter struct {
	Region   string                 `json:"region,omitempty"`
	Category string                 `json:"category,omitempty"`
	Season   string                 `json:"season,omitempty"`
	Tier     string                 `json:"tier,omitempty"`
	Search   string                 `json:"search,omitempty"`
	Offset   int                    `json:"offset"`
	Limit    int                    `json:"limit"`
	OrderBy  string                 `json:"order_by,omitempty"`
	OrderDir string                 `json:"order_dir,omitempty"` // asc/desc
	Extra    map[string]interface{} `json:"extra,omitempty"`
}

// DefaultListFilter 返回默认过滤器
func DefaultListFilter() ListFilter {
	return ListFilter{
		Offset:   0,
		Limit:    20,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}

// WithLimit 设置限制
func (f ListFilter) WithLimit(limit int) ListFilter {
	f.Limit = limit
	return f
}

// WithOffset 设置偏移
func (f ListFilter) WithOffset(offset int) ListFilter {
	f.Offset = offset
	return f
}

// WithRegion 设置地区过滤
func (f ListFilter) WithRegion(region string) ListFilter {
	f.Region = region
	return f
}

// WithCategory 设置类别过滤
func (f ListFilter) WithCategory(category string) ListFilter {
	f.Category = category
	return f
}

// WithSeason 设置季节过滤
func (f ListFilter) WithSeason(season string) ListFilter {
	f.Season = season
	return f
}

// DB 数据库接口
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Tx 事务接口
type Tx interface {
	DB
	Commit() error
	Rollback() error
}

// TxFunc 事务函数类型
type TxFunc func(tx Tx) error

// Scanner 行扫描接口
type Scanner interface {
	Scan(dest ...interface{}) error
}
