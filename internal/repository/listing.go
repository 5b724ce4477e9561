// internal/repository/listing.go
package repository

import (
	"context"
	"fmt"
	"strings"

	"studyflow/internal/model"

	"gorm.io/gorm"
)

// defaultPageSize はリポジトリ側のフォールバック値。通常は設定値が渡される。
const defaultPageSize = 20

// ListConfig はリソースごとの絞り込み・検索・並び替えの許可フィールドです。
// 許可リスト外のパラメータは黙って無視する。
type ListConfig struct {
	FilterColumns map[string]string // クエリパラメータ名 -> カラム名
	SearchColumns []string          // 部分一致検索の対象カラム
	OrderColumns  map[string]string // orderingパラメータ名 -> カラム名
	DefaultOrder  string            // 例: "created_at DESC"
}

// scope は ListParams をGORMのクエリ条件に変換します (並び替え・ページングは別)
func (c ListConfig) scope(p model.ListParams) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for key, value := range p.Filters {
			column, ok := c.FilterColumns[key]
			if !ok {
				continue
			}
			db = db.Where(fmt.Sprintf("%s = ?", column), value)
		}
		if p.Search != "" && len(c.SearchColumns) > 0 {
			pattern := "%" + strings.ToLower(p.Search) + "%"
			conds := make([]string, 0, len(c.SearchColumns))
			args := make([]interface{}, 0, len(c.SearchColumns))
			for _, column := range c.SearchColumns {
				conds = append(conds, fmt.Sprintf("lower(%s) LIKE ?", column))
				args = append(args, pattern)
			}
			db = db.Where(strings.Join(conds, " OR "), args...)
		}
		return db
	}
}

// order は ordering パラメータ ("-created_at" で降順) を解決します
func (c ListConfig) order(p model.ListParams) string {
	if p.Ordering != "" {
		field := p.Ordering
		desc := false
		if strings.HasPrefix(field, "-") {
			field = field[1:]
			desc = true
		}
		if column, ok := c.OrderColumns[field]; ok {
			if desc {
				return column + " DESC"
			}
			return column + " ASC"
		}
	}
	return c.DefaultOrder
}

// List はフィルタ・検索・並び替え・ページングを適用してコレクションを取得します。
// extra には固定の絞り込み (例: question_type='vocabulary') を渡せる。
func List[T any](ctx context.Context, db *gorm.DB, cfg ListConfig, p model.ListParams, extra func(*gorm.DB) *gorm.DB, preloads ...string) (*model.ListResult[*T], error) {
	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}

	base := db.WithContext(ctx).Model(new(T)).Scopes(cfg.scope(p))
	if extra != nil {
		base = extra(base)
	}

	var count int64
	if err := base.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, err
	}

	query := base.Session(&gorm.Session{}).
		Order(cfg.order(p)).
		Limit(pageSize).
		Offset((page - 1) * pageSize)
	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	var items []*T
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}

	return &model.ListResult[*T]{
		Count:    count,
		Page:     page,
		PageSize: pageSize,
		Results:  items,
	}, nil
}
