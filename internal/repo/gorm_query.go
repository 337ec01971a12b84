package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portfolio-api/internal/query"
)

// collection 把 query.Query 翻译成 gorm 查询；columns 是字段名 -> 列名 白名单
type collection[T any] struct {
	db      *gorm.DB
	columns map[string]string
}

func (c collection[T]) Find(ctx context.Context, q query.Query) ([]T, error) {
	tx, err := c.where(c.db.WithContext(ctx).Model(new(T)), q.Filter)
	if err != nil {
		return nil, err
	}
	for _, s := range q.Sort {
		col, ok := c.columns[s.Field]
		if !ok {
			return nil, fmt.Errorf("repo: unknown sort field %q", s.Field)
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: s.Desc})
	}
	if q.Skip > 0 {
		tx = tx.Offset(q.Skip)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	out := []T{}
	if err := tx.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (c collection[T]) Count(ctx context.Context, f query.Filter) (int64, error) {
	tx, err := c.where(c.db.WithContext(ctx).Model(new(T)), f)
	if err != nil {
		return 0, err
	}
	var n int64
	return n, tx.Count(&n).Error
}

func (c collection[T]) where(tx *gorm.DB, f query.Filter) (*gorm.DB, error) {
	for _, cond := range f.All {
		e, err := c.expr(cond)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(e)
	}
	if len(f.Any) > 0 {
		ors := make([]clause.Expression, 0, len(f.Any))
		for _, cond := range f.Any {
			e, err := c.expr(cond)
			if err != nil {
				return nil, err
			}
			ors = append(ors, e)
		}
		tx = tx.Where(clause.Or(ors...))
	}
	return tx, nil
}

func (c collection[T]) expr(cond query.Cond) (clause.Expression, error) {
	col, ok := c.columns[cond.Field]
	if !ok {
		return nil, fmt.Errorf("repo: unknown filter field %q", cond.Field)
	}
	column := clause.Column{Name: col}
	switch cond.Op {
	case query.OpEq:
		return clause.Eq{Column: column, Value: cond.Value}, nil
	case query.OpContainsFold:
		s, _ := cond.Value.(string)
		return containsFold(column, strings.ToLower(s)), nil
	case query.OpHasFold:
		// 列表字段以 JSON 文本存储，按元素在 JSON 中的编码形式做子串匹配
		s, _ := cond.Value.(string)
		needle := elementNeedle(strings.ToLower(s))
		if needle == "" {
			return clause.Expr{SQL: "1 = 0"}, nil
		}
		return containsFold(column, needle), nil
	default:
		return nil, fmt.Errorf("repo: unsupported op %d", cond.Op)
	}
}

func containsFold(column clause.Column, s string) clause.Expression {
	return clause.Expr{
		SQL:  "LOWER(?) LIKE ? ESCAPE '!'",
		Vars: []any{column, "%" + escapeLike(s) + "%"},
	}
}

// elementNeedle 返回 s 在 JSON 字符串数组中的编码形式。
// 引号与反斜杠被转义后无法跨越元素边界；首尾的 [ ] , 会命中数组结构本身，去掉。
// 为空时该条件不可能成立
func elementNeedle(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	enc := string(b[1 : len(b)-1])
	return strings.Trim(enc, "[],")
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }
