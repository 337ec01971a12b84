package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Rules is the per-route allow-list. Parameters it does not name are ignored.
type Rules struct {
	// Exact maps a parameter to an exact-match filter on the field of the same name.
	// A nil check accepts any non-empty value.
	Exact map[string]func(string) bool

	// Featured recognizes featured=true.
	Featured bool

	// Search recognizes q; nil means q is ignored.
	Search *Search

	DefaultLimit int
	Sort         []Sort
}

type Search struct {
	Required bool
	Contains []string // 文本字段，子串匹配
	Has      []string // 列表字段，元素匹配
}

// Build applies s to raw. page and limit must be positive integers when present,
// and limit may not exceed MaxLimit.
func Build(raw url.Values, s Rules) (Query, error) {
	page, err := positiveInt(raw, "page", 1)
	if err != nil {
		return Query{}, err
	}
	def := s.DefaultLimit
	if def <= 0 {
		def = 10
	}
	limit, err := positiveInt(raw, "limit", def)
	if err != nil {
		return Query{}, err
	}
	if limit > MaxLimit {
		return Query{}, &ParamError{Param: "limit", Reason: "must not exceed " + strconv.Itoa(MaxLimit)}
	}

	var f Filter

	keys := make([]string, 0, len(s.Exact))
	for k := range s.Exact {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.TrimSpace(raw.Get(k))
		if v == "" {
			continue
		}
		if check := s.Exact[k]; check != nil && !check(v) {
			return Query{}, &ParamError{Param: k, Reason: "unsupported value " + strconv.Quote(v)}
		}
		f.All = append(f.All, Cond{Field: k, Op: OpEq, Value: v})
	}

	if s.Featured && raw.Get("featured") == "true" {
		f.All = append(f.All, Cond{Field: "featured", Op: OpEq, Value: true})
	}

	if s.Search != nil {
		q := strings.TrimSpace(raw.Get("q"))
		if q == "" && s.Search.Required {
			return Query{}, ErrSearchRequired
		}
		if q != "" {
			for _, field := range s.Search.Contains {
				f.Any = append(f.Any, Cond{Field: field, Op: OpContainsFold, Value: q})
			}
			for _, field := range s.Search.Has {
				f.Any = append(f.Any, Cond{Field: field, Op: OpHasFold, Value: q})
			}
		}
	}

	// id 作为最终排序键，保证相同查询结果稳定
	order := append(append([]Sort(nil), s.Sort...), Sort{Field: "id"})

	return Query{
		Filter: f,
		Sort:   order,
		Page:   page,
		Skip:   (page - 1) * limit,
		Limit:  limit,
	}, nil
}

func positiveInt(raw url.Values, key string, def int) (int, error) {
	if !raw.Has(key) {
		return def, nil
	}
	s := strings.TrimSpace(raw.Get(key))
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, &ParamError{Param: key, Reason: "must be a positive integer"}
	}
	return n, nil
}
