package response

import "portfolio-api/internal/query"

// Resp 统一响应外壳
type Resp struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError 单个字段的校验失败原因
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// List 分页列表外壳；Data 为空时也序列化为 []
type List[T any] struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Total   int64  `json:"total"`
	Page    int    `json:"page"`
	Pages   int    `json:"pages"`
	Query   string `json:"query,omitempty"`
	Data    []T    `json:"data"`
}

func OK(data any) Resp { return Resp{Success: true, Data: data} }

func Msg(msg string) Resp { return Resp{Success: true, Message: msg} }

func OKMsg(msg string, data any) Resp { return Resp{Success: true, Message: msg, Data: data} }

func Error(msg string) Resp { return Resp{Success: false, Message: msg} }

func Invalid(msg string, errs []FieldError) Resp {
	return Resp{Success: false, Message: msg, Errors: errs}
}

// FromPage 把分页结果转换为列表外壳
func FromPage[T any](p query.Page[T]) List[T] {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return List[T]{
		Success: true,
		Count:   len(items),
		Total:   p.Total,
		Page:    p.Page,
		Pages:   p.Pages,
		Data:    items,
	}
}
