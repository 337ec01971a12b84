package domain

import "errors"

// ErrDuplicate 表示违反唯一约束（如重复邮箱）
var ErrDuplicate = errors.New("duplicate record")
