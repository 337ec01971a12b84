package domain

// Role 是封闭枚举；非法角色在解析阶段即被拒绝
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}
