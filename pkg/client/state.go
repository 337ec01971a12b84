package client

// State 客户端登录态
type State struct {
	User            *User
	Token           string
	IsAuthenticated bool
	Loading         bool
	Error           string
}

// InitialState 带本地保存的令牌启动，等待 Restore 校验
func InitialState(token string) State {
	return State{Token: token, Loading: true}
}

// Action 为封闭集合，只有本包内的类型实现
type Action interface{ action() }

type AuthStart struct{}

type AuthSuccess struct {
	User  *User
	Token string
}

type AuthFailure struct{ Err string }

type Logout struct{}

// UpdateUser 只覆盖非零字段
type UpdateUser struct{ User User }

type ClearError struct{}

func (AuthStart) action()   {}
func (AuthSuccess) action() {}
func (AuthFailure) action() {}
func (Logout) action()      {}
func (UpdateUser) action()  {}
func (ClearError) action()  {}

// Reduce 纯函数，不修改入参
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case AuthStart:
		s.Loading = true
		s.Error = ""
	case AuthSuccess:
		s = State{User: a.User, Token: a.Token, IsAuthenticated: true}
	case AuthFailure:
		s = State{Error: a.Err}
	case Logout:
		s = State{}
	case UpdateUser:
		s.User = mergeUser(s.User, a.User)
	case ClearError:
		s.Error = ""
	}
	return s
}

func mergeUser(cur *User, patch User) *User {
	var u User
	if cur != nil {
		u = *cur
	}
	if patch.ID != "" {
		u.ID = patch.ID
	}
	if patch.Name != "" {
		u.Name = patch.Name
	}
	if patch.Email != "" {
		u.Email = patch.Email
	}
	if patch.Role != "" {
		u.Role = patch.Role
	}
	if !patch.CreatedAt.IsZero() {
		u.CreatedAt = patch.CreatedAt
	}
	if !patch.UpdatedAt.IsZero() {
		u.UpdatedAt = patch.UpdatedAt
	}
	return &u
}
