package client

import (
	"context"
	"sync"
)

// Session 把接口调用与 Reduce 串起来，并同步 Client 的令牌
type Session struct {
	c *Client

	mu    sync.Mutex
	state State
	subs  []func(State)
}

// NewSession 以 Client 当前令牌作为初始令牌
func NewSession(c *Client) *Session {
	return &Session{c: c, state: InitialState(c.Token())}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe 每次状态变化后回调
func (s *Session) Subscribe(fn func(State)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Session) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	st := s.state
	subs := append(([]func(State))(nil), s.subs...)
	s.mu.Unlock()

	s.c.SetToken(st.Token)
	for _, fn := range subs {
		fn(st)
	}
	return st
}

// Restore 校验已保存的令牌；无令牌时直接结束加载
func (s *Session) Restore(ctx context.Context) error {
	tok := s.c.Token()
	if tok == "" {
		s.Dispatch(AuthFailure{})
		return nil
	}
	s.Dispatch(AuthStart{})
	u, err := s.c.Me(ctx)
	if err != nil {
		s.Dispatch(AuthFailure{Err: "Session expired"})
		return err
	}
	s.Dispatch(AuthSuccess{User: u, Token: tok})
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	s.Dispatch(AuthStart{})
	u, tok, err := s.c.Login(ctx, email, password)
	if err != nil {
		s.Dispatch(AuthFailure{Err: MessageOf(err, "Login failed")})
		return err
	}
	s.Dispatch(AuthSuccess{User: u, Token: tok})
	return nil
}

func (s *Session) Register(ctx context.Context, name, email, password string) error {
	s.Dispatch(AuthStart{})
	u, tok, err := s.c.Register(ctx, name, email, password)
	if err != nil {
		s.Dispatch(AuthFailure{Err: MessageOf(err, "Registration failed")})
		return err
	}
	s.Dispatch(AuthSuccess{User: u, Token: tok})
	return nil
}

// Logout 无论服务端是否成功都会清空本地登录态
func (s *Session) Logout(ctx context.Context) error {
	err := s.c.Logout(ctx)
	s.Dispatch(Logout{})
	return err
}

func (s *Session) UpdateProfile(ctx context.Context, in ProfileInput) error {
	u, err := s.c.UpdateProfile(ctx, in)
	if err != nil {
		return err
	}
	if u != nil {
		s.Dispatch(UpdateUser{User: *u})
	}
	return nil
}

func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	return s.c.ChangePassword(ctx, current, next)
}

func (s *Session) ClearError() { s.Dispatch(ClearError{}) }
