package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"portfolio-api/internal/domain"
	"portfolio-api/internal/query"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

type mockContactRepo struct {
	mock.Mock
}

func (m *mockContactRepo) Find(ctx context.Context, q query.Query) ([]domain.Contact, error) {
	args := m.Called(ctx, q)
	cs, _ := args.Get(0).([]domain.Contact)
	return cs, args.Error(1)
}

func (m *mockContactRepo) Count(ctx context.Context, f query.Filter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockContactRepo) FindByID(ctx context.Context, id string) (*domain.Contact, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*domain.Contact)
	return c, args.Error(1)
}

func (m *mockContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockContactRepo) MarkRead(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockContactRepo) UpdateStatus(ctx context.Context, id string, s domain.ContactStatus) (bool, error) {
	args := m.Called(ctx, id, s)
	return args.Bool(0), args.Error(1)
}

func (m *mockContactRepo) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockContactRepo) CountByStatus(ctx context.Context) (map[domain.ContactStatus]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[domain.ContactStatus]int64)
	return counts, args.Error(1)
}

func (m *mockContactRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

type stubIssuer struct{ err error }

func (s stubIssuer) Issue(uid string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + uid, nil
}

type revokeCall struct {
	id    string
	until time.Time
}

type recordingDenylist struct{ calls []revokeCall }

func (d *recordingDenylist) Revoke(_ context.Context, id string, until time.Time) error {
	d.calls = append(d.calls, revokeCall{id, until})
	return nil
}

func (d *recordingDenylist) IsRevoked(context.Context, string) (bool, error) { return false, nil }
