package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReduce(t *testing.T) {
	ada := &User{ID: "u-1", Name: "Ada", Email: "ada@example.com", Role: "user"}
	signedIn := State{User: ada, Token: "tok", IsAuthenticated: true}

	cases := []struct {
		name string
		in   State
		act  Action
		want State
	}{
		{"start clears error", State{Error: "boom", Token: "tok"}, AuthStart{}, State{Token: "tok", Loading: true}},
		{"success", State{Loading: true, Error: "x"}, AuthSuccess{User: ada, Token: "tok"}, signedIn},
		{"failure drops session", signedIn, AuthFailure{Err: "Invalid credentials"}, State{Error: "Invalid credentials"}},
		{"logout", signedIn, Logout{}, State{}},
		{"clear error keeps session", State{User: ada, Token: "tok", IsAuthenticated: true, Error: "x"}, ClearError{}, signedIn},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Reduce(tc.in, tc.act))
		})
	}
}

func TestReduce_UpdateUserMerges(t *testing.T) {
	ada := &User{ID: "u-1", Name: "Ada", Email: "ada@example.com", Role: "user"}
	s := State{User: ada, Token: "tok", IsAuthenticated: true}

	got := Reduce(s, UpdateUser{User: User{Name: "Ada L."}})
	assert.Equal(t, "Ada L.", got.User.Name)
	assert.Equal(t, "ada@example.com", got.User.Email)
	assert.True(t, got.IsAuthenticated)
	// 原状态不变
	assert.Equal(t, "Ada", ada.Name)
}

func TestInitialState(t *testing.T) {
	s := InitialState("saved")
	assert.True(t, s.Loading)
	assert.False(t, s.IsAuthenticated)
	assert.Equal(t, "saved", s.Token)
}
