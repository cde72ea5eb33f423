package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		role  string
		want  Role
	}{
		{"roles list wins", []string{"manager", "user"}, "user", RoleManager},
		{"singular role fallback", nil, "manager", RoleManager},
		{"empty roles list falls through", []string{}, "user", RoleUser},
		{"default when nothing present", nil, "", RoleUser},
		{"blank list entry falls through", []string{""}, "manager", RoleManager},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRole(tt.roles, tt.role))
		})
	}
}

func TestSessionValid(t *testing.T) {
	full := &Session{ID: "1", Name: "A", Email: "a@b.com", Role: RoleUser, Token: "tok"}
	assert.True(t, full.Valid())

	var nilSession *Session
	assert.False(t, nilSession.Valid())

	assert.False(t, (&Session{Name: "A", Email: "a@b.com", Token: "tok"}).Valid())
	assert.False(t, (&Session{ID: "1", Email: "a@b.com", Token: "tok"}).Valid())
	assert.False(t, (&Session{ID: "1", Name: "A", Token: "tok"}).Valid())
	assert.False(t, (&Session{ID: "1", Name: "A", Email: "a@b.com"}).Valid())
}

func TestIsManager(t *testing.T) {
	assert.True(t, (&Session{Role: RoleManager}).IsManager())
	assert.False(t, (&Session{Role: RoleUser}).IsManager())

	var nilSession *Session
	assert.False(t, nilSession.IsManager())
}
