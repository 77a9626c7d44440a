package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionFlashes(t *testing.T) {
	s := &Session{}
	assert.Nil(t, s.PopFlashes())

	s.AddFlash("success", "Login successful!")
	s.AddFlash("danger", "Unauthorized access!")

	got := s.PopFlashes()
	assert.Equal(t, []Flash{
		{Category: "success", Message: "Login successful!"},
		{Category: "danger", Message: "Unauthorized access!"},
	}, got)
	assert.Empty(t, s.Flashes)
}

func TestSessionRoles(t *testing.T) {
	anon := &Session{Role: RoleAdmin}
	assert.False(t, anon.IsAuthenticated())
	assert.False(t, anon.HasRole(RoleAdmin))

	passenger := &Session{UserID: 1, Role: RolePassenger}
	assert.True(t, passenger.HasRole(RolePassenger))
	assert.False(t, passenger.HasRole(RoleAdmin))
}
