package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleEmployee.Above(RoleClient))
	assert.True(t, RoleOwner.Above(RoleEmployee))
	assert.True(t, RoleOwner.Above(RoleClient))

	assert.False(t, RoleClient.Above(RoleClient))
	assert.False(t, RoleEmployee.Above(RoleEmployee))
	assert.False(t, RoleClient.Above(RoleEmployee))

	assert.True(t, RoleOwner.AtLeast(RoleOwner))
	assert.True(t, RoleOwner.AtLeast(RoleClient))
	assert.False(t, RoleEmployee.AtLeast(RoleOwner))
}

func TestParseRole(t *testing.T) {
	for rank, want := range map[int]Role{0: RoleClient, 1: RoleEmployee, 2: RoleOwner} {
		got, err := ParseRole(rank)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseRole(3)
	assert.Error(t, err)
	_, err = ParseRole(-1)
	assert.Error(t, err)
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "client", RoleClient.String())
	assert.Equal(t, "employee", RoleEmployee.String())
	assert.Equal(t, "owner", RoleOwner.String())
}
