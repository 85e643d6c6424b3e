package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Jane Doe", (&User{ID: "1", FirstName: "Jane", LastName: "Doe"}).DisplayName())
	assert.Equal(t, "Jane", (&User{ID: "1", FirstName: "Jane"}).DisplayName())
	assert.Equal(t, "jane", (&User{ID: "1", Username: "jane"}).DisplayName())
	assert.Equal(t, "1", (&User{ID: "1"}).DisplayName())
}
