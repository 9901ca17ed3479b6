package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveNameFromEmail(t *testing.T) {
	tests := []struct {
		email string
		first string
		last  string
	}{
		{"jane.doe@example.com", "Jane", "Doe"},
		{"jane_doe@example.com", "Jane", "Doe"},
		{"jane-van-doe@example.com", "Jane", "Doe"},
		{"jane@example.com", "Jane", "User"},
		{"", "User", "User"},
		{"jane.doe", "Jane", "Doe"},
	}
	for _, tt := range tests {
		first, last := DeriveNameFromEmail(tt.email)
		assert.Equal(t, tt.first, first, tt.email)
		assert.Equal(t, tt.last, last, tt.email)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Jane Doe", DisplayName("jane.doe@example.com"))
	assert.Equal(t, "Jane", DisplayName("jane@example.com"))
}
