package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleMember))
	assert.True(t, IsValidRole(RoleAdmin))
	assert.False(t, IsValidRole("superadmin"))
	assert.False(t, IsValidRole(""))
	assert.False(t, IsValidRole("ADMIN"))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "passw0rd", false},
		{"valid long", "correct horse 1 battery", false},
		{"too short", "pass1", true},
		{"no digit", "password", true},
		{"no letter", "12345678", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUserToken_Expired(t *testing.T) {
	now := time.Now()
	tok := UserToken{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, tok.Expired(now))
	assert.True(t, tok.Expired(now.Add(2*time.Hour)))
}
