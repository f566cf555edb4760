package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRegisterRequest(t *testing.T) {
	tests := []struct {
		name       string
		req        RegisterRequest
		wantFields []string
		wantMsgs   []string
	}{
		{
			name: "valid",
			req:  RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password1", ConfirmPassword: "password1"},
		},
		{
			name:       "short username after trim",
			req:        RegisterRequest{Username: "  al  ", Email: "alice@example.com", Password: "password1", ConfirmPassword: "password1"},
			wantFields: []string{"Username"},
		},
		{
			name: "username at column limit",
			req:  RegisterRequest{Username: strings.Repeat("a", 50), Email: "alice@example.com", Password: "password1", ConfirmPassword: "password1"},
		},
		{
			name:       "username too long",
			req:        RegisterRequest{Username: strings.Repeat("a", 51), Email: "alice@example.com", Password: "password1", ConfirmPassword: "password1"},
			wantFields: []string{"Username"},
			wantMsgs:   []string{"Username must be at most 50 characters"},
		},
		{
			name:       "email too long",
			req:        RegisterRequest{Username: "alice", Email: strings.Repeat("a", 250) + "@example.com", Password: "password1", ConfirmPassword: "password1"},
			wantFields: []string{"Email"},
			wantMsgs:   []string{"Email must be at most 255 characters"},
		},
		{
			name:       "bad email",
			req:        RegisterRequest{Username: "alice", Email: "not-an-email", Password: "password1", ConfirmPassword: "password1"},
			wantFields: []string{"Email"},
		},
		{
			name:       "short password and mismatch",
			req:        RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "short", ConfirmPassword: "other"},
			wantFields: []string{"Password", "ConfirmPassword"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			errs := ValidateRegisterRequest(&req)
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
			if tt.wantMsgs != nil {
				assert.Equal(t, tt.wantMsgs, errs.Messages())
			}
		})
	}
}

func TestValidateRegisterRequest_Normalizes(t *testing.T) {
	req := RegisterRequest{Username: "  alice ", Email: "  Alice@Example.COM ", Password: "password1", ConfirmPassword: "password1"}
	require.Empty(t, ValidateRegisterRequest(&req))
	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "alice@example.com", req.Email)
}

func TestValidateLoginRequest(t *testing.T) {
	req := LoginRequest{Email: " Bob@Example.com", Password: ""}
	errs := ValidateLoginRequest(&req)
	require.Len(t, errs, 1)
	assert.Equal(t, "Password is required", errs[0].Message())
	assert.Equal(t, "bob@example.com", req.Email)

	long := LoginRequest{Email: strings.Repeat("b", 250) + "@example.com", Password: "password1"}
	errs = ValidateLoginRequest(&long)
	require.Len(t, errs, 1)
	assert.Equal(t, "Email must be at most 255 characters", errs[0].Message())
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "Username", Tag: "min"},
		{Field: "ConfirmPassword", Tag: "eqfield"},
	}
	assert.Equal(t, "Username must be at least 3 characters. Passwords do not match", errs.Error())
}
