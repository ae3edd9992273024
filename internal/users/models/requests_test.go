package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"email only", RegisterRequest{Email: "a@x.com"}, false},
		{"full profile", RegisterRequest{Name: "Ann", Email: "a@x.com", PhotoURL: "https://img.example/a.png"}, false},
		{"missing email", RegisterRequest{Name: "Ann"}, true},
		{"malformed email", RegisterRequest{Email: "a@"}, true},
		{"bad photo url", RegisterRequest{Email: "a@x.com", PhotoURL: "not a url"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeKeepsEmailCase(t *testing.T) {
	req := RegisterRequest{Name: " Ann ", Email: " Ann@X.com ", PhotoURL: " https://img.example/a.png "}
	req.Normalize()
	assert.Equal(t, "Ann", req.Name)
	assert.Equal(t, "Ann@X.com", req.Email)
	assert.Equal(t, "https://img.example/a.png", req.PhotoURL)
}
