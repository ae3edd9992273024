package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRequestKeepsExtraAttributes(t *testing.T) {
	var req TokenRequest
	require.NoError(t, json.Unmarshal([]byte(`{"email":" a@x.com ","name":"Ann"}`), &req))

	assert.Equal(t, "a@x.com", req.Email)
	assert.Equal(t, map[string]any{"name": "Ann"}, req.Attributes)
	assert.NoError(t, req.Validate())
}

func TestTokenRequestValidate(t *testing.T) {
	assert.Error(t, TokenRequest{}.Validate(), "missing email")
	assert.Error(t, TokenRequest{Email: "a.x.com"}.Validate(), "malformed email")
}
