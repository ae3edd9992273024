package e2e

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext holds per-scenario state: the last response, issued tokens and
// registered user IDs. Emails in feature files are made unique per scenario
// so runs against a persistent database do not collide.
type TestContext struct {
	BaseURL    string
	AdminEmail string

	client     *http.Client
	run        string
	clientIP   string
	lastStatus int
	lastBody   []byte
	lastHeader http.Header
	tokens     map[string]string
	userIDs    map[string]string
}

func NewTestContext(baseURL, adminEmail string) *TestContext {
	return &TestContext{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AdminEmail: adminEmail,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset starts a new scenario.
func (tc *TestContext) Reset() {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	tc.run = hex.EncodeToString(buf)
	tc.clientIP = fmt.Sprintf("10.%d.%d.%d", buf[0], buf[1], buf[2])
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.lastHeader = nil
	tc.tokens = map[string]string{}
	tc.userIDs = map[string]string{}
}

// Email maps a feature-file email to this scenario's address. The bootstrap
// admin keeps its configured address.
func (tc *TestContext) Email(name string) string {
	if name == "admin" || name == tc.AdminEmail {
		return tc.AdminEmail
	}
	local, domain, ok := strings.Cut(name, "@")
	if !ok {
		return name
	}
	return local + "+" + tc.run + "@" + domain
}

func (tc *TestContext) Do(method, path, token string, headers map[string]string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// Each scenario presents its own client address so the per-address
	// limits on issuance and registration do not leak across scenarios.
	req.Header.Set("X-Forwarded-For", tc.clientIP)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastHeader = resp.Header
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) LastStatus() int         { return tc.lastStatus }
func (tc *TestContext) LastBody() []byte        { return tc.lastBody }
func (tc *TestContext) LastHeader() http.Header { return tc.lastHeader }

// ResponseField reads a top-level field of the last JSON object response.
func (tc *TestContext) ResponseField(field string) (any, error) {
	var obj map[string]any
	if err := json.Unmarshal(tc.lastBody, &obj); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", tc.lastBody)
	}
	v, ok := obj[field]
	if !ok {
		return nil, fmt.Errorf("field %q missing in %s", field, tc.lastBody)
	}
	return v, nil
}

func (tc *TestContext) Token(email string) string    { return tc.tokens[email] }
func (tc *TestContext) SetToken(email, token string) { tc.tokens[email] = token }
func (tc *TestContext) UserID(email string) string   { return tc.userIDs[email] }
func (tc *TestContext) SetUserID(email, id string)   { tc.userIDs[email] = id }
