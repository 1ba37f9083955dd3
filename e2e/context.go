// Package e2e drives a running parley node over HTTP with godog scenarios.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// TestContext holds the node under test and the state of one scenario.
type TestContext struct {
	BaseURL    string
	Address    string
	Token      string
	AdminToken string
	HTTPClient *http.Client

	lastStatus int
	lastBody   []byte
	saved      map[string]string
}

// NewTestContext reads PARLEY_E2E_URL, PARLEY_E2E_ADDRESS, PARLEY_E2E_TOKEN
// and PARLEY_E2E_ADMIN_TOKEN.
func NewTestContext() *TestContext {
	return &TestContext{
		BaseURL:    strings.TrimRight(os.Getenv("PARLEY_E2E_URL"), "/"),
		Address:    os.Getenv("PARLEY_E2E_ADDRESS"),
		Token:      os.Getenv("PARLEY_E2E_TOKEN"),
		AdminToken: os.Getenv("PARLEY_E2E_ADMIN_TOKEN"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		saved:      map[string]string{},
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.saved = map[string]string{"me": tc.Address}
}

func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body, true)
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil, true)
}

func (tc *TestContext) GETWithoutAuth(path string) error {
	return tc.do(http.MethodGet, path, nil, false)
}

// POSTAdmin sends the admin token header instead of a bearer token.
func (tc *TestContext) POSTAdmin(path string) error {
	req, err := http.NewRequest(http.MethodPost, tc.BaseURL+tc.Expand(path), http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("X-Admin-Token", tc.AdminToken)
	return tc.send(req)
}

func (tc *TestContext) do(method, path string, body any, authenticated bool) error {
	var reader io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(tc.Expand(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.BaseURL+tc.Expand(path), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authenticated && tc.Token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.Token)
	}
	return tc.send(req)
}

func (tc *TestContext) send(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) StatusCode() int { return tc.lastStatus }

func (tc *TestContext) Body() []byte { return tc.lastBody }

// GetResponseField walks a dot separated path through the last JSON body.
// Numeric segments index arrays.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var doc any
	if err := json.Unmarshal(tc.lastBody, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	cur := doc
	for _, part := range strings.Split(field, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %q not found in response", field)
			}
			cur = v
		case []any:
			var i int
			if _, err := fmt.Sscanf(part, "%d", &i); err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("index %q out of range in %q", part, field)
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("field %q not found in response", field)
		}
	}
	return cur, nil
}

func (tc *TestContext) Save(name, value string) { tc.saved[name] = value }

func (tc *TestContext) Saved(name string) string { return tc.saved[name] }

// Expand replaces {name} with saved values.
func (tc *TestContext) Expand(s string) string {
	for k, v := range tc.saved {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}
