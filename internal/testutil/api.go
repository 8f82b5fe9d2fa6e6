package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"testing"

	"github.com/google/uuid"
)

// AuthResponse matches the API register/login response envelope.
type AuthResponse struct {
	Success bool `json:"success"`
	User    struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
		Name  string    `json:"name"`
	} `json:"user"`
	ActiveOrganizationID uuid.UUID `json:"activeOrganizationId"`
	Memberships          []struct {
		OrganizationID   uuid.UUID `json:"organizationId"`
		OrganizationName string    `json:"organizationName"`
		Role             string    `json:"role"`
	} `json:"memberships"`
	Error string `json:"error"`
}

// NewClient returns an http client with a cookie jar, so the session
// cookie survives across requests like a browser.
func NewClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

// PostJSON sends body as JSON and decodes the response into out (when
// out is non-nil), returning the raw response.
func PostJSON(t *testing.T, client *http.Client, url string, body interface{}, out interface{}) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to encode request body: %v", err)
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp
}

// PutJSON sends body as JSON with PUT and decodes the response into out
// when out is non-nil.
func PutJSON(t *testing.T, client *http.Client, url string, body interface{}, out interface{}) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to encode request body: %v", err)
	}

	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp
}

// DeleteJSON issues a DELETE and decodes the response into out when non-nil.
func DeleteJSON(t *testing.T, client *http.Client, url string, out interface{}) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp
}

// GetJSON issues a GET and decodes the response into out when non-nil.
func GetJSON(t *testing.T, client *http.Client, url string, out interface{}) *http.Response {
	t.Helper()

	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
	}
	return resp
}

// RegisterViaAPI registers a user through the HTTP API and returns an
// authenticated client holding the session cookie.
func (ts *TestServer) RegisterViaAPI(t *testing.T, email, password, name, organizationName string) (*http.Client, *AuthResponse) {
	t.Helper()

	client := NewClient(t)

	var authResp AuthResponse
	resp := PostJSON(t, client, ts.APIURL("/auth/register"), map[string]string{
		"email":            email,
		"password":         password,
		"name":             name,
		"organizationName": organizationName,
	}, &authResp)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("registration failed with status %d: %s", resp.StatusCode, authResp.Error)
	}

	return client, &authResp
}
