package handlers_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mwells/saasdash/internal/api/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureSink records every payload written through it.
type captureSink struct {
	records [][]byte
	err     error
}

func (s *captureSink) Put(_ context.Context, record []byte) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

func nowUnix() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

func unixAgo(d time.Duration) string {
	return strconv.FormatInt(time.Now().Add(-d).Unix(), 10)
}

func signStripe(t *testing.T, payload []byte, secret, timestamp string) string {
	t.Helper()

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s.%s", timestamp, payload)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(handler *handlers.WebhookHandler, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(body))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	handler.HandleStripe(rec, req)
	return rec
}

func TestWebhookSignedEvent(t *testing.T) {
	sink := &captureSink{}
	handler := handlers.NewWebhookHandler(sink, "whsec_test")

	body := `{"id":"evt_123","type":"invoice.paid","data":{"object":{"amount":4200}}}`
	rec := postWebhook(handler, body, signStripe(t, []byte(body), "whsec_test", nowUnix()))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sink.records, 1)

	var envelope struct {
		Timestamp string          `json:"timestamp"`
		Type      string          `json:"type"`
		ID        string          `json:"id"`
		Data      json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(sink.records[0], &envelope))
	assert.Equal(t, "evt_123", envelope.ID)
	assert.Equal(t, "invoice.paid", envelope.Type)
	assert.NotEmpty(t, envelope.Timestamp)
	assert.JSONEq(t, body, string(envelope.Data))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	sink := &captureSink{}
	handler := handlers.NewWebhookHandler(sink, "whsec_test")

	body := `{"id":"evt_123","type":"invoice.paid"}`

	tests := []struct {
		name      string
		signature string
	}{
		{"missing header", ""},
		{"wrong secret", signStripe(t, []byte(body), "whsec_other", nowUnix())},
		{"tampered payload", signStripe(t, []byte(`{"id":"evt_999"}`), "whsec_test", nowUnix())},
		{"malformed header", "v1only"},
		{"non-numeric timestamp", signStripe(t, []byte(body), "whsec_test", "not-a-time")},
		{"stale timestamp", signStripe(t, []byte(body), "whsec_test", unixAgo(10*time.Minute))},
		{"future timestamp", signStripe(t, []byte(body), "whsec_test", unixAgo(-10*time.Minute))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postWebhook(handler, body, tt.signature)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	assert.Empty(t, sink.records)
}

func TestWebhookWithoutSecretSkipsVerification(t *testing.T) {
	sink := &captureSink{}
	handler := handlers.NewWebhookHandler(sink, "")

	rec := postWebhook(handler, `{"id":"evt_1","type":"customer.created"}`, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, sink.records, 1)
}

func TestWebhookSinkFailure(t *testing.T) {
	sink := &captureSink{err: fmt.Errorf("stream unavailable")}
	handler := handlers.NewWebhookHandler(sink, "")

	rec := postWebhook(handler, `{"id":"evt_1","type":"customer.created"}`, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhookRejectsInvalidJSON(t *testing.T) {
	handler := handlers.NewWebhookHandler(&captureSink{}, "")

	rec := postWebhook(handler, "not-json", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
