package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mwells/saasdash/internal/stream"
)

// Signed timestamps older or newer than this are rejected to bound replay.
const signatureTolerance = 5 * time.Minute

// WebhookHandler forwards provider webhooks to an external log stream.
// Thin I/O: the payload is wrapped in an envelope and written through the
// sink before the request is acknowledged.
type WebhookHandler struct {
	sink   stream.EventSink
	secret string
}

func NewWebhookHandler(sink stream.EventSink, secret string) *WebhookHandler {
	return &WebhookHandler{
		sink:   sink,
		secret: secret,
	}
}

type webhookEnvelope struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
}

func (h *WebhookHandler) HandleStripe(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	if h.secret != "" {
		if !verifyStripeSignature(body, r.Header.Get("Stripe-Signature"), h.secret) {
			respondError(w, http.StatusBadRequest, "Invalid signature")
			return
		}
	}

	var event struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	envelope, err := json.Marshal(webhookEnvelope{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Type:      event.Type,
		ID:        event.ID,
		Data:      body,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to encode event")
		return
	}

	if err := h.sink.Put(r.Context(), envelope); err != nil {
		log.Printf("ERROR [handlers.Webhook] failed to deliver event %s: %v", event.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to persist event")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"received": true})
}

// verifyStripeSignature checks the v1 scheme: HMAC-SHA256 of
// "<timestamp>.<payload>" under the endpoint secret, with the signed
// timestamp required to be within signatureTolerance of now.
func verifyStripeSignature(payload []byte, header, secret string) bool {
	var timestamp, signature string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signature = kv[1]
		}
	}
	if timestamp == "" || signature == "" {
		return false
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	if age := time.Since(time.Unix(unix, 0)); age > signatureTolerance || age < -signatureTolerance {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
