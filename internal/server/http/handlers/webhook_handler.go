package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tgreer/familysite/internal/domain/reference"
	"github.com/tgreer/familysite/internal/server/http/dto"
)

// Signature header Square sends with every delivery.
const signatureHeader = "X-Square-HmacSha256-Signature"

// SignatureVerifier checks the webhook signature against the raw body.
type SignatureVerifier interface {
	Verify(signature string, body []byte) bool
}

// WebhookMetrics counts webhook traffic for alerting.
type WebhookMetrics interface {
	WebhookEvent(eventType, outcome string)
	SignatureFailure()
}

// WebhookHandler ingests processor payment events. Deliveries are
// at-least-once and unordered; the handler acknowledges everything with 200
// once the signature check ran, and leaves race settlement to the engine.
type WebhookHandler struct {
	facade   ReconcileFacade
	verifier SignatureVerifier
	metrics  WebhookMetrics
	logger   *slog.Logger
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade ReconcileFacade, verifier SignatureVerifier, metrics WebhookMetrics, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{facade: facade, verifier: verifier, metrics: metrics, logger: logger}
}

// Receive handles POST /webhooks/square.
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	// The ack is unconditional from here on. Returning an error status would
	// make Square redeliver events we have already classified, and a
	// tampered delivery deserves no hint beyond the metric.
	ack := func() { c.JSON(http.StatusOK, dto.WebhookAck{Received: true}) }

	if !h.verifier.Verify(c.GetHeader(signatureHeader), body) {
		h.metrics.SignatureFailure()
		h.logger.WarnContext(c.Request.Context(), "webhook signature mismatch")
		ack()
		return
	}

	var event dto.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.metrics.WebhookEvent("malformed", "ignored")
		h.logger.WarnContext(c.Request.Context(), "webhook body not decodable", slog.String("error", err.Error()))
		ack()
		return
	}

	if event.Type != "payment.updated" && event.Type != "payment.created" {
		h.metrics.WebhookEvent(event.Type, "ignored")
		ack()
		return
	}

	payment := event.Data.Object.Payment
	rawRef := payment.ReferenceID
	if rawRef == "" {
		// Older payment links carried the reference in the note field.
		rawRef = payment.Note
	}
	ref := reference.Resolve(rawRef)

	var applyErr error
	switch payment.Status {
	case "COMPLETED":
		_, applyErr = h.facade.ApplySuccess(c.Request.Context(), ref, payment.ID, payment.ReceiptURL)
	case "FAILED", "CANCELED":
		_, applyErr = h.facade.ApplyFailure(c.Request.Context(), ref)
	default:
		h.metrics.WebhookEvent(event.Type, "ignored")
		ack()
		return
	}

	if applyErr != nil {
		h.metrics.WebhookEvent(event.Type, "error")
		h.logger.ErrorContext(c.Request.Context(), "webhook processing failed",
			slog.String("event_id", event.EventID),
			slog.String("payment_id", payment.ID),
			slog.String("error", applyErr.Error()),
		)
	} else {
		h.metrics.WebhookEvent(event.Type, "processed")
	}
	ack()
}
