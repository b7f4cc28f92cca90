package httptransport

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bugswriter/shiosayi-backend/internal/event/models"
	eventstore "github.com/bugswriter/shiosayi-backend/internal/event/store"
	"github.com/bugswriter/shiosayi-backend/pkg/requestcontext"
	"github.com/bugswriter/shiosayi-backend/pkg/secrets"
)

// kofiPayload mirrors the upstream webhook body. Ko-fi posts it as a JSON
// string inside a form field named "data"; some integrations send raw JSON.
type kofiPayload struct {
	VerificationToken   string  `json:"verification_token"`
	MessageID           string  `json:"message_id"`
	Timestamp           string  `json:"timestamp"`
	Type                string  `json:"type"`
	IsPublic            bool    `json:"is_public"`
	FromName            string  `json:"from_name"`
	Message             string  `json:"message"`
	Amount              string  `json:"amount"`
	URL                 string  `json:"url"`
	Email               string  `json:"email"`
	Currency            string  `json:"currency"`
	IsSubscription      bool    `json:"is_subscription_payment"`
	IsFirstSubscription bool    `json:"is_first_subscription_payment"`
	KofiTransactionID   string  `json:"kofi_transaction_id"`
	TierName            *string `json:"tier_name"`
}

// handleWebhook ingests one payment-platform delivery. Duplicates and
// non-qualifying events are acknowledged with 200 exactly like fresh ones:
// the upstream retries anything else.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, ok := h.readWebhookBody(w, r)
	if !ok {
		return
	}

	var payload kofiPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Request body is not valid JSON."})
		return
	}

	if h.kofiToken == "" || !secrets.Equal(payload.VerificationToken, h.kofiToken) {
		h.logger.Warn("webhook verification token rejected",
			"request_id", requestcontext.RequestID(ctx))
		WriteJSON(w, http.StatusForbidden, map[string]string{"error": "Invalid verification token."})
		return
	}

	if payload.MessageID == "" || payload.Email == "" {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required event fields."})
		return
	}

	event := payload.toEvent(requestcontext.Now(ctx), raw)

	outcome, err := h.events.Ingest(ctx, event)
	if err != nil {
		h.logger.Error("event ingest failed",
			"request_id", requestcontext.RequestID(ctx),
			"event_id", event.ID,
			"error", err,
		)
		WriteError(w, err)
		return
	}

	switch outcome {
	case eventstore.Duplicate:
		// Retried delivery; the original already drove reconciliation.
		h.eventMetrics.IncrementDuplicates()
		h.logger.Info("duplicate event acknowledged", "event_id", event.ID)
	case eventstore.Inserted:
		h.eventMetrics.IncrementIngested()
		if event.QualifiesForReconciliation() {
			if _, err := h.reconciler.Reconcile(ctx, event); err != nil {
				h.logger.Error("reconciliation failed",
					"request_id", requestcontext.RequestID(ctx),
					"event_id", event.ID,
					"error", err,
				)
				WriteError(w, err)
				return
			}
		} else {
			h.eventMetrics.IncrementIgnored()
			h.logger.Info("event logged without reconciliation",
				"event_id", event.ID,
				"kind", event.Kind,
			)
		}
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "Webhook received successfully."})
}

// readWebhookBody extracts the JSON document from either the Ko-fi form
// encoding or a raw JSON body. On failure it writes the 400 itself.
func (h *Handler) readWebhookBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Malformed form body."})
			return nil, false
		}
		data := r.PostFormValue("data")
		if data == "" {
			WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Malformed request, missing 'data' form field."})
			return nil, false
		}
		return []byte(data), true
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil || len(body) == 0 {
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Request body is empty or unreadable."})
		return nil, false
	}
	return body, true
}

func (p *kofiPayload) toEvent(fallbackNow time.Time, raw []byte) *models.PaymentEvent {
	ts, err := time.Parse(time.RFC3339, p.Timestamp)
	if err != nil {
		ts = fallbackNow
	}
	amount, _ := strconv.ParseFloat(p.Amount, 64)
	tierLabel := ""
	if p.TierName != nil {
		tierLabel = *p.TierName
	}
	return &models.PaymentEvent{
		ID:                    p.MessageID,
		Timestamp:             ts,
		Kind:                  models.EventKind(p.Type),
		IsPublic:              p.IsPublic,
		PayerName:             p.FromName,
		PayerEmail:            p.Email,
		Message:               p.Message,
		Amount:                amount,
		Currency:              p.Currency,
		URL:                   p.URL,
		IsSubscriptionPayment: p.IsSubscription,
		IsFirstSubscription:   p.IsFirstSubscription,
		TierLabel:             tierLabel,
		ExternalTransactionID: p.KofiTransactionID,
		RawPayload:            string(raw),
	}
}
