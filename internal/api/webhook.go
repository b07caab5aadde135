package api

import (
	"errors"
	"net/http"

	"learning-api/internal/models"
	"learning-api/internal/services"
	"learning-api/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentWebhook ingests payment provider events.
// POST /api/payment/webhook
//
// The raw body is verified against the creem-signature header before any
// parsing. Once the signature validates, any non-retryable failure
// (unparseable body, unattributable checkout) is acknowledged with a recorded
// failure so the provider stops redelivering.
func (h *Handlers) PaymentWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		logging.Errorf("Failed to read webhook body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	signature := c.GetHeader("creem-signature")
	if signature == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No signature provided"})
		return
	}

	if !h.Verifier.Verify(body, signature) {
		// Security event, not a transient fault. No state was touched.
		logging.Errorf("Webhook signature verification failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	event, err := services.ClassifyEvent(body)
	if err != nil {
		// The signature proved the provider sent these exact bytes, so
		// redelivery would fail identically. Acknowledge and leave an
		// operator-visible trail instead of inviting retries.
		failure := &models.WebhookFailure{
			Reference: uuid.NewString(),
			EventType: "unparseable",
			Reason:    "event body failed to parse: " + err.Error(),
			Payload:   string(body),
		}
		if recordErr := h.Store.RecordWebhookFailure(failure); recordErr != nil {
			logging.Errorf("Failed to record webhook failure %s: %v", failure.Reference, recordErr)
		}
		logging.Errorf("Unparseable webhook body, failure reference %s: %v", failure.Reference, err)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	logging.Infof("Received webhook %s (%s)", event.ID, event.RawType)

	if err := h.Reconciler.Apply(event); err != nil {
		if errors.Is(err, services.ErrUnattributable) {
			// Recorded and alerted inside the reconciler; retrying cannot
			// attribute it either, so acknowledge.
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		// Store-level failure: every write in the apply path is an idempotent
		// upsert, so the provider's retry is safe.
		logging.Errorf("Webhook processing failed - event: %s, type: %s, error: %v",
			event.ID, event.RawType, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
