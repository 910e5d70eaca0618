package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/rs/zerolog/log"

	"github.com/sahasrara-wellness/booking-api/internal/config"
	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/httperr"
	"github.com/sahasrara-wellness/booking-api/internal/httpresp"
	"github.com/sahasrara-wellness/booking-api/internal/models"
	ucBooking "github.com/sahasrara-wellness/booking-api/internal/usecase/booking"
)

// PaymentHandler runs the deposit flow against the gateway: checkout
// initiation, the browser return callback and the server-to-server webhook.
// Callback and webhook race; the confirm usecase makes that race harmless.
type PaymentHandler struct {
	cfg  *config.Config
	repo domain.Repository

	preferences preference.Client
	payments    payment.Client

	getBooking *ucBooking.GetBooking
	confirm    *ucBooking.Confirm
}

func NewPaymentHandler(
	cfg *config.Config,
	repo domain.Repository,
	preferences preference.Client,
	payments payment.Client,
	getBooking *ucBooking.GetBooking,
	confirm *ucBooking.Confirm,
) *PaymentHandler {
	return &PaymentHandler{
		cfg:         cfg,
		repo:        repo,
		preferences: preferences,
		payments:    payments,
		getBooking:  getBooking,
		confirm:     confirm,
	}
}

// Initiate creates a gateway checkout for the 10% deposit and records the
// payment intent. Requires the booking access token.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_booking_id", "Invalid booking id.")
		return
	}

	token := c.Query("token")
	if token == "" {
		httperr.BadRequest(c, "missing_token", "token query parameter is required.")
		return
	}

	b, err := h.getBooking.Execute(c.Request.Context(), uint(bookingID), token)
	if err != nil {
		writeError(c, err)
		return
	}

	if b.Status != string(domain.StatusPendingPayment) {
		httperr.BadRequest(c, "not_payable", "Booking is not awaiting payment.")
		return
	}

	// A checkout may already exist from an earlier attempt; reuse it.
	if existing, err := h.repo.GetPaymentForBooking(c.Request.Context(), b.ID); err == nil {
		httpresp.OK(c, gin.H{
			"order_id": existing.GatewayOrderID,
			"amount":   existing.Amount,
		})
		return
	}

	deposit := b.Service.DepositPrice()
	ref := strconv.FormatUint(uint64(b.ID), 10)

	pref, err := h.preferences.Create(c.Request.Context(), preference.Request{
		Items: []preference.ItemRequest{
			{
				Title:     b.Service.Name + " (deposit)",
				Quantity:  1,
				UnitPrice: deposit,
			},
		},
		ExternalReference: ref,
		BackURLs: &preference.BackURLsRequest{
			Success: h.cfg.PublicBaseURL + "/api/payments/callback",
			Pending: h.cfg.PublicBaseURL + "/api/payments/callback",
			Failure: h.cfg.PublicBaseURL + "/api/payments/callback",
		},
		NotificationURL: h.cfg.PublicBaseURL + "/api/payments/webhook",
	})
	if err != nil {
		log.Error().Err(err).Uint("booking_id", b.ID).Msg("failed to create gateway preference")
		httperr.Internal(c, "gateway_error", "Could not start checkout.")
		return
	}

	record := &models.Payment{
		BookingID:      b.ID,
		GatewayOrderID: pref.ID,
		Amount:         deposit,
		Currency:       "INR",
		Status:         models.PaymentCreated,
	}
	if err := h.repo.CreatePayment(c.Request.Context(), record); err != nil {
		// Two initiations can race past the reuse check above; the loser
		// hits the unique index on booking_id. Serve the winner's checkout.
		if existing, lookupErr := h.repo.GetPaymentForBooking(c.Request.Context(), b.ID); lookupErr == nil {
			httpresp.OK(c, gin.H{
				"order_id": existing.GatewayOrderID,
				"amount":   existing.Amount,
			})
			return
		}
		log.Error().Err(err).Uint("booking_id", b.ID).Msg("failed to record payment")
		httperr.Internal(c, "payment_record_failed", "Could not record payment.")
		return
	}

	httpresp.OK(c, gin.H{
		"order_id":   pref.ID,
		"init_point": pref.InitPoint,
		"amount":     deposit,
	})
}

// Callback is the browser return leg after checkout.
func (h *PaymentHandler) Callback(c *gin.Context) {
	paymentIDStr := c.Query("payment_id")
	ref := c.Query("external_reference")

	bookingID, err := strconv.ParseUint(ref, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_reference", "Invalid external reference.")
		return
	}

	paymentID, err := strconv.Atoi(paymentIDStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_payment_id", "Invalid payment id.")
		return
	}

	p, err := h.payments.Get(c.Request.Context(), paymentID)
	if err != nil {
		log.Error().Err(err).Int("payment_id", paymentID).Msg("failed to fetch gateway payment")
		httperr.Internal(c, "gateway_error", "Could not verify payment.")
		return
	}

	if p.Status != "approved" {
		httpresp.OK(c, gin.H{"status": p.Status, "confirmed": false})
		return
	}

	b, err := h.confirm.Execute(
		c.Request.Context(),
		uint(bookingID),
		strconv.Itoa(p.ID),
		p.TransactionAmount,
		"callback",
	)
	if err != nil {
		writeError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"status":    "approved",
		"confirmed": true,
		"booking":   b,
	})
}

type webhookPayload struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Webhook is the gateway's server-to-server notification. It always answers
// 200: the gateway retries on anything else, and our own failures are
// recoverable from the callback leg or a later retry.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var payload webhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Type != "payment" {
		c.Status(http.StatusOK)
		return
	}

	eventID := c.GetHeader("x-request-id")
	if eventID == "" {
		eventID = payload.Data.ID
	}

	seen, err := h.repo.HasWebhookEvent(c.Request.Context(), eventID)
	if err != nil || seen {
		c.Status(http.StatusOK)
		return
	}

	paymentID, err := strconv.Atoi(payload.Data.ID)
	if err != nil {
		c.Status(http.StatusOK)
		return
	}

	p, err := h.payments.Get(c.Request.Context(), paymentID)
	if err != nil {
		log.Error().Err(err).Int("payment_id", paymentID).Msg("webhook: failed to fetch gateway payment")
		c.Status(http.StatusOK)
		return
	}

	if p.Status != "approved" {
		c.Status(http.StatusOK)
		return
	}

	bookingID, err := strconv.ParseUint(p.ExternalReference, 10, 64)
	if err != nil {
		c.Status(http.StatusOK)
		return
	}

	if _, err := h.confirm.Execute(
		c.Request.Context(),
		uint(bookingID),
		strconv.Itoa(p.ID),
		p.TransactionAmount,
		"webhook",
	); err != nil {
		log.Error().Err(err).Uint64("booking_id", bookingID).Msg("webhook: confirm failed")
		c.Status(http.StatusOK)
		return
	}

	if record, err := h.repo.GetPaymentForBooking(c.Request.Context(), uint(bookingID)); err == nil {
		if err := h.repo.RecordWebhookEvent(c.Request.Context(), record.ID, eventID); err != nil {
			log.Error().Err(err).Str("event_id", eventID).Msg("webhook: failed to record event")
		}
	}

	c.Status(http.StatusOK)
}
