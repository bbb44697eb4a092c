package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/app/models"
	"github.com/invoiceflow/zerodue/app/repository"
	"github.com/invoiceflow/zerodue/internal/pkg/env"
	"github.com/invoiceflow/zerodue/internal/pkg/mail"
)

const emailWebhookProvider = "email"

// HandleEmailWebhook ingests delivery events from the email provider.
// Events are recorded idempotently before any processing; replays of an
// already-seen event id return early without touching the counters.
func HandleEmailWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("X-Email-Signature"))
	secret := env.GetEnv("EMAIL_WEBHOOK_SECRET", "")

	eventID := strings.TrimSpace(c.Get("X-Email-Event-ID"))
	if eventID == "" {
		// Fall back to the payload's own event id so replays without the
		// header still dedupe.
		if ev, err := mail.ParseDeliveryEvent(rawBody); err == nil {
			eventID = ev.EventID
		}
	}
	if eventID == "" {
		return badRequest(c, "missing event id")
	}

	signatureValid := mail.VerifyWebhookSignature(rawBody, signature, secret)

	repo := repository.GetGlobalFactory().GetWebhookEventRepository()
	created, stored, err := repo.CreateIfNotExists(&models.WebhookEvent{
		Provider:        emailWebhookProvider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(c.Get("X-Email-Event")),
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return internalError(c, "Failed to record webhook event")
	}
	if !created {
		return c.JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !signatureValid {
		_ = repo.MarkProcessed(stored.ID, "invalid webhook signature")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	event, err := mail.ParseDeliveryEvent(rawBody)
	if err != nil {
		_ = repo.MarkProcessed(stored.ID, err.Error())
		return badRequest(c, "invalid payload")
	}

	if err := applyDeliveryEvent(event); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = repo.MarkProcessed(stored.ID, "invoice not found")
			return c.JSON(fiber.Map{"ok": true, "ignored": true})
		}
		_ = repo.MarkProcessed(stored.ID, err.Error())
		return internalError(c, "Failed to apply webhook event")
	}

	_ = repo.MarkProcessed(stored.ID, "")
	return c.JSON(fiber.Map{"ok": true})
}

// applyDeliveryEvent bumps the matching counter and timestamp on the invoice.
func applyDeliveryEvent(event *mail.DeliveryEvent) error {
	repo := repository.GetGlobalFactory().GetInvoiceRepository()
	invoice, err := repo.GetByID(event.InvoiceID)
	if err != nil {
		return err
	}

	now := time.Now()
	switch event.Event {
	case mail.EventDelivered:
		invoice.EmailDeliveredCount++
		invoice.EmailDeliveredAt = &now
	case mail.EventOpened:
		invoice.EmailOpenedCount++
		invoice.EmailOpenedAt = &now
	case mail.EventClicked:
		invoice.EmailClickedCount++
	case mail.EventBounced:
		invoice.EmailBouncedCount++
	}

	return repo.Update(invoice)
}
