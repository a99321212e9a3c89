package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"velvet/internal/services/reconcile"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockReconcileService struct {
	mock.Mock
}

func (m *MockReconcileService) HandleEvent(ctx context.Context, payload []byte, sigHeader string) (*reconcile.Result, error) {
	args := m.Called(ctx, payload, sigHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconcile.Result), args.Error(1)
}

func webhookApp(svc reconcile.Service) *fiber.App {
	app := fiber.New()
	h := NewStripeWebhookHandler(svc, zerolog.Nop())
	app.Post("/webhooks/stripe", h.Handle)
	return app
}

func postWebhook(t *testing.T, app *fiber.App, body []byte, sig string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhooks/stripe", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sig != "" {
		req.Header.Set("Stripe-Signature", sig)
	}
	resp, err := app.Test(req)
	assert.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestStripeWebhook_BadSignatureIs400(t *testing.T) {
	svc := new(MockReconcileService)
	svc.On("HandleEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, reconcile.ErrBadSignature)

	status, _ := postWebhook(t, webhookApp(svc), []byte(`{}`), "bad")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestStripeWebhook_SettleErrorIs500(t *testing.T) {
	svc := new(MockReconcileService)
	svc.On("HandleEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("db down"))

	status, _ := postWebhook(t, webhookApp(svc), []byte(`{}`), "sig")
	assert.Equal(t, fiber.StatusInternalServerError, status)
}

func TestStripeWebhook_AcknowledgedOutcomesAre200(t *testing.T) {
	for _, outcome := range []reconcile.Outcome{
		reconcile.OutcomeSettled,
		reconcile.OutcomeDuplicate,
		reconcile.OutcomeIgnored,
		reconcile.OutcomeMalformed,
	} {
		t.Run(string(outcome), func(t *testing.T) {
			svc := new(MockReconcileService)
			svc.On("HandleEvent", mock.Anything, mock.Anything, mock.Anything).
				Return(&reconcile.Result{Outcome: outcome}, nil)

			status, body := postWebhook(t, webhookApp(svc), []byte(`{}`), "sig")
			assert.Equal(t, fiber.StatusOK, status)
			assert.Contains(t, body, string(outcome))
		})
	}
}

func TestStripeWebhook_PassesRawBodyAndHeader(t *testing.T) {
	svc := new(MockReconcileService)
	rawBody := []byte(`{"id":"evt_1","unparsed":true}`)
	svc.On("HandleEvent", mock.Anything, rawBody, "t=1,v1=abc").
		Return(&reconcile.Result{Outcome: reconcile.OutcomeIgnored}, nil)

	status, _ := postWebhook(t, webhookApp(svc), rawBody, "t=1,v1=abc")
	assert.Equal(t, fiber.StatusOK, status)
	svc.AssertExpectations(t)
}
