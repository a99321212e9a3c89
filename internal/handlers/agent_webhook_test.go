package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"velvet/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAgentRepo struct {
	mock.Mock
}

func (m *MockAgentRepo) GetByRecordID(ctx context.Context, recordID string) (*models.Agent, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Agent), args.Error(1)
}

func (m *MockAgentRepo) Upsert(ctx context.Context, agent *models.Agent) error {
	return m.Called(ctx, agent).Error(0)
}

func (m *MockAgentRepo) ListActive(ctx context.Context) ([]models.Agent, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Agent), args.Error(1)
}

func agentApp(repo *MockAgentRepo, secret string) *fiber.App {
	app := fiber.New()
	h := NewAgentWebhookHandler(repo, secret, zerolog.Nop())
	app.Post("/webhooks/crm/agents", h.Handle)
	return app
}

func TestAgentWebhook_RejectsBadToken(t *testing.T) {
	repo := new(MockAgentRepo)
	app := agentApp(repo, "s3cret")

	req := httptest.NewRequest("POST", "/webhooks/crm/agents?token=wrong", strings.NewReader(`{"id":"rec_1","name":"Ava"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestAgentWebhook_RequiresIDAndName(t *testing.T) {
	repo := new(MockAgentRepo)
	app := agentApp(repo, "")

	req := httptest.NewRequest("POST", "/webhooks/crm/agents", strings.NewReader(`{"name":"Ava"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAgentWebhook_UpsertsWithDefaults(t *testing.T) {
	repo := new(MockAgentRepo)
	app := agentApp(repo, "s3cret")

	var upserted *models.Agent
	repo.On("Upsert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		upserted = args.Get(1).(*models.Agent)
	}).Return(nil)

	body := `{"id":"rec_1","name":"Ava","ratePerMinute":0,"voiceAgentId":"el_1"}`
	req := httptest.NewRequest("POST", "/webhooks/crm/agents?token=s3cret", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "rec_1", upserted.RecordID)
	assert.Equal(t, int64(1), upserted.RatePerMinute)
	assert.Equal(t, models.AgentStatusActive, upserted.Status)
	assert.Equal(t, "el_1", upserted.VoiceAgentID)
}
