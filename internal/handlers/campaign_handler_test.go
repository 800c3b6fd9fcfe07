package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/givehopebz/givehope-api/internal/models"
	"github.com/givehopebz/givehope-api/internal/services"
	"github.com/givehopebz/givehope-api/pkg/authz"
	"github.com/stretchr/testify/assert"
)

// unavailableCampaignStore fails the listing the way a timed-out backend does.
type unavailableCampaignStore struct {
	services.CampaignStore
}

func (unavailableCampaignStore) ListCampaigns(context.Context, string, int64) ([]models.Campaign, error) {
	return nil, context.DeadlineExceeded
}

type emptyCampaignStore struct {
	services.CampaignStore
}

func (emptyCampaignStore) ListCampaigns(context.Context, string, int64) ([]models.Campaign, error) {
	return nil, nil
}

func TestListCampaignsUnavailableBackend(t *testing.T) {
	svc := services.NewModerationService(nil, unavailableCampaignStore{}, nil, authz.NewPolicy(nil))
	h := NewCampaignHandler(svc, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
	rr := httptest.NewRecorder()
	h.ListCampaignsHandler(rr, req)

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	body := decodeErrorEnvelope(t, rr)
	assert.Equal(t, "unavailable", body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestListCampaignsEmptyIsJSONArray(t *testing.T) {
	svc := services.NewModerationService(nil, emptyCampaignStore{}, nil, authz.NewPolicy(nil))
	h := NewCampaignHandler(svc, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/campaigns", nil)
	rr := httptest.NewRecorder()
	h.ListCampaignsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}
