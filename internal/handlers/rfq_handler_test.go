package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/b2bquote/rfq-service/internal/models"
	"github.com/b2bquote/rfq-service/internal/repository"
	"github.com/b2bquote/rfq-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore отдает один подготовленный RFQ без предложений.
type stubStore struct {
	rfq *models.RFQ
}

var (
	_ repository.RFQRepository   = (*stubStore)(nil)
	_ repository.OfferRepository = (*stubStore)(nil)
)

func (s *stubStore) CreateRFQ(_ context.Context, rfq *models.RFQ) error {
	s.rfq = rfq
	return nil
}

func (s *stubStore) GetRFQ(_ context.Context, rfqID string) (*models.RFQ, error) {
	if s.rfq == nil || s.rfq.ID != rfqID {
		return nil, models.NewNotFound("rfq not found")
	}
	copied := *s.rfq
	return &copied, nil
}

func (s *stubStore) ListRFQs(_ context.Context, _ repository.RFQFilter) ([]models.RFQ, error) {
	if s.rfq == nil {
		return nil, nil
	}
	return []models.RFQ{*s.rfq}, nil
}

func (s *stubStore) PublishRFQ(_ context.Context, _ string, publishedAt time.Time) error {
	s.rfq.Status = models.PublishedRFQ
	s.rfq.PublishedAt = &publishedAt
	return nil
}

func (s *stubStore) SetRFQStatus(_ context.Context, _ string, status models.RFQStatus) error {
	s.rfq.Status = status
	return nil
}

func (s *stubStore) SetGatekeeperStatus(_ context.Context, _ string, status models.GatekeeperStatus) error {
	s.rfq.GatekeeperStatus = status
	return nil
}

func (s *stubStore) DeleteRFQ(_ context.Context, _ string) error {
	s.rfq = nil
	return nil
}

func (s *stubStore) CreateOffer(_ context.Context, _ *models.Offer) error { return nil }

func (s *stubStore) GetOffer(_ context.Context, _ string) (*models.Offer, error) {
	return nil, models.NewNotFound("offer not found")
}

func (s *stubStore) FindActiveOffer(_ context.Context, _, _ string) (*models.Offer, error) {
	return nil, nil
}

func (s *stubStore) ListOffers(_ context.Context, _ repository.OfferFilter) ([]models.Offer, error) {
	return nil, nil
}

func (s *stubStore) DeleteOffer(_ context.Context, _ string) error { return nil }

func (s *stubStore) RejectFinalOffer(_ context.Context, _, _ string) error { return nil }

func newTestMux(store *stubStore) *http.ServeMux {
	logger := log.New(os.Stdout, "TEST: ", log.LstdFlags)
	service := services.NewRFQService(store, store)
	handler := NewRFQHandler(service, logger, 5*time.Second)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/rfqs", handler.CreateRFQ)
	mux.HandleFunc("GET /api/rfqs", handler.GetRFQs)
	mux.HandleFunc("GET /api/rfqs/{rfqId}", handler.GetRFQ)
	mux.HandleFunc("PATCH /api/rfqs/{rfqId}/publish", handler.PublishRFQ)
	return mux
}

func seededStore() *stubStore {
	return &stubStore{rfq: &models.RFQ{
		ID:               "rfq-1",
		ClientID:         "client-1",
		Title:            "Industrial fasteners",
		Description:      "Bulk order of stainless fasteners",
		Requirements:     "ISO 3506 compliant, batch certificates",
		Deadline:         time.Now().Add(30 * 24 * time.Hour),
		Status:           models.DraftRFQ,
		GatekeeperStatus: models.GatekeeperPending,
		CreatedAt:        time.Now().UTC(),
	}}
}

func TestRFQHandlerAuthHeaders(t *testing.T) {
	mux := newTestMux(seededStore())

	t.Run("missing identity", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/rfqs", nil)
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		var body models.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, models.KindForbidden, body.Kind)
	})

	t.Run("unknown role", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/rfqs", nil)
		req.Header.Set("X-User-Id", "user-1")
		req.Header.Set("X-User-Role", "auditor")
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRFQHandlerGet(t *testing.T) {
	mux := newTestMux(seededStore())

	t.Run("owner fetches draft", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/rfqs/rfq-1", nil)
		req.Header.Set("X-User-Id", "client-1")
		req.Header.Set("X-User-Role", "client")
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var view models.RFQView
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
		assert.Equal(t, "rfq-1", view.ID)
	})

	t.Run("unknown rfq maps to 404", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/rfqs/missing", nil)
		req.Header.Set("X-User-Id", "admin-1")
		req.Header.Set("X-User-Role", "admin")
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		var body models.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, models.KindNotFound, body.Kind)
	})
}

func TestRFQHandlerCreate(t *testing.T) {
	mux := newTestMux(&stubStore{})

	t.Run("valid body", func(t *testing.T) {
		payload := `{"title":"Industrial fasteners","description":"Bulk order of stainless fasteners","requirements":"ISO 3506 compliant, batch certificates","deadline":"` +
			time.Now().Add(30*24*time.Hour).Format(time.RFC3339) + `"}`
		req := httptest.NewRequest("POST", "/api/rfqs", strings.NewReader(payload))
		req.Header.Set("X-User-Id", "client-1")
		req.Header.Set("X-User-Role", "client")
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var rfq models.RFQ
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&rfq))
		assert.Equal(t, models.DraftRFQ, rfq.Status)
	})

	t.Run("bad json", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/rfqs", strings.NewReader("badjson"))
		req.Header.Set("X-User-Id", "client-1")
		req.Header.Set("X-User-Role", "client")
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		payload := `{"title":"ab","description":"Bulk order of stainless fasteners","requirements":"ISO 3506 compliant","deadline":"2026-12-01T00:00:00Z"}`
		req := httptest.NewRequest("POST", "/api/rfqs", strings.NewReader(payload))
		req.Header.Set("X-User-Id", "client-1")
		req.Header.Set("X-User-Role", "client")
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var body models.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, models.KindValidation, body.Kind)
	})
}

func TestRFQHandlerPublish(t *testing.T) {
	store := seededStore()
	mux := newTestMux(store)

	t.Run("client forbidden", func(t *testing.T) {
		req := httptest.NewRequest("PATCH", "/api/rfqs/rfq-1/publish", nil)
		req.Header.Set("X-User-Id", "client-1")
		req.Header.Set("X-User-Role", "client")
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin publishes", func(t *testing.T) {
		req := httptest.NewRequest("PATCH", "/api/rfqs/rfq-1/publish", nil)
		req.Header.Set("X-User-Id", "admin-1")
		req.Header.Set("X-User-Role", "admin")
		rec := httptest.NewRecorder()

		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.PublishedRFQ, store.rfq.Status)
	})
}
