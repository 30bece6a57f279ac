package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/b2bquote/rfq-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorFromRequest(t *testing.T) {
	t.Run("valid headers", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/rfqs", nil)
		req.Header.Set("X-User-Id", "user-1")
		req.Header.Set("X-User-Role", "supplier")

		actor, err := ActorFromRequest(req)
		require.NoError(t, err)
		assert.Equal(t, "user-1", actor.UserID)
		assert.Equal(t, models.RoleSupplier, actor.Role)
	})

	t.Run("missing user id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/rfqs", nil)
		req.Header.Set("X-User-Role", "client")

		_, err := ActorFromRequest(req)
		var errorResponse *models.ErrorResponse
		require.ErrorAs(t, err, &errorResponse)
		assert.Equal(t, models.KindForbidden, errorResponse.Kind)
	})

	t.Run("unknown role", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/rfqs", nil)
		req.Header.Set("X-User-Id", "user-1")
		req.Header.Set("X-User-Role", "manager")

		_, err := ActorFromRequest(req)
		var errorResponse *models.ErrorResponse
		require.ErrorAs(t, err, &errorResponse)
		assert.Equal(t, models.KindForbidden, errorResponse.Kind)
	})
}

func TestParseLimitOffset(t *testing.T) {
	limit, offset, err := ParseLimitOffset("", "")
	require.NoError(t, err)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	limit, offset, err = ParseLimitOffset("50", "10")
	require.NoError(t, err)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 10, offset)

	_, _, err = ParseLimitOffset("0", "")
	assert.Error(t, err)

	_, _, err = ParseLimitOffset("51", "")
	assert.Error(t, err)

	_, _, err = ParseLimitOffset("", "-1")
	assert.Error(t, err)

	_, _, err = ParseLimitOffset("abc", "")
	assert.Error(t, err)
}

func TestSendDomainError(t *testing.T) {
	t.Run("domain error keeps status and kind", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SendDomainError(rec, models.NewRoundLimitExceeded("maximum number of negotiation rounds reached"))

		assert.Equal(t, http.StatusConflict, rec.Code)

		var body models.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, models.KindRoundLimit, body.Kind)
		assert.Equal(t, "maximum number of negotiation rounds reached", body.Message)
	})

	t.Run("unknown error becomes internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		SendDomainError(rec, errors.New("connection reset"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var body models.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, models.KindInternal, body.Kind)
		assert.Equal(t, "internal server error", body.Message)
	})
}
