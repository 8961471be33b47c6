package response

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kango-hamed/musia-guide/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFromError_Mapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: bad id", domain.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: session x", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: retry later", domain.ErrRateLimited), http.StatusTooManyRequests},
		{fmt.Errorf("%w: generation", domain.ErrUpstreamModel), http.StatusBadGateway},
		{fmt.Errorf("%w: tts", domain.ErrSynthesisFailed), http.StatusBadGateway},
		{fmt.Errorf("something else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		FromError(rec, tt.err, 60)
		assert.Equal(t, tt.status, rec.Code, "error %v", tt.err)
	}
}

func TestFromError_RateLimitedSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	FromError(rec, domain.ErrRateLimited, 60)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestJSON_SuccessFollowsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]string{"a": "b"})
	assert.JSONEq(t, `{"success":true,"data":{"a":"b"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Error(rec, http.StatusBadRequest, "nope")
	assert.JSONEq(t, `{"success":false,"error":"nope"}`, rec.Body.String())
}
