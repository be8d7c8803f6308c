package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("brand 4: %w", ErrNotFound), http.StatusNotFound},
		{ErrValidation, http.StatusBadRequest},
		{ErrForbidden, http.StatusForbidden},
		{ErrUnauthorized, http.StatusUnauthorized},
		{NewError(http.StatusForbidden, "premium_required", "Forbidden", "upgrade"), http.StatusForbidden},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())

		var body ProblemDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, tc.status, body.Status)
	}
}

func TestRespondErrorKeepsKindAndWrappedDetail(t *testing.T) {
	kind := NewError(http.StatusForbidden, "brand_forbidden", "Forbidden", "no access")
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("brand 9: %w", kind))

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "brand_forbidden", body.Type)
	assert.Equal(t, "Forbidden", body.Title)
	assert.Equal(t, "brand 9: no access", body.Detail)
	assert.True(t, IsProblem(fmt.Errorf("x: %w", kind)))
	assert.False(t, IsProblem(fmt.Errorf("boom")))
}

func TestInternalErrorHidesDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestTypedProblem(t *testing.T) {
	rr := httptest.NewRecorder()
	TypedProblem(rr, http.StatusForbidden, "premium_required", "Forbidden", "upgrade")
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `"type":"premium_required"`)
}
