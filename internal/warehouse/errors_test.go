package warehouse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBySubstring(t *testing.T) {
	cases := map[string]Category{
		"query timed out after 30s":           CategoryTimeout,
		"Deadline Exceeded while reading":     CategoryTimeout,
		"service account credentials missing": CategoryNotConfigured,
		"analytics project not configured":    CategoryNotConfigured,
		"Quota exceeded for project":          CategoryQuota,
		"rate limit hit":                      CategoryQuota,
		"429 Too Many Requests":               CategoryQuota,
		"Access Denied: table brand_sales":    CategoryPermission,
		"user lacks permission bigquery.jobs": CategoryPermission,
		"403 Forbidden":                       CategoryPermission,
		"syntax error at line 3":              CategoryGeneric,
	}
	for msg, want := range cases {
		t.Run(msg, func(t *testing.T) {
			got := Classify(errors.New(msg))
			assert.Equal(t, want, got.Category)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestClassifyRuleOrder(t *testing.T) {
	// timeout is checked before quota and permission
	assert.Equal(t, CategoryTimeout, Classify(errors.New("rate limit timeout")).Category)
	// credentials are checked before permission
	assert.Equal(t, CategoryNotConfigured, Classify(errors.New("credential permission denied")).Category)
	// quota is checked before permission
	assert.Equal(t, CategoryQuota, Classify(errors.New("quota forbidden")).Category)
}

func TestClassifySentinelsWinOverText(t *testing.T) {
	err := fmt.Errorf("quota words in message: %w", ErrPermission)
	assert.Equal(t, CategoryPermission, Classify(err).Category)

	assert.Equal(t, CategoryTimeout, Classify(fmt.Errorf("load: %w", context.DeadlineExceeded)).Category)
	assert.Equal(t, CategoryNotConfigured, Classify(ErrNotConfigured).Category)
}

func TestClassifyNil(t *testing.T) {
	assert.Equal(t, DisplayError{}, Classify(nil))
}

func TestDisplayErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusGatewayTimeout, DisplayError{Category: CategoryTimeout}.Status())
	assert.Equal(t, http.StatusServiceUnavailable, DisplayError{Category: CategoryNotConfigured}.Status())
	assert.Equal(t, http.StatusTooManyRequests, DisplayError{Category: CategoryQuota}.Status())
	assert.Equal(t, http.StatusBadGateway, DisplayError{Category: CategoryPermission}.Status())
	assert.Equal(t, http.StatusBadGateway, DisplayError{Category: CategoryGeneric}.Status())
}

func TestRemoteErrorMessage(t *testing.T) {
	err := &RemoteError{Status: http.StatusBadGateway}
	assert.Equal(t, "warehouse 502: Bad Gateway", err.Error())
	assert.Nil(t, err.Unwrap())
}
