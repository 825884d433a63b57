package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// promauto registers against the default registry, so one shared
// instance serves every test in this package.
var testConfigMetrics = NewConfigMetrics("configtest")

func TestConfigMetrics_RecordValidationError(t *testing.T) {
	before := testutil.ToFloat64(testConfigMetrics.ValidationErrorsTotal.WithLabelValues("batch_size"))

	testConfigMetrics.RecordValidationError("batch_size")

	after := testutil.ToFloat64(testConfigMetrics.ValidationErrorsTotal.WithLabelValues("batch_size"))
	assert.Equal(t, before+1, after)
}

func TestConfigMetrics_RecordFallback(t *testing.T) {
	before := testutil.ToFloat64(testConfigMetrics.FallbacksTotal.WithLabelValues("timezone"))

	testConfigMetrics.RecordFallback("timezone", "default")

	after := testutil.ToFloat64(testConfigMetrics.FallbacksTotal.WithLabelValues("timezone"))
	assert.Equal(t, before+1, after)
}

func TestConfigMetrics_SetFallbackActive(t *testing.T) {
	testConfigMetrics.SetFallbackActive("", true)
	assert.Equal(t, float64(1), testutil.ToFloat64(testConfigMetrics.FallbackActive))

	testConfigMetrics.SetFallbackActive("", false)
	assert.Equal(t, float64(0), testutil.ToFloat64(testConfigMetrics.FallbackActive))
}

func TestConfigMetrics_RecordLoadTimestamp(t *testing.T) {
	testConfigMetrics.RecordLoadTimestamp()

	assert.Greater(t, testutil.ToFloat64(testConfigMetrics.LoadTimestamp), float64(0))
}
