package respond

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	JSON(rec, 200, map[string]any{"success": true, "processed": 3})

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(3), body["processed"])
}

func TestJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()

	JSON(rec, 204, nil)

	assert.Equal(t, 204, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()

	Error(rec, 400, errors.New("message is required"))

	assert.Equal(t, 400, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "message is required", body["error"])
}

func TestSafeError(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		err       error
		wantError string
	}{
		{
			name:      "validation error passes through",
			code:      400,
			err:       errors.New("message is required"),
			wantError: "message is required",
		},
		{
			name:      "invalid wording passes through",
			code:      401,
			err:       errors.New("invalid service token"),
			wantError: "invalid service token",
		},
		{
			name:      "not found passes through",
			code:      404,
			err:       errors.New("user not found"),
			wantError: "user not found",
		},
		{
			name:      "internal detail is masked",
			code:      400,
			err:       errors.New("dial tcp 10.0.0.5:5432: connection refused"),
			wantError: "internal server error",
		},
		{
			name:      "5xx always masked even with safe wording",
			code:      500,
			err:       errors.New("claim query is invalid"),
			wantError: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			SafeError(rec, tt.code, tt.err)

			assert.Equal(t, tt.code, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestSafeError_NilError(t *testing.T) {
	rec := httptest.NewRecorder()

	SafeError(rec, 500, nil)

	// Nothing written at all.
	assert.Equal(t, 200, rec.Code)
	assert.Empty(t, rec.Body.String())
}
