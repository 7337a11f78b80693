package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechkit/asr-service/pkg/whisper"
)

func TestHandleStatusDegraded(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.Diarization.Mode = "off"

	r := gin.New()
	r.GET("/status", HandleStatus(cfg, whisper.NewMockTranscriber(), nil, nil, time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "disabled", resp["archive"])

	transcriber := resp["transcriber"].(map[string]interface{})
	assert.Equal(t, "mock-degraded", transcriber["name"])
	assert.Equal(t, false, transcriber["healthy"])

	diarization := resp["diarization"].(map[string]interface{})
	assert.Equal(t, "off", diarization["mode"])
	_, hasBackend := diarization["backend"]
	assert.False(t, hasBackend)
}
