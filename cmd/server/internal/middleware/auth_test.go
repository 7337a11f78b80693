package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechkit/asr-service/cmd/server/internal/audit"
	"github.com/speechkit/asr-service/cmd/server/internal/tokens"
)

type recordingAudit struct {
	mu      sync.Mutex
	actions []audit.Action
}

func (r *recordingAudit) Log(action audit.Action, _, _, _ string, _ map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func authTestRouter(t *testing.T) (*gin.Engine, *tokens.Manager, *recordingAudit) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	manager, err := tokens.NewManager([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)
	rec := &recordingAudit{}

	r := gin.New()
	r.GET("/protected", RequireToken(manager, rec), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"client": ClientID(c)})
	})
	return r, manager, rec
}

func TestRequireTokenAcceptsValid(t *testing.T) {
	r, manager, rec := authTestRouter(t)

	token, _, err := manager.Issue("test-client")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test-client")
	assert.Empty(t, rec.actions)
}

func TestRequireTokenRejectsMissing(t *testing.T) {
	r, _, rec := authTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.Len(t, rec.actions, 1)
	assert.Equal(t, audit.ActionAuthFailed, rec.actions[0])
}

func TestRequireTokenRejectsGarbage(t *testing.T) {
	r, _, rec := authTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.Len(t, rec.actions, 1)
}
