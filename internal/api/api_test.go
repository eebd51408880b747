package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trainyourai/mervlink/internal/mervlink"
	"github.com/trainyourai/mervlink/internal/model"
	"github.com/trainyourai/mervlink/internal/store"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *mervlink.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := mervlink.New(st, mervlink.Options{Logger: logger, PublicURL: "http://localhost:8080"})
	h := &Handler{Router: mervlink.NewRouter(svc), Log: logger}
	return NewEngine(h), svc
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestHealth(t *testing.T) {
	r, _ := setupTestRouter(t)
	w, body := do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	w, _ = do(t, r, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendAndThread(t *testing.T) {
	r, _ := setupTestRouter(t)

	w, body := do(t, r, http.MethodPost, "/api/mervlink/send", map[string]any{
		"sender_uid":   "uid_a",
		"receiver_uid": "uid_b",
		"message":      "hello",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := body["result"].(map[string]any)
	assert.Equal(t, "delivered", result["status"])
	id := result["message_id"].(string)

	w, _ = do(t, r, http.MethodPost, "/api/mervlink/send", map[string]any{
		"sender_uid": "uid_a",
		"message":    "hello",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = do(t, r, http.MethodGet, "/api/mervlink/messages?uid=uid_b&peer=uid_a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "unread", msgs[0].(map[string]any)["status"])

	w, _ = do(t, r, http.MethodPost, "/api/mervlink/messages/"+id+"/read", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodPost, "/api/mervlink/messages/missing/read", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/mervlink/messages", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendRoutesChef(t *testing.T) {
	r, _ := setupTestRouter(t)

	w, body := do(t, r, http.MethodPost, "/api/mervlink/send", map[string]any{
		"sender_uid":   "uid_a",
		"receiver_uid": "chef",
		"assistant":    "chef",
		"message":      "save this as Sunday Roast",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := body["result"].(map[string]any)
	assert.Equal(t, "route", result["action"])
	assert.Equal(t, "saved", result["status"])

	w, body = do(t, r, http.MethodGet, "/api/chef/recipes?owner_uid=uid_a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	recipes := body["recipes"].([]any)
	require.Len(t, recipes, 1)
	assert.Equal(t, "sundayroast", recipes[0].(map[string]any)["key"])
}

func TestApprovalEndpoints(t *testing.T) {
	r, svc := setupTestRouter(t)
	ctx := t.Context()

	a, err := svc.RequestApproval(ctx, "uid_dave", "uid_a", model.AssistantChef, "recipes.risotto")
	require.NoError(t, err)

	w, body := do(t, r, http.MethodGet, "/api/mervlink/approvals?owner_uid=uid_dave", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["approvals"].([]any), 1)

	w, _ = do(t, r, http.MethodPost, "/api/mervlink/approvals/respond", map[string]any{"id": a.ID, "action": "shrug"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/mervlink/approvals/respond", map[string]any{"id": "missing", "action": "approve"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = do(t, r, http.MethodPost, "/api/mervlink/approvals/respond", map[string]any{"id": a.ID, "action": "approve"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Approved: risotto is now available", body["message"])

	w, _ = do(t, r, http.MethodPost, "/api/mervlink/approvals/respond", map[string]any{"id": a.ID, "action": "deny"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = do(t, r, http.MethodGet, "/api/mervlink/approvals?owner_uid=uid_dave", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["approvals"].([]any))
}

func TestInviteEndpoints(t *testing.T) {
	r, _ := setupTestRouter(t)

	w, body := do(t, r, http.MethodPost, "/api/invites", map[string]any{
		"user_uid":    "uid_a",
		"link_type":   "personal",
		"permissions": map[string]any{"chef": true},
		"name":        "Alice",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := body["token"].(string)
	assert.Equal(t, "http://localhost:8080/invite?token="+token, body["invite_url"])

	w, _ = do(t, r, http.MethodGet, "/api/invites/validate?token="+token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, r, http.MethodGet, "/api/invites/validate?token=unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/invites/accept", map[string]any{"token": token, "linked_uid": "uid_dave", "name": "Dave"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = do(t, r, http.MethodGet, "/api/invites/validate?token="+token, nil)
	assert.Equal(t, http.StatusGone, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/invites/decline?token="+token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/invites", map[string]any{"user_uid": "uid_a", "link_type": "rivals"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskByNameOverHTTP(t *testing.T) {
	r, svc := setupTestRouter(t)
	ctx := t.Context()

	_, err := svc.AddContact(ctx, "uid_a", "Dave", "uid_dave", model.LinkPersonal)
	require.NoError(t, err)

	w, body := do(t, r, http.MethodPost, "/api/mervlink/send", map[string]any{
		"sender_uid":   "uid_a",
		"receiver_uid": "chef",
		"assistant":    "chef",
		"message":      "ask Dave for risotto",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "denied", body["result"].(map[string]any)["status"])

	for _, uid := range []string{"uid_a", "uid_dave"} {
		w, body = do(t, r, http.MethodGet, "/api/mervlink/messages?uid="+uid, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, body["messages"].([]any), uid)
	}
}
