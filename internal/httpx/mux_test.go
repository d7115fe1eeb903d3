package httpx

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rod1202/print-inv/internal/config"
	"github.com/Rod1202/print-inv/internal/core"
	"github.com/Rod1202/print-inv/internal/service"
)

// newTestMux wires the full surface against a stub contents API that knows
// nothing (GET 404) and accepts every write, which exercises the seed
// fallback and the save flow end to end.
func newTestMux(t *testing.T) http.Handler {
	t.Helper()
	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.NotFound(w, r)
		case http.MethodPut:
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"content":{"sha":"stub"}}`)
		}
	}))
	t.Cleanup(stub.Close)

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Inventario.GitHub.BaseURL = stub.URL
	cfg.Inventario.Auth.Users = []config.UserConfig{{Username: "rcarbonel", Password: "secreto"}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h, err := NewMux(logger, cfg)
	require.NoError(t, err)
	return h
}

func doJSON(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set(sessionHeader, token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/v1/login", "", `{"username":"rcarbonel","password":"secreto"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Token     string          `json:"token"`
		Inventory core.Collection `json:"inventory"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	require.NotEmpty(t, out.Inventory)
	return out.Token
}

func TestHealth(t *testing.T) {
	h := newTestMux(t)
	w := doJSON(t, h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginIssuesSessionAndSeedInventory(t *testing.T) {
	h := newTestMux(t)
	token := login(t, h)
	assert.NotEmpty(t, token)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h := newTestMux(t)
	w := doJSON(t, h, http.MethodPost, "/v1/login", "", `{"username":"rcarbonel","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInventoryRequiresSession(t *testing.T) {
	h := newTestMux(t)
	w := doJSON(t, h, http.MethodGet, "/v1/inventory", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInventorySearch(t *testing.T) {
	h := newTestMux(t)
	token := login(t, h)

	w := doJSON(t, h, http.MethodGet, "/v1/inventory?serie=VNB", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var col core.Collection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &col))
	require.Len(t, col, 1)
	assert.Equal(t, "VNB3K05677", col[0].Serie)
}

func TestSaveRoundTrip(t *testing.T) {
	h := newTestMux(t)
	token := login(t, h)

	w := doJSON(t, h, http.MethodPost, "/v1/inventory", token,
		`{"serie":"NEW-001","categoria":"Impresora","uso":"Produccion"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var out service.SaveResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "NEW-001", out.Active.Serie)
	assert.Equal(t, "rcarbonel", out.Active.OperadorRegistro)
	require.Len(t, out.Events, 1)
	assert.Equal(t, core.ActionCreate, out.Events[0].Accion)
}

func TestSaveValidationError(t *testing.T) {
	h := newTestMux(t)
	token := login(t, h)

	w := doJSON(t, h, http.MethodPost, "/v1/inventory", token, `{"uso":"Produccion"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuditsEmpty(t *testing.T) {
	h := newTestMux(t)
	token := login(t, h)

	w := doJSON(t, h, http.MethodGet, "/v1/audits?limit=10", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}
