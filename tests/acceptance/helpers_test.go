package acceptance

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sierra-health/medequip-api/repository"
	"github.com/sierra-health/medequip-api/routes"
	"github.com/sierra-health/medequip-api/tests/testutil"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// apiClient talks to a running server over real HTTP
type apiClient struct {
	t      *testing.T
	server *httptest.Server
	store  *repository.Store
}

func startServer(t *testing.T) *apiClient {
	t.Helper()
	testutil.MustSetTestEnvironment(t)
	gin.SetMode(gin.TestMode)

	cfg := testutil.NewTestConfig()
	store := repository.NewGormStore(testutil.NewTestDB(t))
	server := httptest.NewServer(routes.NewRouter(routes.Dependencies{Config: cfg, Store: store}))
	t.Cleanup(server.Close)

	return &apiClient{t: t, server: server, store: store}
}

func (c *apiClient) do(method, path string, body interface{}) (int, envelope) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) > 0 {
		require.NoError(c.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func data[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}
