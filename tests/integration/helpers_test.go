package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/sierra-health/medequip-api/config"
	"github.com/sierra-health/medequip-api/repository"
	"github.com/sierra-health/medequip-api/routes"
	"github.com/sierra-health/medequip-api/tests/testutil"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testConfig() *config.Config {
	return testutil.NewTestConfig()
}

func newRouter(cfg *config.Config, store *repository.Store, admin ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return routes.NewRouter(routes.Dependencies{Config: cfg, Store: store, AdminAuth: admin})
}

// doJSON sends body as JSON through router and decodes the envelope
func doJSON(s *suite.Suite, router http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		s.Require().NoError(err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decodeData[T any](s *suite.Suite, env envelope) T {
	var v T
	require.NoError(s.T(), json.Unmarshal(env.Data, &v))
	return v
}
