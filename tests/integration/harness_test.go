package integration

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"gorm.io/gorm"

	"github.com/kendall-kelly/box-erp-api/app"
	"github.com/kendall-kelly/box-erp-api/config"
	"github.com/kendall-kelly/box-erp-api/tests/testutil"
)

// harness is the whole application graph started against temporary storage.
type harness struct {
	app    *fxtest.App
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func startApp(t *testing.T, extra map[string]string) *harness {
	t.Helper()

	dir := t.TempDir()
	env := map[string]string{
		"GO_ENV":        "test",
		"PORT":          "0",
		"DATABASE_PATH": filepath.Join(dir, "data", "erp.db"),
		"UPLOAD_DIR":    filepath.Join(dir, "uploads"),
	}
	for k, v := range extra {
		env[k] = v
	}
	cfg, err := config.FromLookup(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	require.NoError(t, err)

	h := &harness{cfg: cfg}
	h.app = fxtest.New(t,
		fx.NopLogger,
		app.Options(
			fx.Replace(cfg),
			fx.Replace(testutil.DiscardLogger()),
		),
		fx.Populate(&h.engine, &h.db),
	)
	h.app.RequireStart()
	t.Cleanup(h.app.RequireStop)
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

func (h *harness) upload(t *testing.T, path, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	env := decodeEnvelope(t, w)
	require.True(t, env.Success, w.Body.String())
	var data T
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data
}
