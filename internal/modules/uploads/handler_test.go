package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"eventadmin/internal/domain/media"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type MockHost struct {
	mock.Mock
}

func (m *MockHost) Upload(ctx context.Context, f media.File) (string, error) {
	args := m.Called(ctx, f.Name)
	return args.String(0), args.Error(1)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Details struct {
			Notices []struct {
				Level   string `json:"level"`
				Message string `json:"message"`
			} `json:"notices"`
		} `json:"details"`
	} `json:"error"`
}

func setupRouter(t *testing.T) (*gin.Engine, *MockHost) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, _ := test.NewNullLogger()
	host := new(MockHost)
	registry := media.NewRegistry(host, time.Minute, log)

	router := gin.New()
	NewHandler(registry, log).RegisterRoutes(router.Group("/api/v1"))
	return router, host
}

func perform(router *gin.Engine, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env))
	return env
}

func openBatch(t *testing.T, router *gin.Engine, mode string) BatchResponse {
	t.Helper()
	resp := perform(router, http.MethodPost, "/api/v1/uploads/batches", "application/json", []byte(`{"mode":"`+mode+`"}`))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var b BatchResponse
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &b))
	return b
}

func filesForm(t *testing.T, names ...string) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(pngHeader)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return w.FormDataContentType(), buf.Bytes()
}

func TestBatchLifecycle(t *testing.T) {
	router, host := setupRouter(t)
	host.On("Upload", mock.Anything, "a.png").Return("https://cdn.example/a.png", nil)
	host.On("Upload", mock.Anything, "c.png").Return("https://cdn.example/c.png", nil)

	b := openBatch(t, router, "multi")
	assert.Equal(t, media.ModeMulti, b.Mode)
	assert.Equal(t, 12, b.MaxFiles)

	ct, body := filesForm(t, "a.png", "b.png", "c.png")
	resp := perform(router, http.MethodPost, "/api/v1/uploads/batches/"+b.ID+"/files", ct, body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = perform(router, http.MethodDelete, "/api/v1/uploads/batches/"+b.ID+"/files/1", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var after BatchResponse
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &after))
	require.Len(t, after.Pending, 2)

	resp = perform(router, http.MethodPost, "/api/v1/uploads/batches/"+b.ID+"/upload", "", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var out struct {
		Batch  BatchResponse `json:"batch"`
		Result media.Result  `json:"result"`
	}
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &out))
	assert.Equal(t, []string{"https://cdn.example/a.png", "https://cdn.example/c.png"}, out.Result.URLs)
	assert.Empty(t, out.Batch.Pending)
	assert.Equal(t, out.Result.URLs, out.Batch.Uploaded)

	resp = perform(router, http.MethodDelete, "/api/v1/uploads/batches/"+b.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	resp = perform(router, http.MethodGet, "/api/v1/uploads/batches/"+b.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSelectOverCapIsPolicyViolation(t *testing.T) {
	router, _ := setupRouter(t)
	b := openBatch(t, router, "multi")

	var names []string
	for i := 0; i < 13; i++ {
		names = append(names, fmt.Sprintf("%d.png", i))
	}
	ct, body := filesForm(t, names...)
	resp := perform(router, http.MethodPost, "/api/v1/uploads/batches/"+b.ID+"/files", ct, body)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	env := decode(t, resp)
	assert.Equal(t, "POLICY_VIOLATION", env.Error.Code)
	require.NotEmpty(t, env.Error.Details.Notices)
	assert.Equal(t, "error", env.Error.Details.Notices[0].Level)
}

func TestUploadEmptyBatchIsPolicyViolation(t *testing.T) {
	router, _ := setupRouter(t)
	b := openBatch(t, router, "single")

	resp := perform(router, http.MethodPost, "/api/v1/uploads/batches/"+b.ID+"/upload", "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestTotalUploadFailureKeepsPending(t *testing.T) {
	router, host := setupRouter(t)
	host.On("Upload", mock.Anything, mock.Anything).Return("", errors.New("timeout"))

	b := openBatch(t, router, "single")
	ct, body := filesForm(t, "banner.png")
	resp := perform(router, http.MethodPost, "/api/v1/uploads/batches/"+b.ID+"/files", ct, body)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = perform(router, http.MethodPost, "/api/v1/uploads/batches/"+b.ID+"/upload", "", nil)
	require.Equal(t, http.StatusBadGateway, resp.Code)
	env := decode(t, resp)
	assert.Equal(t, "UPLOAD_FAILED", env.Error.Code)
	require.Len(t, env.Error.Details.Notices, 1)
	assert.Contains(t, env.Error.Details.Notices[0].Message, "banner.png")

	resp = perform(router, http.MethodGet, "/api/v1/uploads/batches/"+b.ID, "", nil)
	var after BatchResponse
	require.NoError(t, json.Unmarshal(decode(t, resp).Data, &after))
	assert.Len(t, after.Pending, 1)
}

func TestOpenUnknownModeIsRejected(t *testing.T) {
	router, _ := setupRouter(t)
	resp := perform(router, http.MethodPost, "/api/v1/uploads/batches", "application/json", []byte(`{"mode":"gallery"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}
