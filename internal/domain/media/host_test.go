package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeCloudinary(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*CloudinaryHost, *atomic.Int32) {
	t.Helper()
	hits := new(atomic.Int32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	host, err := NewCloudinaryHost(CloudinaryOptions{
		CloudName:    "demo",
		UploadPreset: "events_unsigned",
		APIKey:       "key",
		APISecret:    "secret",
		UploadPrefix: srv.URL,
	})
	require.NoError(t, err)
	return host, hits
}

func TestCloudinaryHostUnsignedUpload(t *testing.T) {
	var preset, resourceType, path string
	host, hits := fakeCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		preset = r.FormValue("upload_preset")
		resourceType = r.FormValue("resource_type")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"public_id":  "events/abc",
			"secure_url": "https://res.cloudinary.com/demo/image/upload/events/abc.png",
		})
	})

	url, err := host.Upload(context.Background(), image("banner.png"))
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/events/abc.png", url)
	assert.Equal(t, "events_unsigned", preset)
	assert.Equal(t, "image", resourceType)
	assert.Equal(t, "/v1_1/demo/auto/upload", path)
	assert.Equal(t, int32(1), hits.Load())
}

func TestCloudinaryHostMissingSecureURLIsFailure(t *testing.T) {
	host, hits := fakeCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"public_id":"events/abc"}`))
	})

	_, err := host.Upload(context.Background(), image("banner.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secure_url")
	assert.Equal(t, int32(1), hits.Load())
}

func TestCloudinaryHostRejectedUpload(t *testing.T) {
	host, hits := fakeCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
	})

	_, err := host.Upload(context.Background(), image("banner.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Upload preset not found")
	assert.Equal(t, int32(1), hits.Load())
}

func TestNewCloudinaryHostRequiresPreset(t *testing.T) {
	_, err := NewCloudinaryHost(CloudinaryOptions{CloudName: "demo"})
	assert.Error(t, err)
}
