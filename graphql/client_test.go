package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelforge/labelforge-go/config"
)

func testConfig(endpoint string) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			Endpoint:  endpoint,
			Key:       "sk-test",
			Timeout:   5 * time.Second,
			VerifySSL: true,
		},
		Upload: config.UploadConfig{Concurrency: 2},
	}
}

func TestExecuteDecodesData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "X-API-Key: sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "createProject")
		assert.Equal(t, "My project", req.Variables["title"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"data":{"id":"proj_1"}}}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	var payload struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	err := client.Execute(context.Background(), CreateProject,
		map[string]interface{}{"title": "My project"}, &payload)
	require.NoError(t, err)
	assert.Equal(t, "proj_1", payload.Data.ID)
}

func TestExecuteResolverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errors":[{"message":"upload from local data is not allowed","extensions":{"code":"UPLOAD_FROM_LOCAL_DATA_FORBIDDEN"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	err := client.Execute(context.Background(), CreateUploadBucketSignedURLs, nil, nil)
	require.Error(t, err)

	var gqlErr *Error
	require.True(t, errors.As(err, &gqlErr))
	assert.Equal(t, "UPLOAD_FROM_LOCAL_DATA_FORBIDDEN", gqlErr.Extensions.Code)
	assert.Contains(t, gqlErr.Error(), "not allowed")
}

func TestExecuteRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	err := client.Execute(context.Background(), CountProjects, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	// initial request plus two retries
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestExecuteNilResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"data":{"id":"x"}}}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	assert.NoError(t, client.Execute(context.Background(), DeleteProjectAsynchronously, nil, nil))
}
