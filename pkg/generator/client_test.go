package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna-labs/report-funnel/pkg/services/config"
)

func TestTrigger_AcceptsAckWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/generate", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tok-1", body["accessToken"])
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewClient(config.Endpoint{Host: server.URL})
	assert.NoError(t, client.Trigger(context.Background(), "tok-1"))
}

func TestStatus_ReadsCompletionFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "tok-1", r.URL.Query().Get("accessToken"))
		_, _ = w.Write([]byte(`{"isCompleted": true}`))
	}))
	defer server.Close()

	client := NewClient(config.Endpoint{Host: server.URL})
	done, err := client.Status(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestFetch_ReturnsSections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sections": {"destiny": "long text", "year_ahead": "more text"}}`))
	}))
	defer server.Close()

	client := NewClient(config.Endpoint{Host: server.URL})
	sections, err := client.Fetch(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Len(t, sections, 2)
	assert.Equal(t, "long text", sections["destiny"])
}

func TestStatus_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"isCompleted": false}`))
	}))
	defer server.Close()

	client := NewClient(config.Endpoint{Host: server.URL})
	done, err := client.Status(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 2, attempts)
}
