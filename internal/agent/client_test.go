package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// splitHostPort turns an httptest server URL into the (ip, port) pair the
// client expects.
func splitHostPort(t *testing.T, serverURL string) (string, int) {
	t.Helper()

	u, err := url.Parse(serverURL)
	require.NoError(t, err)

	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return u.Hostname(), port
}

func newTestClient() Client {
	return NewClient(Config{Timeout: 2 * time.Second, UserAgent: "test/1.0"}, nil)
}

func TestLock_Success(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "locked"})
	}))
	defer server.Close()

	ip, port := splitHostPort(t, server.URL)
	client := newTestClient()

	data, err := client.Lock(context.Background(), ip, port, "secret")

	require.NoError(t, err)
	assert.Equal(t, "/api/lock", gotPath)
	assert.Equal(t, "secret", gotBody["password"])
	assert.Equal(t, "locked", data["status"])
}

func TestUnlock_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/unlock", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		json.NewEncoder(w).Encode(map[string]string{"status": "unlocked"})
	}))
	defer server.Close()

	ip, port := splitHostPort(t, server.URL)
	client := newTestClient()

	data, err := client.Unlock(context.Background(), ip, port, "secret")

	require.NoError(t, err)
	assert.Equal(t, "unlocked", data["status"])
}

func TestStatus_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/status", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode(map[string]bool{"locked": true})
	}))
	defer server.Close()

	ip, port := splitHostPort(t, server.URL)
	client := newTestClient()

	data, err := client.Status(context.Background(), ip, port)

	require.NoError(t, err)
	assert.Equal(t, true, data["locked"])
}

func TestSetSchedule_SendsAgentPayload(t *testing.T) {
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/schedule", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	ip, port := splitHostPort(t, server.URL)
	client := newTestClient()

	_, err := client.SetSchedule(context.Background(), ip, port, "secret", ScheduleConfig{
		Enabled: true,
		Start:   "22:00",
		End:     "07:00",
	})

	require.NoError(t, err)
	assert.Equal(t, "secret", gotBody["password"])
	assert.Equal(t, true, gotBody["enabled"])
	assert.Equal(t, "22:00", gotBody["start"])
	assert.Equal(t, "07:00", gotBody["end"])
}

func TestLock_AgentErrorRelaysStatusAndMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "bad password"})
	}))
	defer server.Close()

	ip, port := splitHostPort(t, server.URL)
	client := newTestClient()

	data, err := client.Lock(context.Background(), ip, port, "wrong")

	assert.Nil(t, data)
	var agentErr *Error
	require.True(t, errors.As(err, &agentErr))
	assert.Equal(t, http.StatusUnauthorized, agentErr.StatusCode)
	assert.Equal(t, "bad password", agentErr.Message)
	assert.Equal(t, "bad password", agentErr.Details["error"])
}

func TestLock_AgentErrorWithoutBodyUsesStatusLine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ip, port := splitHostPort(t, server.URL)
	client := newTestClient()

	_, err := client.Lock(context.Background(), ip, port, "pw")

	var agentErr *Error
	require.True(t, errors.As(err, &agentErr))
	assert.Equal(t, http.StatusServiceUnavailable, agentErr.StatusCode)
	assert.Contains(t, agentErr.Message, "503")
}

func TestStatus_NonJSONBodyWrappedAsRaw(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	ip, port := splitHostPort(t, server.URL)
	client := newTestClient()

	data, err := client.Status(context.Background(), ip, port)

	require.NoError(t, err)
	assert.Equal(t, "OK", data["raw"])
}

func TestStatus_Unreachable(t *testing.T) {
	// A server that is already closed guarantees a connection failure.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ip, port := splitHostPort(t, server.URL)
	server.Close()

	client := newTestClient()

	data, err := client.Status(context.Background(), ip, port)

	assert.Nil(t, data)
	var unreachable *UnreachableError
	require.True(t, errors.As(err, &unreachable))
	assert.NotEmpty(t, unreachable.Error())
}

func TestLock_SingleAttemptOnly(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ip, port := splitHostPort(t, server.URL)
	client := newTestClient()

	_, err := client.Lock(context.Background(), ip, port, "pw")

	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}
