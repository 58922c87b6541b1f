package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFCMPush(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := &FCM{ServerKey: "k", Endpoint: srv.URL}
	err := f.Push(context.Background(), "device-1", "Wallet Recharged", "100.00 credited")
	require.NoError(t, err)

	assert.Equal(t, "key=k", auth)
	assert.Equal(t, "device-1", got["to"])
	n := got["notification"].(map[string]any)
	assert.Equal(t, "Wallet Recharged", n["title"])
}

func TestFCMPushRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	f := &FCM{ServerKey: "bad", Endpoint: srv.URL}
	err := f.Push(context.Background(), "device-1", "t", "b")
	assert.Error(t, err)
}

func TestFCMPushSkipsEmptyToken(t *testing.T) {
	// No endpoint, no server: an actor without a device is a no-op.
	f := &FCM{ServerKey: "k", Endpoint: "http://127.0.0.1:0"}
	assert.NoError(t, f.Push(context.Background(), "", "t", "b"))
}
