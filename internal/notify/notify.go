// Package notify delivers best-effort push notifications. Delivery is
// strictly out-of-band: a failure here is logged and swallowed, and must
// never block or roll back the financial transaction that triggered it.
package notify

import (
	"bytes"         // Request body buffer
	"context"       // Request-scoped cancellation
	"encoding/json" // FCM payload encoding
	"fmt"           // Error wrapping
	"net/http"      // FCM legacy HTTP API transport
	"time"          // Dispatch timeout

	"github.com/sirupsen/logrus" // Swallowed failures are still logged
)

// Notifier is the outbound port the ledger and settlement depend on.
// Implementations must not be relied on for acknowledgment.
type Notifier interface {
	Push(ctx context.Context, token, title, body string) error
}

// FCM sends notifications through Firebase Cloud Messaging's HTTP API.
type FCM struct {
	ServerKey string       // Authorization key
	Endpoint  string       // Override for tests; defaults to the FCM send URL
	Client    *http.Client // Defaults to a client with a short timeout
}

const fcmSendURL = "https://fcm.googleapis.com/fcm/send"

// Push posts one message to a device token.
func (f *FCM) Push(ctx context.Context, token, title, body string) error {
	if token == "" {
		return nil // Actor has no registered device
	}
	endpoint := f.Endpoint
	if endpoint == "" {
		endpoint = fcmSendURL
	}
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	payload, err := json.Marshal(map[string]any{
		"to": token,
		"notification": map[string]string{
			"title": title,
			"body":  body,
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+f.ServerKey)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("push rejected: %s", resp.Status)
	}
	return nil
}

// Nop discards every notification. Used in tests and when no server key is
// configured.
type Nop struct{}

// Push does nothing
func (Nop) Push(ctx context.Context, token, title, body string) error { return nil }

// Dispatch sends a notification on its own goroutine with its own timeout.
// There is no acknowledgment path back to the caller: errors are logged at
// warn level and dropped.
func Dispatch(n Notifier, token, title, body string) {
	if n == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := n.Push(ctx, token, title, body); err != nil {
			logrus.WithFields(logrus.Fields{
				"title": title,
				"error": err.Error(),
			}).Warn("Push notification failed")
		}
	}()
}
