package clients_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"settlements/clients"
)

func TestFCMSend(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key=server-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := clients.NewFCM("server-key", clients.WithFCMEndpoint(server.URL))

	err := c.Send(context.Background(), clients.PushMessage{
		Token:     "token-123",
		Title:     "Refund Approved",
		Body:      "Your refund has been processed.",
		ChannelID: "movie_refund_channel",
		Data:      map[string]string{"type": "refund_approved"},
	})
	require.NoError(t, err)

	assert.Equal(t, "token-123", got["to"])

	data := got["data"].(map[string]any)
	assert.Equal(t, "FLUTTER_NOTIFICATION_CLICK", data["click_action"])
	assert.Equal(t, "refund_approved", data["type"])

	android := got["android"].(map[string]any)["notification"].(map[string]any)
	assert.Equal(t, "movie_refund_channel", android["channel_id"])
	assert.Equal(t, "high", android["priority"])
}

func TestFCMSendErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "InvalidRegistration", http.StatusBadRequest)
	}))
	defer server.Close()

	c := clients.NewFCM("server-key", clients.WithFCMEndpoint(server.URL))

	err := c.Send(context.Background(), clients.PushMessage{Token: "token-123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
