package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const fcmEndpoint = "https://fcm.googleapis.com/fcm/send"

// clickAction is required by the mobile client to route notification taps.
const clickAction = "FLUTTER_NOTIFICATION_CLICK"

type FCM struct {
	endpoint   string
	serverKey  string
	httpClient *http.Client
}

func NewFCM(serverKey string, opts ...FCMOption) *FCM {
	c := &FCM{
		endpoint:  fcmEndpoint,
		serverKey: serverKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

type FCMOption func(*FCM)

func WithFCMEndpoint(endpoint string) FCMOption {
	return func(c *FCM) {
		c.endpoint = endpoint
	}
}

type PushMessage struct {
	Token     string
	Title     string
	Body      string
	ChannelID string
	Data      map[string]string
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmAndroidNotification struct {
	ChannelID string `json:"channel_id"`
	Priority  string `json:"priority"`
	Icon      string `json:"icon"`
}

type fcmPayload struct {
	To           string            `json:"to"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data"`
	Android      struct {
		Notification fcmAndroidNotification `json:"notification"`
	} `json:"android"`
}

func (c *FCM) Send(ctx context.Context, msg PushMessage) error {
	data := make(map[string]string, len(msg.Data)+1)
	for k, v := range msg.Data {
		data[k] = v
	}
	data["click_action"] = clickAction

	payload := fcmPayload{
		To: msg.Token,
		Notification: fcmNotification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: data,
	}
	payload.Android.Notification = fcmAndroidNotification{
		ChannelID: msg.ChannelID,
		Priority:  "high",
		Icon:      "app",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "key="+c.serverKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
