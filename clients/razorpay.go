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

const razorpayBaseURL = "https://api.razorpay.com/v1"

type Razorpay struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

func NewRazorpay(keyID, keySecret string, opts ...RazorpayOption) *Razorpay {
	c := &Razorpay{
		baseURL:   razorpayBaseURL,
		keyID:     keyID,
		keySecret: keySecret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

type RazorpayOption func(*Razorpay)

func WithRazorpayBaseURL(baseURL string) RazorpayOption {
	return func(c *Razorpay) {
		c.baseURL = baseURL
	}
}

// SplitTransfer is one leg of a split on an already-captured payment.
// Amount is in minor units.
type SplitTransfer struct {
	Account  string            `json:"account"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type OrderTransfer struct {
	Account  string            `json:"account"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type CreateOrderRequest struct {
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Transfers []OrderTransfer   `json:"transfers"`
	Notes     map[string]string `json:"notes,omitempty"`
}

// TransferRequest moves funds directly between accounts. Source/Destination
// are connected account IDs; a reverse transfer sets Source to the owner's
// account and Destination to the platform's.
type TransferRequest struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Source      string            `json:"source"`
	Destination string            `json:"destination"`
	Notes       map[string]string `json:"notes,omitempty"`
}

type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type transferEntity struct {
	ID string `json:"id"`
}

type transferCollection struct {
	Items []transferEntity `json:"items"`
}

type orderEntity struct {
	ID string `json:"id"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// SplitPayment splits an already-captured payment across connected accounts
// and returns the ID of the first created transfer.
func (c *Razorpay) SplitPayment(ctx context.Context, paymentID string, transfers []SplitTransfer) (string, error) {
	body := struct {
		Transfers []SplitTransfer `json:"transfers"`
	}{Transfers: transfers}

	var resp transferCollection
	if err := c.post(ctx, fmt.Sprintf("/payments/%s/transfers", paymentID), body, &resp); err != nil {
		return "", fmt.Errorf("creating payment transfer: %w", err)
	}

	if len(resp.Items) == 0 {
		return "", fmt.Errorf("payment transfer response contains no transfers")
	}

	return resp.Items[0].ID, nil
}

// CreateOrder creates an order that splits the captured amount on payment.
func (c *Razorpay) CreateOrder(ctx context.Context, req CreateOrderRequest) (string, error) {
	var resp orderEntity
	if err := c.post(ctx, "/orders", req, &resp); err != nil {
		return "", fmt.Errorf("creating order: %w", err)
	}

	return resp.ID, nil
}

// CreateTransfer creates a direct transfer, used for recovering an owner's
// share back to the platform account.
func (c *Razorpay) CreateTransfer(ctx context.Context, req TransferRequest) (string, error) {
	var resp transferEntity
	if err := c.post(ctx, "/transfers", req, &resp); err != nil {
		return "", fmt.Errorf("creating transfer: %w", err)
	}

	return resp.ID, nil
}

// RefundPayment refunds amount minor units of the payment to the customer's
// original instrument.
func (c *Razorpay) RefundPayment(ctx context.Context, paymentID string, amount int64, notes map[string]string) (Refund, error) {
	body := struct {
		Amount int64             `json:"amount"`
		Notes  map[string]string `json:"notes,omitempty"`
	}{Amount: amount, Notes: notes}

	var resp Refund
	if err := c.post(ctx, fmt.Sprintf("/payments/%s/refund", paymentID), body, &resp); err != nil {
		return Refund{}, fmt.Errorf("refunding payment: %w", err)
	}

	return resp, nil
}

func (c *Razorpay) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr razorpayError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Description != "" {
			return fmt.Errorf("razorpay: %s (%s)", apiErr.Error.Description, apiErr.Error.Code)
		}
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshalling response: %w", err)
	}

	return nil
}
