// Package gateway is the thin client for the external payment settlement
// API. Settlement truth lives on the gateway side; this client only
// registers chargeable intents and looks receipts up for server-side
// verification.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
	"github.com/fortuna-labs/report-funnel/pkg/services/config"
)

// ErrReceiptNotFound means the gateway has no settlement for the receipt id.
// Callers treat it as a failed payment, not a transient error.
var ErrReceiptNotFound = errors.New("receipt not found")

type ChargeRequest struct {
	MerchantReference string `json:"merchantReference"`
	Amount            int64  `json:"amount"`
	Tier              string `json:"tier"`
}

type Receipt struct {
	ReceiptID         string `json:"receiptId"`
	MerchantReference string `json:"merchantReference"`
	Amount            int64  `json:"amount"`
	Status            string `json:"status"` // settled | failed
}

func (r *Receipt) Settled() bool {
	return r.Status == "settled"
}

type Client interface {
	// RegisterIntent opens a chargeable intent on the gateway. Never
	// auto-retried: a duplicate registration is a duplicate charge risk.
	RegisterIntent(ctx context.Context, charge ChargeRequest) error
	// LookupReceipt fetches the settlement record. Read-only, retried
	// with backoff on transient failures.
	LookupReceipt(ctx context.Context, receiptID string) (*Receipt, error)
}

type httpClient struct {
	endpoint config.Endpoint
	register *http.Client
	lookup   *retryablehttp.Client
}

func NewClient(endpoint config.Endpoint) Client {
	lookup := retryablehttp.NewClient()
	lookup.RetryMax = 3
	lookup.RetryWaitMin = 200 * time.Millisecond
	lookup.RetryWaitMax = 2 * time.Second
	lookup.Logger = nil

	return &httpClient{
		endpoint: endpoint,
		register: &http.Client{Timeout: 10 * time.Second},
		lookup:   lookup,
	}
}

func (c *httpClient) RegisterIntent(ctx context.Context, charge ChargeRequest) error {
	payload, err := json.Marshal(charge)
	if err != nil {
		return fmt.Errorf("encode charge request: %w", err)
	}

	url := c.endpoint.Host + "/v1/intents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build charge request: %w", err)
	}
	c.authorize(req.Header)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.register.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: "gateway.RegisterIntent", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &domain.PaymentError{
			MerchantReference: charge.MerchantReference,
			Reason:            fmt.Sprintf("gateway rejected intent (%d)", resp.StatusCode),
		}
	default:
		return &domain.NetworkError{
			Op:  "gateway.RegisterIntent",
			Err: fmt.Errorf("gateway returned %d", resp.StatusCode),
		}
	}
}

func (c *httpClient) LookupReceipt(ctx context.Context, receiptID string) (*Receipt, error) {
	url := fmt.Sprintf("%s/v1/receipts/%s", c.endpoint.Host, receiptID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build receipt request: %w", err)
	}
	c.authorize(req.Header)

	resp, err := c.lookup.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: "gateway.LookupReceipt", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrReceiptNotFound
	case resp.StatusCode >= 400:
		return nil, &domain.NetworkError{
			Op:  "gateway.LookupReceipt",
			Err: fmt.Errorf("gateway returned %d", resp.StatusCode),
		}
	}

	var receipt Receipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	return &receipt, nil
}

func (c *httpClient) authorize(h http.Header) {
	if c.endpoint.Token != "" {
		h.Set("Authorization", "Bearer "+c.endpoint.Token)
	}
}
