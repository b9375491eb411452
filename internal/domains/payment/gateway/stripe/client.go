package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AfroSamurai-hub/OzzServe/internal/domains/payment/gateway"
)

// =====================================================
// STRIPE CLIENT
// =====================================================

// Client talks to the Stripe Payment Intents API with manual capture.
// The form-encoded request/response shapes follow the public API; only the
// fields the core needs are decoded.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

func NewClient(secretKey, apiURL string) (gateway.StripeGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	if apiURL == "" {
		apiURL = "https://api.stripe.com/v1"
	}

	return &Client{
		secretKey: secretKey,
		apiURL:    strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type intentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// AuthorizeIntent creates an intent with capture_method=manual so the
// funds are held but not taken.
func (c *Client) AuthorizeIntent(ctx context.Context, req gateway.AuthorizeRequest) (string, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountCents, 10))
	form.Set("currency", strings.ToLower(req.Currency))
	form.Set("capture_method", "manual")
	form.Set("metadata[booking_id]", req.BookingID)

	resp, err := c.post(ctx, "/payment_intents", form)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) CaptureIntent(ctx context.Context, providerRef string) error {
	_, err := c.post(ctx, "/payment_intents/"+providerRef+"/capture", url.Values{})
	return err
}

func (c *Client) CancelIntent(ctx context.Context, providerRef string) error {
	_, err := c.post(ctx, "/payment_intents/"+providerRef+"/cancel", url.Values{})
	return err
}

func (c *Client) post(ctx context.Context, path string, form url.Values) (*intentResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read stripe response: %w", err)
	}

	var decoded intentResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode stripe response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		msg := "unknown error"
		if decoded.Error != nil {
			msg = decoded.Error.Message
		}
		return nil, fmt.Errorf("stripe %s returned %d: %s", path, httpResp.StatusCode, msg)
	}

	return &decoded, nil
}
