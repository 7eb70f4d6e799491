package postgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/movepost/movepost/internal/domain/campaign"
	"github.com/movepost/movepost/internal/domain/mover"
)

const DefaultBaseURL = "https://api.postgrid.com/print-mail/v1"

const (
	// Test-mode keys are detected by prefix; live keys carry "live_".
	testKeyPrefix = "test_"

	postcardSize   = "6x4"
	defaultCountry = "US"

	// Fallback recipient name when the lead arrives without one.
	defaultFirstName = "Resident"

	defaultListLimit = 10
)

var (
	ErrMissingAPIKey = errors.New("postgrid api key is not configured")
	ErrNotTestKey    = errors.New("progressions require a test-mode api key")
)

// Operation labels used both as error prefixes and metric labels.
const (
	opSend     = "send postcard"
	opStatus   = "get postcard status"
	opCancel   = "cancel postcard"
	opList     = "list postcards"
	opProgress = "progress test postcard"
)

// HTTPDoer is the minimal HTTP surface; tests inject fakes through it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives one callback per vendor round trip.
type Observer func(op string, duration time.Duration, err error)

// Client is a stateless PostGrid print-mail API client. One HTTP call per
// operation, no retries, no queueing: the postcard lifecycle lives entirely
// on the vendor side and this client only issues commands and reads it back.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
	observe    Observer
}

type Config struct {
	BaseURL string
	APIKey  string
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient swaps the underlying HTTP client (used by tests).
func (c *Client) SetHTTPClient(client HTTPDoer) {
	c.httpClient = client
}

// SetObserver installs a per-request metrics hook.
func (c *Client) SetObserver(fn Observer) {
	c.observe = fn
}

// TestMode reports whether the configured key is a test-mode key.
func (c *Client) TestMode() bool {
	return strings.HasPrefix(c.apiKey, testKeyPrefix)
}

// SendPostcard creates one postcard for the given recipient and design.
// A lead without a name is addressed to "Resident". The campaign, its owner
// and the lead's provenance ride along as vendor metadata.
func (c *Client) SendPostcard(ctx context.Context, recipient mover.Recipient, designURL string, camp campaign.Campaign) (*Postcard, error) {
	firstName, lastName := splitRecipientName(recipient.FullName)

	req := createPostcardRequest{
		To: Contact{
			FirstName:       firstName,
			LastName:        lastName,
			AddressLine1:    recipient.StreetAddress,
			City:            recipient.City,
			ProvinceOrState: recipient.State,
			PostalOrZip:     recipient.Zip,
			CountryCode:     defaultCountry,
			PhoneNumber:     recipient.Phone,
		},
		Front:   designURL,
		Size:    postcardSize,
		Express: false,
		Metadata: map[string]string{
			"campaign_id":  camp.ID,
			"user_id":      camp.UserID,
			"recipient_id": recipient.ID,
			"smarty_key":   recipient.SmartyKey,
			"move_date":    recipient.MoveDate,
		},
	}

	raw, err := c.doRequest(ctx, opSend, http.MethodPost, "/postcards", req)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSend, err)
	}

	return parsePostcard(opSend, raw)
}

// GetPostcardStatus reads the vendor's current view of one postcard.
func (c *Client) GetPostcardStatus(ctx context.Context, id string) (*Postcard, error) {
	raw, err := c.doRequest(ctx, opStatus, http.MethodGet, "/postcards/"+url.PathEscape(id), nil)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", opStatus, err)
	}

	return parsePostcard(opStatus, raw)
}

// CancelPostcard asks the vendor to cancel a postcard. Cancellation is only
// accepted pre-print; a late cancel surfaces as the vendor's own error.
func (c *Client) CancelPostcard(ctx context.Context, id string) (*CancelResult, error) {
	raw, err := c.doRequest(ctx, opCancel, http.MethodDelete, "/postcards/"+url.PathEscape(id), nil)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", opCancel, err)
	}

	var result CancelResult

	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%s: failed to parse response: %w", opCancel, err)
	}

	return &result, nil
}

type ListOptions struct {
	Search string
	Skip   int
	Limit  int
}

// ListPostcards fetches one page of postcards. Skip defaults to 0 and limit
// to 10; the search parameter is omitted entirely when empty.
func (c *Client) ListPostcards(ctx context.Context, opts ListOptions) (*PostcardList, error) {
	skip := opts.Skip

	if skip < 0 {
		skip = 0
	}

	limit := opts.Limit

	if limit <= 0 {
		limit = defaultListLimit
	}

	params := url.Values{}
	params.Set("skip", strconv.Itoa(skip))
	params.Set("limit", strconv.Itoa(limit))

	if opts.Search != "" {
		params.Set("search", opts.Search)
	}

	raw, err := c.doRequest(ctx, opList, http.MethodGet, "/postcards?"+params.Encode(), nil)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", opList, err)
	}

	var list PostcardList

	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%s: failed to parse response: %w", opList, err)
	}

	return &list, nil
}

// ProgressTestPostcard advances a simulated postcard through its lifecycle.
// Only valid against a test-mode key; fails before any network I/O otherwise.
func (c *Client) ProgressTestPostcard(ctx context.Context, id string) (*Postcard, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%s: %w", opProgress, ErrMissingAPIKey)
	}

	if !c.TestMode() {
		return nil, fmt.Errorf("%s: %w", opProgress, ErrNotTestKey)
	}

	raw, err := c.doRequest(ctx, opProgress, http.MethodPost, "/postcards/"+url.PathEscape(id)+"/progressions", nil)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", opProgress, err)
	}

	return parsePostcard(opProgress, raw)
}

// ValidateConfiguration checks the credential with a cheap one-row list call.
// It never returns an error; every failure lands in the result value.
func (c *Client) ValidateConfiguration(ctx context.Context) ValidationResult {
	if c.apiKey == "" {
		return ValidationResult{Valid: false, Error: ErrMissingAPIKey.Error()}
	}

	_, err := c.ListPostcards(ctx, ListOptions{Limit: 1})

	if err != nil {
		return ValidationResult{Valid: false, Error: err.Error()}
	}

	mode := "live"

	if c.TestMode() {
		mode = "test"
	}

	return ValidationResult{Valid: true, Mode: mode}
}

// doRequest performs one authenticated vendor call and returns the raw body.
func (c *Client) doRequest(ctx context.Context, op, method, endpoint string, body interface{}) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)

		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}

		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)

	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", c.apiKey)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)

	if c.observe != nil {
		c.observe(op, time.Since(start), err)
	}

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, vendorErrorMessage(respBody, resp.StatusCode))
	}

	return respBody, nil
}

// vendorErrorMessage pulls the embedded message out of a vendor error body,
// falling back to the HTTP status text when the body carries none.
func vendorErrorMessage(body []byte, statusCode int) string {
	var apiErr apiError

	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}

	return http.StatusText(statusCode)
}

func parsePostcard(op string, raw json.RawMessage) (*Postcard, error) {
	var pc Postcard

	if err := json.Unmarshal(raw, &pc); err != nil {
		return nil, fmt.Errorf("%s: failed to parse response: %w", op, err)
	}

	pc.Raw = raw

	return &pc, nil
}

// splitRecipientName splits a lead's full name into first/last, defaulting to
// "Resident" when the lead has no name at all.
func splitRecipientName(fullName string) (string, string) {
	fullName = strings.TrimSpace(fullName)

	if fullName == "" {
		return defaultFirstName, ""
	}

	first, rest, found := strings.Cut(fullName, " ")

	if !found {
		return first, ""
	}

	return first, strings.TrimSpace(rest)
}
