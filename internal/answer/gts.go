package answer

import (
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
)

// GTS talks to the hosted /gts answer endpoints.
type GTS struct {
	baseURL    string
	httpClient *http.Client
}

// NewGTS creates a client for baseURL. A zero timeout leaves requests unbounded.
func NewGTS(baseURL string, timeout time.Duration) *GTS {
	return &GTS{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type smileResponse struct {
	Response *string `json:"response"`
}

type resetResponse struct {
	Status any `json:"status"`
}

// Ask sends question on behalf of uid and returns the service's answer.
func (c *GTS) Ask(ctx context.Context, uid int64, question string) (string, error) {
	params := url.Values{}
	params.Set("uid", strconv.FormatInt(uid, 10))
	params.Set("question", question)

	var body smileResponse
	if err := c.get(ctx, "/gts/smile", params, &body); err != nil {
		return "", err
	}

	if body.Response == nil || strings.TrimSpace(*body.Response) == "" {
		return "", ErrMalformedResponse
	}

	return *body.Response, nil
}

// Reset clears the service-side conversation for uid.
func (c *GTS) Reset(ctx context.Context, uid int64) error {
	params := url.Values{}
	params.Set("uid", strconv.FormatInt(uid, 10))

	var body resetResponse
	if err := c.get(ctx, "/gts/reset", params, &body); err != nil {
		return err
	}

	if !truthy(body.Status) {
		return ErrMalformedResponse
	}

	return nil
}

func (c *GTS) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries uid and question; keep it out of user-facing errors.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("%s request failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return ErrMalformedResponse
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return nil
}

// truthy mirrors JSON-level truthiness: false, 0, "", null are falsy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
