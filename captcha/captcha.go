// Package captcha verifies reCAPTCHA tokens against Google's siteverify endpoint.
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/user/banconova-go/config"
)

// ErrUnavailable is wrapped by every error that means no verdict could be obtained:
// transport failure, timeout, non-2xx status or an undecodable body.
var ErrUnavailable = errors.New("captcha service unavailable")

// maxResponseBytes bounds how much of the verifier's response is read.
const maxResponseBytes = 64 << 10

// Result is the decoded siteverify answer.
type Result struct {
	Success     bool     `json:"success"`
	ErrorCodes  []string `json:"error-codes"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
}

// Reason joins the error codes for display, or returns "unknown" when there are none.
func (r *Result) Reason() string {
	if len(r.ErrorCodes) == 0 {
		return "unknown"
	}
	return strings.Join(r.ErrorCodes, ", ")
}

// Verifier checks a CAPTCHA token.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (*Result, error)
}

// RecaptchaVerifier is the HTTP implementation of Verifier.
type RecaptchaVerifier struct {
	secret  string
	url     string
	timeout time.Duration
	client  *http.Client
}

// NewRecaptchaVerifier creates a verifier from cfg. A nil client uses http.DefaultClient.
func NewRecaptchaVerifier(cfg *config.CaptchaConfig, client *http.Client) *RecaptchaVerifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &RecaptchaVerifier{
		secret:  cfg.Secret,
		url:     cfg.VerifyURL,
		timeout: cfg.Timeout,
		client:  client,
	}
}

// Verify posts the token to siteverify. The call is bounded by both ctx and the configured timeout.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return &result, nil
}
