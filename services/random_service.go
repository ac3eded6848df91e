package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mealarena/errs"
)

// defaultRandomURL asks random.org for one decimal fraction in [0,1) as
// plain text.
const defaultRandomURL = "https://www.random.org/decimal-fractions/?num=1&dec=2&col=1&format=plain&rnd=new"

const defaultRandomTimeout = 5 * time.Second

// RandomService fetches random draws from an external plain-text endpoint.
// One GET per draw, no retries; a failed draw fails the battle attempt.
type RandomService struct {
	url    string
	client *http.Client
}

func NewRandomService(rawURL string, timeout time.Duration) *RandomService {
	if rawURL == "" {
		rawURL = defaultRandomURL
	}
	if timeout <= 0 {
		timeout = defaultRandomTimeout
	}
	return &RandomService{
		url:    rawURL,
		client: &http.Client{Timeout: timeout},
	}
}

// Draw fetches a single float in [0,1) from the random service.
func (s *RandomService) Draw(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, fmt.Errorf("building random service request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if (errors.As(err, &urlErr) && urlErr.Timeout()) || errors.Is(err, context.DeadlineExceeded) {
			return 0, fmt.Errorf("%w: request to random service timed out", errs.ErrServiceUnavailable)
		}
		return 0, fmt.Errorf("%w: request to random service failed: %v", errs.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("%w: random service returned status %d: %s",
			errs.ErrServiceUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return 0, fmt.Errorf("%w: reading random service response: %v", errs.ErrServiceUnavailable, err)
	}

	text := strings.TrimSpace(string(body))
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid response from random service: %s", errs.ErrValidation, text)
	}

	return value, nil
}
