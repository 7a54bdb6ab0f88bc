package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/rd2weekly/internal/adapters/repository"
	"github.com/okian/rd2weekly/internal/domain/period"
	"github.com/okian/rd2weekly/pkg/logger"
)

const workerChannelMultiplier = 2

type outcome int

const (
	outcomeAccepted outcome = iota
	outcomeDuplicate
	outcomeFailed
)

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request body: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if out != nil && resp.StatusCode < http.StatusBadRequest {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *HTTPClient) health(ctx context.Context) error {
	code, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("health check returned %d", code)
	}
	return nil
}

func (c *HTTPClient) submit(ctx context.Context, p period.Period) outcome {
	var ack submitResponse
	code, err := c.do(ctx, http.MethodPost, "/periods", p, &ack)
	switch {
	case err != nil:
		return outcomeFailed
	case code == http.StatusAccepted:
		return outcomeAccepted
	case code == http.StatusOK && ack.Duplicate:
		return outcomeDuplicate
	default:
		return outcomeFailed
	}
}

func (c *HTTPClient) periods(ctx context.Context) ([]int, error) {
	var resp periodsResponse
	code, err := c.do(ctx, http.MethodGet, "/periods", nil, &resp)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("list periods returned %d", code)
	}
	return resp.Periods, nil
}

func (c *HTTPClient) standings(ctx context.Context, limit int) ([]repository.Entry, error) {
	var resp struct {
		Standings []repository.Entry `json:"standings"`
	}
	code, err := c.do(ctx, http.MethodGet, "/standings?limit="+strconv.Itoa(limit), nil, &resp)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, fmt.Errorf("standings returned %d", code)
	}
	return resp.Standings, nil
}

// submitPeriods posts periods with a pool of workers and counts outcomes.
func submitPeriods(ctx context.Context, cfg *Config, client *HTTPClient, periods []period.Period, stats *Stats) {
	log := logger.Get().Named("loadgen")
	workers := max(cfg.Workers, 1)

	var submitted, accepted, duplicate, failed int64
	ch := make(chan period.Period, workers*workerChannelMultiplier)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range ch {
				atomic.AddInt64(&submitted, 1)
				switch client.submit(ctx, p) {
				case outcomeAccepted:
					atomic.AddInt64(&accepted, 1)
				case outcomeDuplicate:
					atomic.AddInt64(&duplicate, 1)
				default:
					atomic.AddInt64(&failed, 1)
					log.Warn(ctx, "period submission failed", logger.Int("period", p.Number))
				}
			}
		}()
	}

	go func() {
		defer close(ch)
		for _, p := range periods {
			select {
			case <-ctx.Done():
				return
			case ch <- p:
			}
		}
	}()
	wg.Wait()

	stats.Submitted += int(submitted)
	stats.Accepted += int(accepted)
	stats.Duplicate += int(duplicate)
	stats.Failed += int(failed)
	log.Info(ctx, "submission round completed",
		logger.Int("submitted", int(submitted)),
		logger.Int("accepted", int(accepted)),
		logger.Int("duplicate", int(duplicate)),
		logger.Int("failed", int(failed)))
}
