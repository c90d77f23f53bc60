package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/routerelay/internal/domain/route"
)

const maxErrorBody = 1024

// Result is the outcome of one probe request.
type Result struct {
	RequestID string
	Request   route.Request
	Status    int
	Latency   time.Duration
	// Error is the relay's error message, or the transport error.
	Error string
}

type httpClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *httpClient {
	return &httpClient{client: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

// health checks GET /healthz.
func (c *httpClient) health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health status %d", resp.StatusCode)
	}
	return nil
}

// postRoute sends one request and never returns an error; failures land in Result.
func (c *httpClient) postRoute(ctx context.Context, r route.Request) Result {
	res := Result{RequestID: uuid.NewString(), Request: r}

	payload, err := json.Marshal(r)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/get_route", bytes.NewReader(payload))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", res.RequestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	res.Latency = time.Since(start)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer func() { _ = resp.Body.Close() }()
	res.Status = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if json.Unmarshal(raw, &body) == nil {
			res.Error = body.Error
		}
		return res
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return res
}

// submit fans requests out over workers and returns results in input order.
func (c *httpClient) submit(ctx context.Context, workers int, reqs []route.Request, onResult func(Result)) []Result {
	results := make([]Result, len(reqs))
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = c.postRoute(ctx, reqs[i])
				if onResult != nil {
					onResult(results[i])
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range reqs {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
	return results
}
