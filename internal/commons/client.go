// Package commons は Wikimedia Commons API から Rider-Waite-Smith の画像 URL を取得します。
package commons

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"

	"arcana_lab/internal/metrics"
	"arcana_lab/internal/middleware"
)

// ErrFileMissing は指定したファイルが Commons に存在しないことを表します。
var ErrFileMissing = errors.New("commons: file missing")

// リトライ設定の既定値 (最大 6 回、400ms から倍々で最大 8s)
const (
	DefaultMaxRetries   = 6
	DefaultInitialDelay = 400 * time.Millisecond
	DefaultMaxDelay     = 8 * time.Second
)

// ImageInfo は 1 ファイル分の画像 URL です。
type ImageInfo struct {
	FileName    string
	OriginalURL string
	ThumbURL    string // 指定幅に縮小した URL。縮小版がなければ OriginalURL
}

type Client struct {
	endpoint     string
	userAgent    string
	httpClient   *http.Client
	maxRetries   uint64
	initialDelay time.Duration
	maxDelay     time.Duration
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry はリトライ回数と待機時間を変更します (テストでは短くする)。
func WithRetry(maxRetries uint64, initial, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.initialDelay = initial
		c.maxDelay = maxDelay
	}
}

func NewClient(endpoint, userAgent string, opts ...Option) *Client {
	c := &Client{
		endpoint:     endpoint,
		userAgent:    userAgent,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		maxRetries:   DefaultMaxRetries,
		initialDelay: DefaultInitialDelay,
		maxDelay:     DefaultMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type imageInfoResponse struct {
	Query struct {
		Pages map[string]struct {
			Title     string `json:"title"`
			Missing   *string `json:"missing"`
			ImageInfo []struct {
				URL      string `json:"url"`
				ThumbURL string `json:"thumburl"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// retryableError は 429/5xx や HTML のエラーページなど、時間をおけば回復しうる失敗です。
type retryableError struct {
	msg string
}

func (e *retryableError) Error() string { return e.msg }

// ImageURLs は fileName の原寸 URL と width 幅の縮小版 URL を取得します。
func (c *Client) ImageURLs(ctx context.Context, fileName string, width int) (*ImageInfo, error) {
	logger := middleware.GetLogger(ctx).With(slog.String("file", fileName))

	q := url.Values{}
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("origin", "*")
	q.Set("titles", "File:"+fileName)
	q.Set("prop", "imageinfo")
	q.Set("iiprop", "url")
	q.Set("iiurlwidth", fmt.Sprintf("%d", width))
	reqURL := c.endpoint + "?" + q.Encode()

	var resp imageInfoResponse
	operation := func() error {
		err := c.getJSON(ctx, reqURL, &resp)
		var re *retryableError
		if err == nil {
			metrics.CommonsRequestsTotal.WithLabelValues("ok").Inc()
			return nil
		}
		if errors.As(err, &re) {
			metrics.CommonsRequestsTotal.WithLabelValues("retry").Inc()
			return err
		}
		metrics.CommonsRequestsTotal.WithLabelValues("error").Inc()
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("Retrying commons api", slog.Any("error", err), slog.Duration("wait", wait))
	}
	if err := backoff.RetryNotify(operation, c.newBackOff(ctx), notify); err != nil {
		return nil, fmt.Errorf("commons.ImageURLs %s: %w", fileName, err)
	}

	for _, page := range resp.Query.Pages {
		if page.Missing != nil {
			return nil, fmt.Errorf("%w: %s", ErrFileMissing, fileName)
		}
		if len(page.ImageInfo) == 0 {
			return nil, fmt.Errorf("%w: %s has no imageinfo", ErrFileMissing, fileName)
		}
		ii := page.ImageInfo[0]
		info := &ImageInfo{FileName: fileName, OriginalURL: ii.URL, ThumbURL: ii.ThumbURL}
		if info.ThumbURL == "" {
			info.ThumbURL = ii.URL
		}
		return info, nil
	}
	return nil, fmt.Errorf("%w: %s (no pages)", ErrFileMissing, fileName)
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.initialDelay
	eb.MaxInterval = c.maxDelay
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxElapsedTime = 0
	eb.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(eb, c.maxRetries), ctx)
}

func (c *Client) getJSON(ctx context.Context, reqURL string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &retryableError{msg: "request failed: " + err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &retryableError{msg: "read body: " + err.Error()}
	}
	head := strings.Join(strings.Fields(string(body[:min(len(body), 200)])), " ")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("HTTP %d: %s", resp.StatusCode, head)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return &retryableError{msg: msg}
		}
		return errors.New(msg)
	}
	// Commons が一時的に HTML のエラーページを返すことがある
	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, "json") && strings.HasPrefix(strings.TrimSpace(string(body)), "<") {
		return &retryableError{msg: fmt.Sprintf("non-JSON response ct=%s: %s", ct, head)}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &retryableError{msg: "decode json: " + err.Error()}
	}
	return nil
}
