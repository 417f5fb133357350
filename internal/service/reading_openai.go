package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"arcana_lab/internal/config"
	"arcana_lab/internal/metrics"
	"arcana_lab/internal/middleware"
	"arcana_lab/internal/model"
)

const (
	openAIBackend     = "openai"
	openAIBreakerName = "openai-chat"
	maxErrorBodyLog   = 512
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	Temperature    float64             `json:"temperature"`
	TopP           float64             `json:"top_p"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OpenAIReadingGenerator は Chat Completions API でリーディングを生成します。
// 呼び出しはサーキットブレーカー越しに行い、開いている間は即座に失敗させます。
type OpenAIReadingGenerator struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[[]byte]
}

func NewOpenAIReadingGenerator(cfg config.OpenAIConfig, logger *slog.Logger) *OpenAIReadingGenerator {
	threshold := cfg.Breaker.FailureThreshold
	if threshold == 0 {
		threshold = config.DefaultBreakerFailThreshold
	}
	metrics.CircuitBreakerState.WithLabelValues(openAIBreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        openAIBreakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &OpenAIReadingGenerator{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cb:         cb,
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// upstreamStatusError は 2xx 以外の応答です。
type upstreamStatusError struct {
	StatusCode int
	Body       string
}

func (e *upstreamStatusError) Error() string {
	return fmt.Sprintf("openai returned status %d: %s", e.StatusCode, e.Body)
}

func (g *OpenAIReadingGenerator) Generate(ctx context.Context, in model.ReadingInput) (*model.ReadingOutput, error) {
	logger := middleware.GetLogger(ctx).With(slog.String("generator", openAIBackend), slog.String("model", g.model))
	start := time.Now()
	defer func() {
		metrics.ReadingGenerationDuration.WithLabelValues(openAIBackend).Observe(time.Since(start).Seconds())
	}()

	prompt := buildReadingPrompt(in)
	out := &model.ReadingOutput{PromptText: prompt.Text, Model: g.model}

	body, err := g.cb.Execute(func() ([]byte, error) {
		return g.complete(ctx, prompt)
	})
	if err != nil {
		outcome := "failure"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		metrics.ReadingGenerationsTotal.WithLabelValues(openAIBackend, outcome).Inc()
		logger.Error("Reading generation failed", slog.Any("error", err), slog.String("outcome", outcome))
		return nil, model.NewAppError(model.KindUpstreamFailure.String(), "리딩 생성 서비스 호출에 실패했습니다.", "",
			fmt.Errorf("%w: %v", model.ErrUpstreamFailure, err))
	}

	reading, err := parseGeneratedReading(body)
	if err != nil {
		// 応答は得られたが内容が壊れている場合は生テキストで続行する
		metrics.ReadingGenerationsTotal.WithLabelValues(openAIBackend, "malformed").Inc()
		logger.Warn("Malformed reading content, falling back to raw text", slog.Any("error", err))
		out.ReadingText = failedReadingText
		var mce *malformedContentError
		if errors.As(err, &mce) && strings.TrimSpace(mce.content) != "" {
			out.ReadingText = mce.content
		}
		return out, nil
	}

	summary := strings.TrimSpace(reading.SummaryOneLine)
	out.ReadingText = reading.format()
	out.SummaryOneLine = &summary
	metrics.ReadingGenerationsTotal.WithLabelValues(openAIBackend, "ok").Inc()
	logger.Info("Reading generated", slog.Duration("elapsed", time.Since(start)))
	return out, nil
}

// complete は API を 1 回呼び出し、成功時はメッセージ本文を返します。
func (g *OpenAIReadingGenerator) complete(ctx context.Context, prompt readingPrompt) ([]byte, error) {
	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature:    0,
		TopP:           1,
		ResponseFormat: &chatResponseFormat{Type: "json_object"},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(body)
		if len(text) > maxErrorBodyLog {
			text = text[:maxErrorBodyLog]
		}
		return nil, &upstreamStatusError{StatusCode: resp.StatusCode, Body: text}
	}
	return body, nil
}

// malformedContentError は応答本文を保持したまま壊れた内容を表します。
type malformedContentError struct {
	content string
	cause   string
}

func (e *malformedContentError) Error() string {
	return "malformed reading content: " + e.cause
}

func (e *malformedContentError) Unwrap() error {
	return model.ErrUpstreamMalformed
}

// parseGeneratedReading は応答エンベロープから message.content を取り出し、スキーマを検証します。
func parseGeneratedReading(body []byte) (*generatedReading, error) {
	var envelope chatResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &malformedContentError{content: string(body), cause: "envelope is not JSON"}
	}
	if len(envelope.Choices) == 0 {
		return nil, &malformedContentError{cause: "no choices"}
	}
	content := envelope.Choices[0].Message.Content
	var reading generatedReading
	if err := json.Unmarshal([]byte(content), &reading); err != nil {
		return nil, &malformedContentError{content: content, cause: "content is not JSON"}
	}
	if !reading.valid() {
		return nil, &malformedContentError{content: content, cause: "readingText and summaryOneLine are required"}
	}
	return &reading, nil
}
