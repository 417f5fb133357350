package service

import (
	"context"
	"log/slog"
	"time"

	"arcana_lab/internal/config"
	"arcana_lab/internal/metrics"
	"arcana_lab/internal/middleware"
	"arcana_lab/internal/model"
)

// ReadingGenerator は引いたカードからリーディング本文を生成します。
// ErrUpstreamFailure を返した場合、呼び出し側は抽選を保存してはいけません。
type ReadingGenerator interface {
	Generate(ctx context.Context, in model.ReadingInput) (*model.ReadingOutput, error)
}

// TemplateReadingGenerator は外部 API を使わない決定的なリーディングを返します。
type TemplateReadingGenerator struct{}

func NewTemplateReadingGenerator() *TemplateReadingGenerator {
	return &TemplateReadingGenerator{}
}

func (g *TemplateReadingGenerator) Generate(ctx context.Context, in model.ReadingInput) (*model.ReadingOutput, error) {
	start := time.Now()
	prompt := buildReadingPrompt(in)
	summary := fallbackSummary
	out := &model.ReadingOutput{
		PromptText:     prompt.Text,
		Model:          model.DisabledModel,
		ReadingText:    buildFallbackReading(in),
		SummaryOneLine: &summary,
	}
	metrics.ReadingGenerationsTotal.WithLabelValues("template", "ok").Inc()
	metrics.ReadingGenerationDuration.WithLabelValues("template").Observe(time.Since(start).Seconds())
	middleware.GetLogger(ctx).Debug("Template reading generated", slog.Int("cards", len(in.Cards)))
	return out, nil
}

// --- NewReadingGenerator ファクトリ関数 ---
func NewReadingGenerator(cfg config.OpenAIConfig, logger *slog.Logger) ReadingGenerator {
	if !cfg.Enabled() {
		logger.Info("OpenAI API key not configured, using template reading generator")
		return NewTemplateReadingGenerator()
	}
	logger.Info("Initializing OpenAI reading generator...",
		slog.String("model", cfg.Model),
		slog.String("base_url", cfg.BaseURL),
	)
	return NewOpenAIReadingGenerator(cfg, logger)
}
