package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"arcana_lab/internal/metrics"
	"arcana_lab/internal/middleware"
	"arcana_lab/internal/model"
	"arcana_lab/internal/repository"
)

// DrawSettings は抽選ごとに変わらない設定です。
type DrawSettings struct {
	PromptVersion int
	Location      *time.Location   // 抽選日 (YYYY-MM-DD) を決めるタイムゾーン
	Now           func() time.Time // nil なら time.Now
}

// DrawResult は作成された抽選と、使われた生成バックエンド名です。
type DrawResult struct {
	Draw  *model.Draw
	Model string
}

type DrawService interface {
	CreateDraw(ctx context.Context, cardCount int) (*DrawResult, error)
}

type drawService struct {
	db        *gorm.DB
	cardRepo  repository.CardRepository
	drawRepo  repository.DrawRepository
	generator ReadingGenerator
	settings  DrawSettings
	logger    *slog.Logger
}

func NewDrawService(
	db *gorm.DB,
	cardRepo repository.CardRepository,
	drawRepo repository.DrawRepository,
	generator ReadingGenerator,
	settings DrawSettings,
	logger *slog.Logger,
) DrawService {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	if settings.PromptVersion <= 0 {
		settings.PromptVersion = 1
	}
	return &drawService{
		db:        db,
		cardRepo:  cardRepo,
		drawRepo:  drawRepo,
		generator: generator,
		settings:  settings,
		logger:    logger,
	}
}

type pickedCard struct {
	card        *model.TarotCard
	orientation model.Orientation
}

func (s *drawService) CreateDraw(ctx context.Context, cardCount int) (*DrawResult, error) {
	logger := middleware.GetLogger(ctx).With(slog.Int("card_count", cardCount))

	if cardCount < model.MinCardCount || cardCount > model.MaxCardCount {
		return nil, model.NewValidationError("cardCount", "cardCount는 1~3만 가능합니다.").
			WithDetail("cardCount", cardCount)
	}

	// 1. カード ID 一覧を取得し、枚数を確認
	ids, err := s.cardRepo.ListIDs(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if len(ids) < cardCount {
		logger.Warn("Catalog has fewer cards than requested", slog.Int("available", len(ids)))
		return nil, model.NewValidationError("cardCount", "카드 마스터 데이터가 부족합니다.").
			WithDetail("available", len(ids))
	}

	// 2. 重複なしで選び、向きを決める
	picked, err := s.pickCards(ctx, ids, cardCount)
	if err != nil {
		return nil, err
	}

	now := s.settings.Now()
	date := now.In(s.settings.Location).Format(model.DateLayout)

	// 3. リーディング生成 (失敗したら何も書き込まない)
	input := model.ReadingInput{Date: date, CardCount: cardCount, Cards: make([]model.ReadingCard, 0, cardCount)}
	for i, p := range picked {
		input.Cards = append(input.Cards, model.ReadingCard{
			Position:       i + 1,
			NameKo:         p.card.NameKo,
			NameEn:         p.card.NameEn,
			Arcana:         p.card.Arcana,
			Suit:           p.card.Suit,
			Orientation:    p.orientation,
			Keywords:       p.card.Keywords,
			Description:    p.card.Description,
			UprightPoints:  p.card.UprightPoints,
			ReversedPoints: p.card.ReversedPoints,
		})
	}
	reading, err := s.generator.Generate(ctx, input)
	if err != nil {
		if model.KindOf(err) == model.KindUpstreamFailure {
			return nil, err
		}
		logger.Error("Unexpected reading generator error", slog.Any("error", err))
		return nil, fmt.Errorf("drawService.CreateDraw generate: %w", err)
	}

	// 4. ヘッダとアイテムを 1 トランザクションで保存
	draw := &model.Draw{
		ID:             uuid.New(),
		Date:           date,
		DrawnAt:        now.UTC(),
		CardCount:      cardCount,
		Model:          reading.StoredModel(),
		PromptVersion:  s.settings.PromptVersion,
		PromptText:     reading.PromptText,
		SummaryOneLine: reading.SummaryOneLine,
		ReadingText:    reading.ReadingText,
		Items:          make([]model.DrawItem, 0, cardCount),
	}
	for i, p := range picked {
		draw.Items = append(draw.Items, model.DrawItem{
			ID:          uuid.New(),
			DrawID:      draw.ID,
			Position:    i + 1,
			Orientation: p.orientation,
			CardID:      p.card.ID,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.drawRepo.Create(ctx, tx, draw)
	})
	if err != nil {
		logger.Error("Transaction failed for CreateDraw", slog.Any("error", err))
		return nil, err
	}

	// 5. カード情報込みで読み直す
	created, err := s.drawRepo.FindByID(ctx, s.db, draw.ID)
	if err != nil {
		return nil, fmt.Errorf("drawService.CreateDraw reload: %w", err)
	}

	metrics.DrawsCreatedTotal.WithLabelValues(strconv.Itoa(cardCount)).Inc()
	logger.Info("Draw created",
		slog.String("draw_id", created.ID.String()),
		slog.String("date", created.Date),
		slog.String("model", reading.Model),
	)
	return &DrawResult{Draw: created, Model: reading.Model}, nil
}

// pickCards は ID の一様ランダムな並べ替えの先頭 count 件を選び、各カードの向きを独立に決めます。
func (s *drawService) pickCards(ctx context.Context, ids []uuid.UUID, count int) ([]pickedCard, error) {
	selected := shufflePrefix(ids, count)

	cards, err := s.cardRepo.FindByIDs(ctx, s.db, selected)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*model.TarotCard, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	picked := make([]pickedCard, 0, count)
	for _, id := range selected {
		card, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("drawService.pickCards: selected card %s disappeared: %w", id, model.ErrInternalServer)
		}
		picked = append(picked, pickedCard{card: card, orientation: randomOrientation()})
	}
	return picked, nil
}

// shufflePrefix は ids のコピーを Fisher-Yates でシャッフルし、先頭 n 件を返します。
func shufflePrefix(ids []uuid.UUID, n int) []uuid.UUID {
	shuffled := make([]uuid.UUID, len(ids))
	copy(shuffled, ids)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

func randomOrientation() model.Orientation {
	if rand.IntN(2) == 0 {
		return model.OrientationUpright
	}
	return model.OrientationReversed
}
