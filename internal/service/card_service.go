package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"arcana_lab/internal/catalog"
	"arcana_lab/internal/model"
	"arcana_lab/internal/repository"
)

type CardService interface {
	ListCards(ctx context.Context, filter model.CardFilter) ([]*model.TarotCard, error)
	GetCard(ctx context.Context, id string) (*model.TarotCard, error)
	RenderCardImage(ctx context.Context, id string, size model.CardImageSize) ([]byte, error)
}

type cardService struct {
	db       *gorm.DB
	cardRepo repository.CardRepository
	deck     *catalog.Deck
	logger   *slog.Logger
}

func NewCardService(db *gorm.DB, cardRepo repository.CardRepository, deck *catalog.Deck, logger *slog.Logger) CardService {
	return &cardService{
		db:       db,
		cardRepo: cardRepo,
		deck:     deck,
		logger:   logger,
	}
}

func (s *cardService) ListCards(ctx context.Context, filter model.CardFilter) ([]*model.TarotCard, error) {
	if filter.Arcana != nil && !filter.Arcana.Valid() {
		return nil, model.NewValidationError("arcana", "arcana는 MAJOR 또는 MINOR만 가능합니다.").
			WithDetail("arcana", string(*filter.Arcana))
	}
	if filter.Suit != nil && !filter.Suit.Valid() {
		return nil, model.NewValidationError("suit", "suit는 WANDS, CUPS, SWORDS, PENTACLES 중 하나여야 합니다.").
			WithDetail("suit", string(*filter.Suit))
	}
	cards, err := s.cardRepo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// GetCard は ID でカードを取得します。UUID として解釈できない ID も未検出として扱います。
func (s *cardService) GetCard(ctx context.Context, id string) (*model.TarotCard, error) {
	cardID, err := uuid.Parse(id)
	if err != nil {
		return nil, cardNotFound(id)
	}
	card, err := s.cardRepo.FindByID(ctx, s.db, cardID)
	if err != nil {
		if model.KindOf(err) == model.KindNotFound {
			return nil, cardNotFound(id)
		}
		return nil, err
	}
	return card, nil
}

func (s *cardService) RenderCardImage(ctx context.Context, id string, size model.CardImageSize) ([]byte, error) {
	card, err := s.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}
	face := CardFace{
		NameKo: card.NameKo,
		NameEn: card.NameEn,
		Arcana: card.Arcana,
		Suit:   card.Suit,
		Rank:   card.Rank,
	}
	if card.Suit != nil {
		face.SuitKo = s.deck.SuitNameKo(*card.Suit)
	}
	return RenderCardSVG(face, size), nil
}

func cardNotFound(id string) error {
	return model.NewNotFoundError("카드를 찾을 수 없습니다.", "id", id)
}
