package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"arcana_lab/internal/middleware"
	"arcana_lab/internal/model"
)

type CardRepository interface {
	List(ctx context.Context, db *gorm.DB, filter model.CardFilter) ([]*model.TarotCard, error)
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.TarotCard, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []uuid.UUID) ([]*model.TarotCard, error)
	ListIDs(ctx context.Context, db *gorm.DB) ([]uuid.UUID, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	CreateBatch(ctx context.Context, tx *gorm.DB, cards []model.TarotCard) error
	UpdateColumns(ctx context.Context, tx *gorm.DB, card *model.TarotCard, columns ...string) error
}

type gormCardRepository struct{}

func NewGormCardRepository() CardRepository {
	return &gormCardRepository{}
}

func (r *gormCardRepository) List(ctx context.Context, db *gorm.DB, filter model.CardFilter) ([]*model.TarotCard, error) {
	logger := middleware.GetLogger(ctx)
	query := db.WithContext(ctx).Model(&model.TarotCard{})

	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		query = query.Where(`LOWER(name_en) LIKE ? ESCAPE '\' OR LOWER(name_ko) LIKE ? ESCAPE '\'`, pattern, pattern)
	}
	if filter.Arcana != nil {
		query = query.Where("arcana = ?", *filter.Arcana)
	}
	if filter.Suit != nil {
		query = query.Where("suit = ?", *filter.Suit)
	}

	var cards []*model.TarotCard
	if err := query.Order("sort_key ASC").Order("name_en ASC").Find(&cards).Error; err != nil {
		logger.Error("Error listing tarot cards in DB", "error", err, "query", filter.Query)
		return nil, fmt.Errorf("gormCardRepository.List: %w", err)
	}
	return cards, nil
}

func (r *gormCardRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.TarotCard, error) {
	logger := middleware.GetLogger(ctx)
	var card model.TarotCard
	result := db.WithContext(ctx).Where("id = ?", id).First(&card)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding tarot card by ID in DB", "error", result.Error, "card_id", id.String())
		return nil, fmt.Errorf("gormCardRepository.FindByID: %w", result.Error)
	}
	return &card, nil
}

// FindByIDs は ids に含まれるカードを取得します。返却順は保証しません。
func (r *gormCardRepository) FindByIDs(ctx context.Context, db *gorm.DB, ids []uuid.UUID) ([]*model.TarotCard, error) {
	logger := middleware.GetLogger(ctx)
	if len(ids) == 0 {
		return []*model.TarotCard{}, nil
	}
	var cards []*model.TarotCard
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&cards).Error; err != nil {
		logger.Error("Error finding tarot cards by IDs in DB", "error", err, "count", len(ids))
		return nil, fmt.Errorf("gormCardRepository.FindByIDs: %w", err)
	}
	return cards, nil
}

func (r *gormCardRepository) ListIDs(ctx context.Context, db *gorm.DB) ([]uuid.UUID, error) {
	logger := middleware.GetLogger(ctx)
	var ids []uuid.UUID
	if err := db.WithContext(ctx).Model(&model.TarotCard{}).Order("sort_key ASC").Pluck("id", &ids).Error; err != nil {
		logger.Error("Error listing tarot card IDs in DB", "error", err)
		return nil, fmt.Errorf("gormCardRepository.ListIDs: %w", err)
	}
	return ids, nil
}

func (r *gormCardRepository) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&model.TarotCard{}).Count(&count).Error; err != nil {
		middleware.GetLogger(ctx).Error("Error counting tarot cards in DB", "error", err)
		return 0, fmt.Errorf("gormCardRepository.Count: %w", err)
	}
	return count, nil
}

// CreateBatch はカードをまとめて挿入します。一意制約違反は ErrDuplicateKey を返します。
func (r *gormCardRepository) CreateBatch(ctx context.Context, tx *gorm.DB, cards []model.TarotCard) error {
	logger := middleware.GetLogger(ctx)
	if len(cards) == 0 {
		return nil
	}
	if err := tx.WithContext(ctx).CreateInBatches(cards, 100).Error; err != nil {
		if isDuplicateKey(err) {
			logger.Warn("Duplicate key error on create tarot cards", "error", err)
			return ErrDuplicateKey
		}
		logger.Error("Error creating tarot cards in DB", "error", err, "count", len(cards))
		return fmt.Errorf("gormCardRepository.CreateBatch: %w", err)
	}
	return nil
}

// UpdateColumns は card の指定カラムだけを更新します (keywords のシリアライザを通すため構造体で更新)。
func (r *gormCardRepository) UpdateColumns(ctx context.Context, tx *gorm.DB, card *model.TarotCard, columns ...string) error {
	logger := middleware.GetLogger(ctx)
	if len(columns) == 0 {
		return nil
	}
	result := tx.WithContext(ctx).Model(card).Select(columns).Updates(card)
	if result.Error != nil {
		logger.Error("Error updating tarot card in DB", "error", result.Error, "card_id", card.ID.String(), "columns", columns)
		return fmt.Errorf("gormCardRepository.UpdateColumns: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
