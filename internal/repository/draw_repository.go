package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"arcana_lab/internal/middleware"
	"arcana_lab/internal/model"
)

type DrawRepository interface {
	Create(ctx context.Context, tx *gorm.DB, draw *model.Draw) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.Draw, error)
	ListRecent(ctx context.Context, db *gorm.DB, limit int) ([]*model.Draw, error)
	ListByDate(ctx context.Context, db *gorm.DB, date string) ([]*model.Draw, error)
	ListByDateRange(ctx context.Context, db *gorm.DB, filter model.DrawRangeFilter) ([]*model.Draw, error)
	CountByDate(ctx context.Context, db *gorm.DB, start, end string) ([]model.CalendarMark, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}

type gormDrawRepository struct{}

func NewGormDrawRepository() DrawRepository {
	return &gormDrawRepository{}
}

// withItems はアイテムを position 昇順で、カードを含めてプリロードします。
func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("draw_items.position ASC")
		}).
		Preload("Items.Card")
}

// Create はヘッダとアイテムを書き込みます。呼び出し側のトランザクション内で使います。
func (r *gormDrawRepository) Create(ctx context.Context, tx *gorm.DB, draw *model.Draw) error {
	logger := middleware.GetLogger(ctx)
	if err := tx.WithContext(ctx).Omit("Items").Create(draw).Error; err != nil {
		logger.Error("Error creating draw in DB", "error", err, "draw_id", draw.ID.String())
		return fmt.Errorf("gormDrawRepository.Create: %w", err)
	}
	if len(draw.Items) == 0 {
		return nil
	}
	if err := tx.WithContext(ctx).Omit("Card").Create(&draw.Items).Error; err != nil {
		logger.Error("Error creating draw items in DB", "error", err, "draw_id", draw.ID.String(), "items", len(draw.Items))
		return fmt.Errorf("gormDrawRepository.Create items: %w", err)
	}
	return nil
}

func (r *gormDrawRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.Draw, error) {
	logger := middleware.GetLogger(ctx)
	var draw model.Draw
	result := withItems(db.WithContext(ctx)).Where("id = ?", id).First(&draw)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error("Error finding draw by ID in DB", "error", result.Error, "draw_id", id.String())
		return nil, fmt.Errorf("gormDrawRepository.FindByID: %w", result.Error)
	}
	return &draw, nil
}

func (r *gormDrawRepository) ListRecent(ctx context.Context, db *gorm.DB, limit int) ([]*model.Draw, error) {
	var draws []*model.Draw
	err := withItems(db.WithContext(ctx)).
		Order("drawn_at DESC").Order("id DESC").
		Limit(limit).
		Find(&draws).Error
	if err != nil {
		middleware.GetLogger(ctx).Error("Error listing recent draws in DB", "error", err, "limit", limit)
		return nil, fmt.Errorf("gormDrawRepository.ListRecent: %w", err)
	}
	return draws, nil
}

func (r *gormDrawRepository) ListByDate(ctx context.Context, db *gorm.DB, date string) ([]*model.Draw, error) {
	var draws []*model.Draw
	err := withItems(db.WithContext(ctx)).
		Where("date = ?", date).
		Order("drawn_at DESC").Order("id DESC").
		Find(&draws).Error
	if err != nil {
		middleware.GetLogger(ctx).Error("Error listing draws by date in DB", "error", err, "date", date)
		return nil, fmt.Errorf("gormDrawRepository.ListByDate: %w", err)
	}
	return draws, nil
}

func (r *gormDrawRepository) ListByDateRange(ctx context.Context, db *gorm.DB, filter model.DrawRangeFilter) ([]*model.Draw, error) {
	query := withItems(db.WithContext(ctx)).
		Where("date >= ? AND date <= ?", filter.Start, filter.End)
	if filter.CardCount != nil {
		query = query.Where("card_count = ?", *filter.CardCount)
	}

	var draws []*model.Draw
	if err := query.Order("drawn_at DESC").Order("id DESC").Find(&draws).Error; err != nil {
		middleware.GetLogger(ctx).Error("Error listing draws by date range in DB",
			"error", err,
			"start", filter.Start,
			"end", filter.End,
		)
		return nil, fmt.Errorf("gormDrawRepository.ListByDateRange: %w", err)
	}
	return draws, nil
}

// CountByDate は [start, end] の日付ごとの件数を日付昇順で返します。
func (r *gormDrawRepository) CountByDate(ctx context.Context, db *gorm.DB, start, end string) ([]model.CalendarMark, error) {
	var marks []model.CalendarMark
	err := db.WithContext(ctx).Model(&model.Draw{}).
		Select("date, COUNT(*) AS count").
		Where("date >= ? AND date <= ?", start, end).
		Group("date").
		Order("date ASC").
		Scan(&marks).Error
	if err != nil {
		middleware.GetLogger(ctx).Error("Error counting draws by date in DB", "error", err, "start", start, "end", end)
		return nil, fmt.Errorf("gormDrawRepository.CountByDate: %w", err)
	}
	return marks, nil
}

func (r *gormDrawRepository) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&model.Draw{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("gormDrawRepository.Count: %w", err)
	}
	return count, nil
}
