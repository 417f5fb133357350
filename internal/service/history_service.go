package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"arcana_lab/internal/model"
	"arcana_lab/internal/repository"
)

type HistoryService interface {
	GetRecent(ctx context.Context, limit *int) ([]*model.Draw, error)
	GetCalendarMarks(ctx context.Context, start, end string) ([]model.CalendarMark, error)
	GetDayDraws(ctx context.Context, date string) ([]*model.Draw, error)
	ListDraws(ctx context.Context, filter model.DrawRangeFilter) ([]*model.Draw, error)
	GetDrawDetail(ctx context.Context, id string) (*model.Draw, error)
}

type historyService struct {
	db       *gorm.DB
	drawRepo repository.DrawRepository
	logger   *slog.Logger
}

func NewHistoryService(db *gorm.DB, drawRepo repository.DrawRepository, logger *slog.Logger) HistoryService {
	return &historyService{
		db:       db,
		drawRepo: drawRepo,
		logger:   logger,
	}
}

// ClampRecentLimit は未指定なら既定値を、範囲外なら [1, 20] に丸めた値を返します。
func ClampRecentLimit(limit *int) int {
	if limit == nil {
		return model.DefaultRecentLimit
	}
	return min(max(*limit, model.MinRecentLimit), model.MaxRecentLimit)
}

func (s *historyService) GetRecent(ctx context.Context, limit *int) ([]*model.Draw, error) {
	return s.drawRepo.ListRecent(ctx, s.db, ClampRecentLimit(limit))
}

func (s *historyService) GetCalendarMarks(ctx context.Context, start, end string) ([]model.CalendarMark, error) {
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}
	marks, err := s.drawRepo.CountByDate(ctx, s.db, start, end)
	if err != nil {
		return nil, err
	}
	if marks == nil {
		marks = []model.CalendarMark{}
	}
	return marks, nil
}

func (s *historyService) GetDayDraws(ctx context.Context, date string) ([]*model.Draw, error) {
	if err := validateDate("date", date); err != nil {
		return nil, err
	}
	return s.drawRepo.ListByDate(ctx, s.db, date)
}

func (s *historyService) ListDraws(ctx context.Context, filter model.DrawRangeFilter) ([]*model.Draw, error) {
	if err := validateDateRange(filter.Start, filter.End); err != nil {
		return nil, err
	}
	if filter.CardCount != nil && (*filter.CardCount < model.MinCardCount || *filter.CardCount > model.MaxCardCount) {
		return nil, model.NewValidationError("cardCount", "cardCount는 1~3만 가능합니다.").
			WithDetail("cardCount", *filter.CardCount)
	}
	return s.drawRepo.ListByDateRange(ctx, s.db, filter)
}

func (s *historyService) GetDrawDetail(ctx context.Context, id string) (*model.Draw, error) {
	drawID, err := uuid.Parse(id)
	if err != nil {
		return nil, drawNotFound(id)
	}
	draw, err := s.drawRepo.FindByID(ctx, s.db, drawID)
	if err != nil {
		if model.KindOf(err) == model.KindNotFound {
			return nil, drawNotFound(id)
		}
		return nil, err
	}
	return draw, nil
}

func drawNotFound(id string) error {
	return model.NewNotFoundError("기록을 찾을 수 없습니다.", "drawId", id)
}

// validateDate は固定長ゼロ埋めの YYYY-MM-DD だけを受け付けます (文字列比較の前提)。
func validateDate(field, value string) error {
	t, err := time.Parse(model.DateLayout, value)
	if err != nil || t.Format(model.DateLayout) != value {
		return model.NewValidationError(field, field+"는 YYYY-MM-DD 형식이어야 합니다.").
			WithDetail(field, value)
	}
	return nil
}

func validateDateRange(start, end string) error {
	if err := validateDate("start", start); err != nil {
		return err
	}
	if err := validateDate("end", end); err != nil {
		return err
	}
	if start > end {
		return model.NewValidationError("start", "start는 end보다 늦을 수 없습니다.").
			WithDetail("start", start).
			WithDetail("end", end)
	}
	return nil
}
