package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"arcana_lab/internal/model"
	"arcana_lab/internal/repository"
)

func newTestDrawService(db *gorm.DB, gen ReadingGenerator, now func() time.Time) DrawService {
	return NewDrawService(db,
		repository.NewGormCardRepository(),
		repository.NewGormDrawRepository(),
		gen,
		DrawSettings{PromptVersion: 1, Location: time.UTC, Now: now},
		testLogger,
	)
}

func countDraws(t *testing.T, db *gorm.DB) (int64, int64) {
	t.Helper()
	var draws, items int64
	require.NoError(t, db.Model(&model.Draw{}).Count(&draws).Error)
	require.NoError(t, db.Model(&model.DrawItem{}).Count(&items).Error)
	return draws, items
}

func TestDrawService_CreateDraw_TemplateGenerator(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedCatalog(t, db)
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	svc := newTestDrawService(db, NewTemplateReadingGenerator(), func() time.Time { return fixed })

	res, err := svc.CreateDraw(ctx, 3)
	require.NoError(t, err)

	assert.Equal(t, model.DisabledModel, res.Model)
	d := res.Draw
	assert.Nil(t, d.Model, "フォールバック時はモデル名を保存しない")
	assert.Equal(t, "2026-03-14", d.Date)
	assert.Equal(t, 3, d.CardCount)
	assert.Equal(t, 1, d.PromptVersion)
	assert.NotEmpty(t, d.PromptText)
	require.NotNil(t, d.SummaryOneLine)
	require.Len(t, d.Items, 3)

	seen := map[uuid.UUID]bool{}
	for i, item := range d.Items {
		assert.Equal(t, i+1, item.Position)
		assert.False(t, seen[item.CardID], "同じカードが 2 回出てはいけない")
		seen[item.CardID] = true
		require.NotNil(t, item.Card)
		// "황제" は "여황제" に含まれるので位置付きで数える
		marker := fmt.Sprintf("%d. %s (", item.Position, item.Card.NameKo)
		assert.Equal(t, 1, strings.Count(d.ReadingText, marker), "readingText に %q が 1 回だけ含まれるべき", marker)
	}
}

func TestDrawService_CreateDraw_ItemsAndDistinctness(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedCatalog(t, db)
	svc := newTestDrawService(db, NewTemplateReadingGenerator(), nil)

	for n := model.MinCardCount; n <= model.MaxCardCount; n++ {
		for range 10 {
			res, err := svc.CreateDraw(ctx, n)
			require.NoError(t, err)
			require.Len(t, res.Draw.Items, n)
			ids := map[uuid.UUID]bool{}
			for i, item := range res.Draw.Items {
				assert.Equal(t, i+1, item.Position)
				ids[item.CardID] = true
				assert.Contains(t, []model.Orientation{model.OrientationUpright, model.OrientationReversed}, item.Orientation)
			}
			assert.Len(t, ids, n)
		}
	}
}

func TestDrawService_CreateDraw_InvalidCountWritesNothing(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedCatalog(t, db)
	gen := new(mockReadingGenerator)
	svc := newTestDrawService(db, gen, nil)

	for _, n := range []int{0, 4, -1, 100} {
		_, err := svc.CreateDraw(ctx, n)
		require.Error(t, err)
		assert.Equal(t, model.KindValidation, model.KindOf(err), "cardCount=%d", n)
	}
	draws, items := countDraws(t, db)
	assert.Zero(t, draws)
	assert.Zero(t, items)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestDrawService_CreateDraw_NotEnoughCards(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seeds := testDeck(t).Seeds()[:2]
	require.NoError(t, repository.NewGormCardRepository().CreateBatch(ctx, db, seeds))
	svc := newTestDrawService(db, NewTemplateReadingGenerator(), nil)

	_, err := svc.CreateDraw(ctx, 3)
	require.Error(t, err)
	assert.Equal(t, model.KindValidation, model.KindOf(err))

	var appErr *model.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 2, appErr.Detail["available"])
}

func TestDrawService_CreateDraw_UpstreamFailurePersistsNothing(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedCatalog(t, db)
	gen := new(mockReadingGenerator)
	upstream := model.NewAppError(model.KindUpstreamFailure.String(), "리딩 생성 서비스 호출에 실패했습니다.", "",
		fmt.Errorf("%w: status 500", model.ErrUpstreamFailure))
	gen.On("Generate", mock.Anything, mock.AnythingOfType("model.ReadingInput")).Return(nil, upstream).Once()
	svc := newTestDrawService(db, gen, nil)

	_, err := svc.CreateDraw(ctx, 2)
	require.Error(t, err)
	assert.Equal(t, model.KindUpstreamFailure, model.KindOf(err))

	draws, items := countDraws(t, db)
	assert.Zero(t, draws)
	assert.Zero(t, items)
	gen.AssertExpectations(t)
}

func TestDrawService_CreateDraw_GeneratorInputAndModel(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedCatalog(t, db)
	gen := new(mockReadingGenerator)
	summary := "오늘은 균형의 날"
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(in model.ReadingInput) bool {
		if in.CardCount != 2 || len(in.Cards) != 2 {
			return false
		}
		for i, c := range in.Cards {
			if c.Position != i+1 || c.NameKo == "" {
				return false
			}
		}
		return true
	})).Return(&model.ReadingOutput{
		PromptText:     "prompt",
		Model:          "gpt-4o-mini",
		ReadingText:    "본문",
		SummaryOneLine: &summary,
	}, nil).Once()
	svc := newTestDrawService(db, gen, nil)

	res, err := svc.CreateDraw(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", res.Model)
	require.NotNil(t, res.Draw.Model)
	assert.Equal(t, "gpt-4o-mini", *res.Draw.Model)
	assert.Equal(t, "prompt", res.Draw.PromptText)
	assert.Equal(t, "본문", res.Draw.ReadingText)
	gen.AssertExpectations(t)
}

func TestDrawService_CreateDraw_DateUsesLocation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedCatalog(t, db)
	seoul := time.FixedZone("KST", 9*60*60)
	// UTC では 3/14 だがソウルでは 3/15
	fixed := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	svc := NewDrawService(db, repository.NewGormCardRepository(), repository.NewGormDrawRepository(),
		NewTemplateReadingGenerator(),
		DrawSettings{Location: seoul, Now: func() time.Time { return fixed }},
		testLogger)

	res, err := svc.CreateDraw(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", res.Draw.Date)
	assert.True(t, fixed.Equal(res.Draw.DrawnAt))
}

func TestRandomOrientation_Balance(t *testing.T) {
	const n = 10000
	upright := 0
	for range n {
		if randomOrientation() == model.OrientationUpright {
			upright++
		}
	}
	ratio := float64(upright) / n
	assert.InDelta(t, 0.5, ratio, 0.05)
}

func TestShufflePrefix(t *testing.T) {
	ids := make([]uuid.UUID, 78)
	for i := range ids {
		ids[i] = uuid.New()
	}
	original := append([]uuid.UUID(nil), ids...)

	got := shufflePrefix(ids, 3)
	require.Len(t, got, 3)
	assert.Equal(t, original, ids, "入力スライスは変更しない")
	seen := map[uuid.UUID]bool{}
	for _, id := range got {
		assert.Contains(t, original, id)
		seen[id] = true
	}
	assert.Len(t, seen, 3)
}
