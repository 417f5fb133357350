package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"arcana_lab/internal/catalog"
	"arcana_lab/internal/model"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// setupTestDB はテストごとに独立したインメモリ SQLite を用意します。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := NewDB(DriverSQLite, dsn, testLogger)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedCatalog(t *testing.T, db *gorm.DB) []model.TarotCard {
	t.Helper()
	deck, err := catalog.Default()
	require.NoError(t, err)
	seeds := deck.Seeds()
	require.NoError(t, NewGormCardRepository().CreateBatch(context.Background(), db, seeds))
	return seeds
}

func TestCardRepository_List(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedCatalog(t, db)
	repo := NewGormCardRepository()

	all, err := repo.List(ctx, db, model.CardFilter{})
	require.NoError(t, err)
	require.Len(t, all, catalog.TotalCards)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].SortKey, all[i].SortKey, "sortKey 昇順であるべき")
	}

	major := model.ArcanaMajor
	majors, err := repo.List(ctx, db, model.CardFilter{Arcana: &major})
	require.NoError(t, err)
	assert.Len(t, majors, catalog.MajorCount)

	cups := model.SuitCups
	minor := model.ArcanaMinor
	cupCards, err := repo.List(ctx, db, model.CardFilter{Arcana: &minor, Suit: &cups})
	require.NoError(t, err)
	assert.Len(t, cupCards, catalog.RankCount)

	// 大文字小文字を区別しない部分一致
	hits, err := repo.List(ctx, db, model.CardFilter{Query: "fOoL"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "The Fool", hits[0].NameEn)

	// 韓国語名
	hits, err = repo.List(ctx, db, model.CardFilter{Query: "황제"})
	require.NoError(t, err)
	names := make([]string, 0, len(hits))
	for _, c := range hits {
		names = append(names, c.NameKo)
	}
	assert.ElementsMatch(t, []string{"여황제", "황제"}, names)

	// LIKE のメタ文字はそのまま文字として扱う
	hits, err = repo.List(ctx, db, model.CardFilter{Query: "%"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestCardRepository_FindAndUpdate(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seeds := seedCatalog(t, db)
	repo := NewGormCardRepository()

	card, err := repo.FindByID(ctx, db, seeds[0].ID)
	require.NoError(t, err)
	assert.Equal(t, seeds[0].NameEn, card.NameEn)
	assert.Equal(t, []string{}, card.Keywords)

	_, err = repo.FindByID(ctx, db, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)

	card.Keywords = []string{"시작", "자유"}
	card.Description = "설명"
	require.NoError(t, repo.UpdateColumns(ctx, db, card, "Keywords", "Description"))

	reloaded, err := repo.FindByID(ctx, db, card.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"시작", "자유"}, reloaded.Keywords)
	assert.Equal(t, "설명", reloaded.Description)
	assert.Equal(t, model.PlaceholderText, reloaded.UprightPoints)

	ids, err := repo.ListIDs(ctx, db)
	require.NoError(t, err)
	assert.Len(t, ids, catalog.TotalCards)

	found, err := repo.FindByIDs(ctx, db, ids[:3])
	require.NoError(t, err)
	assert.Len(t, found, 3)
}

func TestCardRepository_CreateBatchDuplicate(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seedCatalog(t, db)

	deck, err := catalog.Default()
	require.NoError(t, err)
	err = NewGormCardRepository().CreateBatch(ctx, db, deck.Seeds())
	assert.ErrorIs(t, err, ErrDuplicateKey)

	count, err := NewGormCardRepository().Count(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, catalog.TotalCards, count)
}

func newDraw(seeds []model.TarotCard, date string, drawnAt time.Time, n int) *model.Draw {
	id := uuid.New()
	d := &model.Draw{
		ID:            id,
		Date:          date,
		DrawnAt:       drawnAt,
		CardCount:     n,
		PromptVersion: 1,
		PromptText:    "SYSTEM:\n...",
		ReadingText:   "reading",
	}
	for i := 0; i < n; i++ {
		d.Items = append(d.Items, model.DrawItem{
			ID:          uuid.New(),
			DrawID:      id,
			Position:    i + 1,
			Orientation: model.OrientationUpright,
			CardID:      seeds[i].ID,
		})
	}
	return d
}

func TestDrawRepository_CreateAndQuery(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seeds := seedCatalog(t, db)
	repo := NewGormDrawRepository()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	d1 := newDraw(seeds, "2025-03-10", base, 3)
	d2 := newDraw(seeds, "2025-03-10", base.Add(time.Hour), 1)
	d3 := newDraw(seeds, "2025-03-12", base.Add(48*time.Hour), 2)
	for _, d := range []*model.Draw{d1, d2, d3} {
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			return repo.Create(ctx, tx, d)
		}))
	}

	got, err := repo.FindByID(ctx, db, d1.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	for i, it := range got.Items {
		assert.Equal(t, i+1, it.Position)
		require.NotNil(t, it.Card)
		assert.Equal(t, seeds[i].NameEn, it.Card.NameEn)
	}

	_, err = repo.FindByID(ctx, db, uuid.New())
	assert.ErrorIs(t, err, model.ErrNotFound)

	recent, err := repo.ListRecent(ctx, db, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, d3.ID, recent[0].ID)
	assert.Equal(t, d2.ID, recent[1].ID)

	day, err := repo.ListByDate(ctx, db, "2025-03-10")
	require.NoError(t, err)
	require.Len(t, day, 2)
	assert.Equal(t, d2.ID, day[0].ID, "新しい順")

	one := 1
	ranged, err := repo.ListByDateRange(ctx, db, model.DrawRangeFilter{Start: "2025-03-01", End: "2025-03-31", CardCount: &one})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, d2.ID, ranged[0].ID)

	marks, err := repo.CountByDate(ctx, db, "2025-03-01", "2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, []model.CalendarMark{
		{Date: "2025-03-10", Count: 2},
		{Date: "2025-03-12", Count: 1},
	}, marks)
}

func TestDrawRepository_CreateRollsBackOnItemFailure(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	seeds := seedCatalog(t, db)
	repo := NewGormDrawRepository()

	d := newDraw(seeds, "2025-03-10", time.Now().UTC(), 2)
	d.Items[1].CardID = d.Items[0].CardID // 同一 draw 内のカード重複は一意制約違反

	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.Create(ctx, tx, d)
	})
	require.Error(t, err)

	count, err := repo.Count(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, count, "ヘッダだけが残ってはいけない")
}
