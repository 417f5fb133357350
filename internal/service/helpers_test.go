package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"arcana_lab/internal/catalog"
	"arcana_lab/internal/model"
	"arcana_lab/internal/repository"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// setupTestDB はテストごとに独立したインメモリ SQLite を用意します。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := repository.NewDB(repository.DriverSQLite, dsn, testLogger)
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func testDeck(t *testing.T) *catalog.Deck {
	t.Helper()
	deck, err := catalog.Default()
	require.NoError(t, err)
	return deck
}

func seedCatalog(t *testing.T, db *gorm.DB) []model.TarotCard {
	t.Helper()
	seeds := testDeck(t).Seeds()
	require.NoError(t, repository.NewGormCardRepository().CreateBatch(context.Background(), db, seeds))
	return seeds
}

// mockReadingGenerator は ReadingGenerator の testify モックです。
type mockReadingGenerator struct {
	mock.Mock
}

func (m *mockReadingGenerator) Generate(ctx context.Context, in model.ReadingInput) (*model.ReadingOutput, error) {
	args := m.Called(ctx, in)
	var out *model.ReadingOutput
	if v := args.Get(0); v != nil {
		out = v.(*model.ReadingOutput)
	}
	return out, args.Error(1)
}
