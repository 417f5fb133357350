//go:build integration

package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"arcana_lab/internal/catalog"
	"arcana_lab/internal/model"
)

// startPostgres は使い捨ての PostgreSQL コンテナを起動し、接続済みの DB を返します。
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not construct pool")
	pool.MaxWait = 120 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=arcana",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=arcana_lab",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL resource")
	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			log.Printf("Could not purge resource: %s", err)
		}
	})
	_ = resource.Expire(180)

	host := os.Getenv("DOCKER_TEST_HOST")
	if host == "" {
		host = "localhost"
	}
	dsn := fmt.Sprintf("postgres://arcana:secret@%s:%s/arcana_lab?sslmode=disable",
		host, resource.GetPort("5432/tcp"))

	var db *gorm.DB
	err = pool.Retry(func() error {
		var openErr error
		db, openErr = NewDB(DriverPostgres, dsn, testLogger)
		return openErr
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")
	require.NoError(t, Migrate(db))
	return db
}

func TestPostgres_CatalogAndDraws(t *testing.T) {
	ctx := context.Background()
	db := startPostgres(t)

	cards := NewGormCardRepository()
	draws := NewGormDrawRepository()

	deck, err := catalog.Default()
	require.NoError(t, err)
	seeds := deck.Seeds()
	require.NoError(t, cards.CreateBatch(ctx, db, seeds))

	// pgconn の 23505 を ErrDuplicateKey に変換できること
	err = cards.CreateBatch(ctx, db, deck.Seeds()[:1])
	assert.ErrorIs(t, err, ErrDuplicateKey)

	hits, err := cards.List(ctx, db, model.CardFilter{Query: "WHEEL"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "운명의 수레바퀴", hits[0].NameKo)

	d := newDraw(seeds, "2025-05-01", time.Now().UTC(), 3)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return draws.Create(ctx, tx, d)
	}))

	marks, err := draws.CountByDate(ctx, db, "2025-05-01", "2025-05-01")
	require.NoError(t, err)
	assert.Equal(t, []model.CalendarMark{{Date: "2025-05-01", Count: 1}}, marks)

	got, err := draws.FindByID(ctx, db, d.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 3)
}
