package service

import (
	"context"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcana_lab/internal/catalog"
	"arcana_lab/internal/model"
	"arcana_lab/internal/repository"
)

func newTestCardService(t *testing.T) (CardService, []model.TarotCard) {
	t.Helper()
	db := setupTestDB(t)
	seeds := seedCatalog(t, db)
	return NewCardService(db, repository.NewGormCardRepository(), testDeck(t), testLogger), seeds
}

func TestCardService_ListCards(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestCardService(t)

	all, err := svc.ListCards(ctx, model.CardFilter{})
	require.NoError(t, err)
	assert.Len(t, all, catalog.TotalCards)

	major := model.ArcanaMajor
	majors, err := svc.ListCards(ctx, model.CardFilter{Arcana: &major})
	require.NoError(t, err)
	require.Len(t, majors, catalog.MajorCount)
	for _, c := range majors {
		assert.Nil(t, c.Suit)
	}

	cups := model.SuitCups
	minor := model.ArcanaMinor
	cupCards, err := svc.ListCards(ctx, model.CardFilter{Arcana: &minor, Suit: &cups})
	require.NoError(t, err)
	assert.Len(t, cupCards, catalog.RankCount)

	// 大アルカナかつスート指定は AND で 0 件
	none, err := svc.ListCards(ctx, model.CardFilter{Arcana: &major, Suit: &cups})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCardService_ListCards_ExactNameRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, seeds := newTestCardService(t)

	for _, seed := range []model.TarotCard{seeds[0], seeds[13], seeds[40], seeds[77]} {
		for _, q := range []string{seed.NameEn, seed.NameKo, strings.ToUpper(seed.NameEn)} {
			got, err := svc.ListCards(ctx, model.CardFilter{Query: q})
			require.NoError(t, err)
			ids := make([]uuid.UUID, 0, len(got))
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			assert.Contains(t, ids, seed.ID, "query=%q", q)
		}
	}
}

func TestCardService_ListCards_InvalidEnum(t *testing.T) {
	svc, _ := newTestCardService(t)
	bad := model.Arcana("MIDDLE")
	_, err := svc.ListCards(context.Background(), model.CardFilter{Arcana: &bad})
	assert.Equal(t, model.KindValidation, model.KindOf(err))

	badSuit := model.Suit("COINS")
	_, err = svc.ListCards(context.Background(), model.CardFilter{Suit: &badSuit})
	assert.Equal(t, model.KindValidation, model.KindOf(err))
}

func TestCardService_GetCard(t *testing.T) {
	ctx := context.Background()
	svc, seeds := newTestCardService(t)

	card, err := svc.GetCard(ctx, seeds[5].ID.String())
	require.NoError(t, err)
	assert.Equal(t, seeds[5].NameEn, card.NameEn)

	for _, id := range []string{uuid.NewString(), "abc"} {
		_, err := svc.GetCard(ctx, id)
		assert.Equal(t, model.KindNotFound, model.KindOf(err), "id=%s", id)
	}
}

func TestCardService_RenderCardImage(t *testing.T) {
	ctx := context.Background()
	svc, seeds := newTestCardService(t)

	// 大アルカナと小アルカナ、両サイズ
	for _, seed := range []model.TarotCard{seeds[0], seeds[30]} {
		for _, size := range []model.CardImageSize{model.CardImageThumb, model.CardImageFull} {
			body, err := svc.RenderCardImage(ctx, seed.ID.String(), size)
			require.NoError(t, err)
			svg := string(body)
			assert.True(t, strings.HasPrefix(svg, "<?xml"), "SVG として始まるべき")
			assert.Contains(t, svg, "<svg")
			assert.Contains(t, svg, seed.NameEn)
			assert.NoError(t, xml.Unmarshal(body, new(struct{})), "整形式の XML であるべき")
		}
	}

	_, err := svc.RenderCardImage(ctx, uuid.NewString(), model.CardImageThumb)
	assert.Equal(t, model.KindNotFound, model.KindOf(err))
}
