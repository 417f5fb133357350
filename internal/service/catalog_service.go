package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"arcana_lab/internal/catalog"
	"arcana_lab/internal/commons"
	"arcana_lab/internal/middleware"
	"arcana_lab/internal/model"
	"arcana_lab/internal/repository"
)

// ReversedBlankMark は逆方向の本文が空のときに入れる記号です。
const ReversedBlankMark = "—"

var localImageExts = []string{".webp", ".png", ".jpg", ".jpeg"}

// ImageResolver は Commons のファイル名から画像 URL を解決します。
type ImageResolver interface {
	ImageURLs(ctx context.Context, fileName string, width int) (*commons.ImageInfo, error)
}

// CatalogStats はカード本文と画像の充足状況です。
type CatalogStats struct {
	Total         int64 `json:"total"`
	MeaningFilled int64 `json:"meaningFilled"`
	Filled        int64 `json:"filled"`
}

// JobResult はメンテナンスジョブ 1 回分の件数です。
type JobResult struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type ImportImagesOptions struct {
	ThumbWidth  int
	FullWidth   int
	Concurrency int
	Force       bool // 既に外部 URL が入っているカードも取り直す
}

// CatalogService はカードカタログの投入と補完を行うジョブ群です。cardctl から呼ばれます。
type CatalogService interface {
	Seed(ctx context.Context, deck *catalog.Deck) (*JobResult, error)
	Fill(ctx context.Context, meanings *catalog.Deck) (*JobResult, error)
	BackfillReversed(ctx context.Context) (*JobResult, error)
	SyncImages(ctx context.Context, publicDir string) (*JobResult, error)
	ImportImages(ctx context.Context, resolver ImageResolver, opts ImportImagesOptions) (*JobResult, error)
	Check(ctx context.Context) (*CatalogStats, error)
}

type catalogService struct {
	db             *gorm.DB
	cardRepo       repository.CardRepository
	publicBasePath string
	logger         *slog.Logger
}

func NewCatalogService(db *gorm.DB, cardRepo repository.CardRepository, publicBasePath string, logger *slog.Logger) CatalogService {
	return &catalogService{
		db:             db,
		cardRepo:       cardRepo,
		publicBasePath: strings.TrimRight(publicBasePath, "/"),
		logger:         logger,
	}
}

func (s *catalogService) allCards(ctx context.Context) ([]*model.TarotCard, error) {
	return s.cardRepo.List(ctx, s.db, model.CardFilter{})
}

// Seed は存在しない sort_key のカードだけを挿入し、画像 URL が空のカードに SVG の URL を入れます。
func (s *catalogService) Seed(ctx context.Context, deck *catalog.Deck) (*JobResult, error) {
	logger := middleware.GetLogger(ctx)
	result := &JobResult{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.cardRepo.List(ctx, tx, model.CardFilter{})
		if err != nil {
			return err
		}
		known := make(map[int]bool, len(existing))
		for _, c := range existing {
			known[c.SortKey] = true
		}

		var missing []model.TarotCard
		for _, seed := range deck.Seeds() {
			if known[seed.SortKey] {
				result.Skipped++
				continue
			}
			s.applySVGURLs(&seed)
			missing = append(missing, seed)
		}
		if err := s.cardRepo.CreateBatch(ctx, tx, missing); err != nil {
			return err
		}
		result.Updated += len(missing)

		for _, c := range existing {
			if c.ThumbnailURL != nil && c.ImageURL != nil {
				continue
			}
			s.applySVGURLs(c)
			if err := s.cardRepo.UpdateColumns(ctx, tx, c, "thumbnail_url", "image_url"); err != nil {
				return err
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// 別プロセスと同時に投入した場合。再実行すれば残りが埋まる
			logger.Warn("Seed raced with another writer", "error", err)
		}
		return nil, fmt.Errorf("seed: %w", err)
	}
	logger.Info("Seeded tarot cards", "inserted_or_backfilled", result.Updated, "skipped", result.Skipped)
	return result, nil
}

func (s *catalogService) applySVGURLs(c *model.TarotCard) {
	if c.ThumbnailURL == nil {
		u := fmt.Sprintf("%s/cards/%s/thumbnail.svg", s.publicBasePath, c.ID)
		c.ThumbnailURL = &u
	}
	if c.ImageURL == nil {
		u := fmt.Sprintf("%s/cards/%s/image.svg", s.publicBasePath, c.ID)
		c.ImageURL = &u
	}
}

func (s *catalogService) isSVGFallback(u *string) bool {
	return u == nil || (strings.HasSuffix(*u, ".svg") && strings.HasPrefix(*u, s.publicBasePath+"/cards/"))
}

func isPlaceholder(v string) bool {
	t := strings.TrimSpace(v)
	return t == "" || t == "-" || t == ReversedBlankMark || t == model.PlaceholderText
}

// Fill はデッキファイルの本文を、まだプレースホルダのままのカードに書き込みます。
func (s *catalogService) Fill(ctx context.Context, meanings *catalog.Deck) (*JobResult, error) {
	logger := middleware.GetLogger(ctx)
	bySortKey := meanings.MeaningsBySortKey()
	if len(bySortKey) == 0 {
		return nil, model.NewValidationError("deck", "본문 데이터가 없습니다.")
	}

	cards, err := s.allCards(ctx)
	if err != nil {
		return nil, err
	}
	result := &JobResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range cards {
			m, ok := bySortKey[c.SortKey]
			if !ok || (!isPlaceholder(c.UprightPoints) && !isPlaceholder(c.Description)) {
				result.Skipped++
				continue
			}
			if strings.TrimSpace(m.Description) == "" || strings.TrimSpace(m.UprightPoints) == "" {
				logger.Warn("Meaning entry is incomplete", "sort_key", c.SortKey, "name_en", c.NameEn)
				result.Failed++
				continue
			}
			if len(m.Keywords) > 0 {
				c.Keywords = m.Keywords
			}
			c.Description = strings.TrimSpace(m.Description)
			c.UprightPoints = strings.TrimSpace(m.UprightPoints)
			c.ReversedPoints = strings.TrimSpace(m.ReversedPoints)
			if c.ReversedPoints == "" {
				c.ReversedPoints = ReversedBlankMark
			}
			if err := s.cardRepo.UpdateColumns(ctx, tx, c, "keywords", "description", "upright_points", "reversed_points"); err != nil {
				return err
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Filled card meanings", "updated", result.Updated, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

func (s *catalogService) BackfillReversed(ctx context.Context) (*JobResult, error) {
	cards, err := s.allCards(ctx)
	if err != nil {
		return nil, err
	}
	result := &JobResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range cards {
			if strings.TrimSpace(c.ReversedPoints) != "" {
				result.Skipped++
				continue
			}
			c.ReversedPoints = ReversedBlankMark
			if err := s.cardRepo.UpdateColumns(ctx, tx, c, "reversed_points"); err != nil {
				return err
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	middleware.GetLogger(ctx).Info("Backfilled reversed points", "updated", result.Updated)
	return result, nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9\s-]`)
var slugSeparators = regexp.MustCompile(`[\s-]+`)

// CardSlug はローカル画像ファイルの名前 (拡張子なし) を返します。
// 例: major-00-the-fool, minor-cups-two
func CardSlug(c *model.TarotCard) string {
	rank := ""
	if c.Rank != nil {
		rank = *c.Rank
	}
	if c.Arcana == model.ArcanaMajor {
		n, err := strconv.Atoi(rank)
		if err != nil {
			n = 0
		}
		name := nonSlugChars.ReplaceAllString(strings.ToLower(c.NameEn), "")
		name = slugSeparators.ReplaceAllString(strings.TrimSpace(name), "-")
		return fmt.Sprintf("major-%02d-%s", n, name)
	}
	suit := ""
	if c.Suit != nil {
		suit = string(*c.Suit)
	}
	return fmt.Sprintf("minor-%s-%s", strings.ToLower(suit), strings.ToLower(rank))
}

func findLocalImage(dir, slug string) (string, bool) {
	for _, ext := range localImageExts {
		if _, err := os.Stat(filepath.Join(dir, slug+ext)); err == nil {
			return ext, true
		}
	}
	return "", false
}

// SyncImages は publicDir/cards/{thumb,full} に置かれた画像があれば、その URL をカードに設定します。
func (s *catalogService) SyncImages(ctx context.Context, publicDir string) (*JobResult, error) {
	thumbDir := filepath.Join(publicDir, "cards", "thumb")
	fullDir := filepath.Join(publicDir, "cards", "full")
	if _, err := os.Stat(filepath.Join(publicDir, "cards")); err != nil {
		return nil, model.NewValidationError("publicDir", "이미지 디렉터리를 찾을 수 없습니다.").
			WithDetail("path", filepath.Join(publicDir, "cards"))
	}

	cards, err := s.allCards(ctx)
	if err != nil {
		return nil, err
	}
	result := &JobResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range cards {
			slug := CardSlug(c)
			var columns []string
			if ext, ok := findLocalImage(thumbDir, slug); ok {
				u := "/assets/cards/thumb/" + slug + ext
				c.ThumbnailURL = &u
				columns = append(columns, "thumbnail_url")
			}
			if ext, ok := findLocalImage(fullDir, slug); ok {
				u := "/assets/cards/full/" + slug + ext
				c.ImageURL = &u
				columns = append(columns, "image_url")
			}
			if len(columns) == 0 {
				result.Skipped++
				continue
			}
			if err := s.cardRepo.UpdateColumns(ctx, tx, c, columns...); err != nil {
				return err
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	middleware.GetLogger(ctx).Info("Synced local card images", "updated", result.Updated, "skipped", result.Skipped)
	return result, nil
}

// ImportImages は Commons 上の RWS 画像 URL をカードごとに解決して保存します。
// 1 枚の失敗は Failed に数えて続行します。
func (s *catalogService) ImportImages(ctx context.Context, resolver ImageResolver, opts ImportImagesOptions) (*JobResult, error) {
	logger := middleware.GetLogger(ctx)
	cards, err := s.allCards(ctx)
	if err != nil {
		return nil, err
	}

	var updated, skipped, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))

	for _, c := range cards {
		if !opts.Force && !s.isSVGFallback(c.ThumbnailURL) && !s.isSVGFallback(c.ImageURL) {
			skipped.Add(1)
			continue
		}
		g.Go(func() error {
			if err := s.importCardImage(gctx, resolver, c, opts); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("Failed to import card image", "name_en", c.NameEn, "error", err)
				failed.Add(1)
				return nil
			}
			updated.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("import images: %w", err)
	}

	result := &JobResult{Updated: int(updated.Load()), Skipped: int(skipped.Load()), Failed: int(failed.Load())}
	logger.Info("Imported card images from commons", "updated", result.Updated, "skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

func (s *catalogService) importCardImage(ctx context.Context, resolver ImageResolver, c *model.TarotCard, opts ImportImagesOptions) error {
	fileName, err := commons.FileTitle(c)
	if err != nil {
		return err
	}
	thumb, err := resolver.ImageURLs(ctx, fileName, opts.ThumbWidth)
	if err != nil {
		return err
	}
	full, err := resolver.ImageURLs(ctx, fileName, opts.FullWidth)
	if err != nil {
		return err
	}
	c.ThumbnailURL = &thumb.ThumbURL
	c.ImageURL = &full.ThumbURL
	return s.cardRepo.UpdateColumns(ctx, s.db, c, "thumbnail_url", "image_url")
}

func (s *catalogService) Check(ctx context.Context) (*CatalogStats, error) {
	cards, err := s.allCards(ctx)
	if err != nil {
		return nil, err
	}
	stats := &CatalogStats{Total: int64(len(cards))}
	for _, c := range cards {
		if c.UprightPoints == model.PlaceholderText {
			continue
		}
		stats.MeaningFilled++
		if c.ThumbnailURL != nil && c.ImageURL != nil {
			stats.Filled++
		}
	}
	return stats, nil
}
