// internal/model/draw.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Orientation はカードの向き (正位置 / 逆位置) です。
type Orientation string

const (
	OrientationUpright  Orientation = "UPRIGHT"
	OrientationReversed Orientation = "REVERSED"
)

// 1 回の抽選で引けるカード枚数の範囲
const (
	MinCardCount = 1
	MaxCardCount = 3
)

// DateLayout は Draw.Date の書式 (固定長・ゼロ埋め) です。
const DateLayout = "2006-01-02"

// Draw は 1 回の抽選結果 (ヘッダ) です。作成後は変更されません。
type Draw struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Date           string     `gorm:"type:char(10);not null;index"`
	DrawnAt        time.Time  `gorm:"not null;index"`
	CardCount      int        `gorm:"not null"`
	Model          *string    // フォールバック時は NULL
	PromptVersion  int        `gorm:"not null"`
	PromptText     string     `gorm:"type:text;not null"`
	SummaryOneLine *string    `gorm:"type:text"`
	ReadingText    string     `gorm:"type:text;not null"`
	Items          []DrawItem `gorm:"foreignKey:DrawID;constraint:OnDelete:CASCADE"`
}

func (Draw) TableName() string {
	return "draws"
}

// DrawItem は抽選で引かれた 1 枚分のカードです。
type DrawItem struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"`
	DrawID      uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_draw_items_draw_position,priority:1;uniqueIndex:idx_draw_items_draw_card,priority:1"`
	Position    int         `gorm:"not null;uniqueIndex:idx_draw_items_draw_position,priority:2"`
	Orientation Orientation `gorm:"type:varchar(8);not null"`
	CardID      uuid.UUID   `gorm:"type:uuid;not null;index;uniqueIndex:idx_draw_items_draw_card,priority:2"`
	Card        *TarotCard  `gorm:"foreignKey:CardID;references:ID;constraint:OnDelete:RESTRICT"`
}

func (DrawItem) TableName() string {
	return "draw_items"
}

// 抽選作成リクエストDTO
type CreateDrawRequest struct {
	CardCount int `json:"cardCount" validate:"required,min=1,max=3"`
}

// CardSummaryDTO は抽選アイテムに埋め込むカード情報です。
type CardSummaryDTO struct {
	ID           uuid.UUID `json:"id"`
	NameEn       string    `json:"nameEn"`
	NameKo       string    `json:"nameKo"`
	Arcana       Arcana    `json:"arcana"`
	Suit         *Suit     `json:"suit"`
	Rank         *string   `json:"rank"`
	ImageURL     *string   `json:"imageUrl"`
	ThumbnailURL *string   `json:"thumbnailUrl"`
}

type DrawItemDTO struct {
	ID          uuid.UUID      `json:"id"`
	Position    int            `json:"position"`
	Orientation Orientation    `json:"orientation"`
	Card        CardSummaryDTO `json:"card"`
}

// DrawDTO は抽選詳細のレスポンス形式です。promptText は含めません。
type DrawDTO struct {
	ID             uuid.UUID     `json:"id"`
	Date           string        `json:"date"`
	DrawnAt        time.Time     `json:"drawnAt"`
	CardCount      int           `json:"cardCount"`
	Model          *string       `json:"model"`
	PromptVersion  int           `json:"promptVersion"`
	SummaryOneLine *string       `json:"summaryOneLine"`
	ReadingText    string        `json:"readingText"`
	Items          []DrawItemDTO `json:"items"`
}

// DrawSummaryDTO は履歴一覧で使う要約形式です。
type DrawSummaryDTO struct {
	ID             uuid.UUID     `json:"id"`
	Date           string        `json:"date"`
	DrawnAt        time.Time     `json:"drawnAt"`
	CardCount      int           `json:"cardCount"`
	SummaryOneLine *string       `json:"summaryOneLine"`
	Items          []DrawItemDTO `json:"items"`
}

// CreateDrawResponse は POST /draws のレスポンスです。
// Model は生成バックエンドの識別子で、フォールバック時は "disabled" になります。
type CreateDrawResponse struct {
	Draw  DrawDTO `json:"draw"`
	Model string  `json:"model"`
}

func NewCardSummaryDTO(c *TarotCard) CardSummaryDTO {
	if c == nil {
		return CardSummaryDTO{}
	}
	return CardSummaryDTO{
		ID:           c.ID,
		NameEn:       c.NameEn,
		NameKo:       c.NameKo,
		Arcana:       c.Arcana,
		Suit:         c.Suit,
		Rank:         c.Rank,
		ImageURL:     c.ImageURL,
		ThumbnailURL: c.ThumbnailURL,
	}
}

func newDrawItemDTOs(items []DrawItem) []DrawItemDTO {
	dtos := make([]DrawItemDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, DrawItemDTO{
			ID:          items[i].ID,
			Position:    items[i].Position,
			Orientation: items[i].Orientation,
			Card:        NewCardSummaryDTO(items[i].Card),
		})
	}
	return dtos
}

// NewDrawDTO は Draw をレスポンス形式に変換します。
func NewDrawDTO(d *Draw) DrawDTO {
	return DrawDTO{
		ID:             d.ID,
		Date:           d.Date,
		DrawnAt:        d.DrawnAt.UTC(),
		CardCount:      d.CardCount,
		Model:          d.Model,
		PromptVersion:  d.PromptVersion,
		SummaryOneLine: d.SummaryOneLine,
		ReadingText:    d.ReadingText,
		Items:          newDrawItemDTOs(d.Items),
	}
}

func NewDrawSummaryDTO(d *Draw) DrawSummaryDTO {
	return DrawSummaryDTO{
		ID:             d.ID,
		Date:           d.Date,
		DrawnAt:        d.DrawnAt.UTC(),
		CardCount:      d.CardCount,
		SummaryOneLine: d.SummaryOneLine,
		Items:          newDrawItemDTOs(d.Items),
	}
}

func NewDrawSummaryDTOs(draws []*Draw) []DrawSummaryDTO {
	out := make([]DrawSummaryDTO, 0, len(draws))
	for _, d := range draws {
		out = append(out, NewDrawSummaryDTO(d))
	}
	return out
}
