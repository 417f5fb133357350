// internal/model/card.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Arcana はカードの大分類 (大アルカナ / 小アルカナ) です。
type Arcana string

const (
	ArcanaMajor Arcana = "MAJOR"
	ArcanaMinor Arcana = "MINOR"
)

// Valid は既知のアルカナかどうかを返します。
func (a Arcana) Valid() bool {
	return a == ArcanaMajor || a == ArcanaMinor
}

// Suit は小アルカナのスートです。大アルカナでは nil になります。
type Suit string

const (
	SuitWands     Suit = "WANDS"
	SuitCups      Suit = "CUPS"
	SuitSwords    Suit = "SWORDS"
	SuitPentacles Suit = "PENTACLES"
)

// Suits は sortKey の並び順どおりのスート一覧です。
var Suits = []Suit{SuitWands, SuitCups, SuitSwords, SuitPentacles}

func (s Suit) Valid() bool {
	for _, v := range Suits {
		if s == v {
			return true
		}
	}
	return false
}

// PlaceholderText は本文がまだ用意されていないカードのテキスト項目に入る値です。
const PlaceholderText = "데이터 준비 중"

// TarotCard は 78 枚のデッキのうち 1 枚を表します (シード後は読み取り専用)。
type TarotCard struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	NameEn         string    `gorm:"not null" json:"nameEn"`
	NameKo         string    `gorm:"not null" json:"nameKo"`
	Arcana         Arcana    `gorm:"type:varchar(5);not null;index" json:"arcana"`
	Suit           *Suit     `gorm:"type:varchar(10);index" json:"suit"`
	Rank           *string   `gorm:"type:varchar(10)" json:"rank"`
	SortKey        int       `gorm:"not null;uniqueIndex" json:"sortKey"`
	ImageURL       *string   `json:"imageUrl"`
	ThumbnailURL   *string   `json:"thumbnailUrl"`
	Keywords       []string  `gorm:"serializer:json;not null" json:"keywords"`
	Description    string    `gorm:"not null" json:"description"`
	UprightPoints  string    `gorm:"not null" json:"uprightPoints"`
	ReversedPoints string    `gorm:"not null" json:"reversedPoints"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (TarotCard) TableName() string {
	return "tarot_cards"
}

// IsMeaningFilled は本文 3 項目すべてがプレースホルダ以外で埋まっているかを返します。
func (c *TarotCard) IsMeaningFilled() bool {
	return c.Description != PlaceholderText &&
		c.UprightPoints != PlaceholderText &&
		c.ReversedPoints != PlaceholderText
}

// CardFilter はカード一覧の絞り込み条件です。すべて任意で AND 結合されます。
type CardFilter struct {
	Query  string
	Arcana *Arcana
	Suit   *Suit
}

// カード一覧のクエリパラメータ
type ListCardsQuery struct {
	Query  string `json:"query" validate:"omitempty,max=100"`
	Arcana string `json:"arcana" validate:"omitempty,oneof=MAJOR MINOR"`
	Suit   string `json:"suit" validate:"omitempty,oneof=WANDS CUPS SWORDS PENTACLES"`
}

// CardImageSize は SVG カード画像のサイズ種別です。
type CardImageSize string

const (
	CardImageThumb CardImageSize = "thumb"
	CardImageFull  CardImageSize = "full"
)
