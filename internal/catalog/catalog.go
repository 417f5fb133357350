// Package catalog は 78 枚のタロットデッキ定義 (TOML) を読み込み、
// tarot_cards テーブルへ投入するシードデータを組み立てます。
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"arcana_lab/internal/model"
)

//go:embed deck.toml
var defaultDeckTOML []byte

const (
	MajorCount = 22
	SuitCount  = 4
	RankCount  = 14
	TotalCards = MajorCount + SuitCount*RankCount
)

type DeckInfo struct {
	ID      string `toml:"id"`
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

type MajorEntry struct {
	Number int    `toml:"number"`
	NameEn string `toml:"name_en"`
	NameKo string `toml:"name_ko"`
}

type SuitEntry struct {
	Code    model.Suit `toml:"code"`
	NameEn  string     `toml:"name_en"`
	NameKo  string     `toml:"name_ko"`
	BaseKey int        `toml:"base_key"`
}

type RankEntry struct {
	Code   string `toml:"code"`
	NameEn string `toml:"name_en"`
	NameKo string `toml:"name_ko"`
	Offset int    `toml:"offset"`
}

// MeaningEntry はカード本文 (キーワード・説明・正逆ポイント) です。sort_key でカードを特定します。
type MeaningEntry struct {
	SortKey        int      `toml:"sort_key"`
	Keywords       []string `toml:"keywords"`
	Description    string   `toml:"description"`
	UprightPoints  string   `toml:"upright_points"`
	ReversedPoints string   `toml:"reversed_points"`
}

// Deck はデッキ定義ファイルの内容です。
type Deck struct {
	Deck     DeckInfo       `toml:"deck"`
	Major    []MajorEntry   `toml:"major"`
	Suit     []SuitEntry    `toml:"suit"`
	Rank     []RankEntry    `toml:"rank"`
	Meanings []MeaningEntry `toml:"meaning"`
}

var (
	defaultOnce sync.Once
	defaultDeck *Deck
	defaultErr  error
)

// Default は埋め込みの基本デッキを返します。
func Default() (*Deck, error) {
	defaultOnce.Do(func() {
		defaultDeck, defaultErr = Parse(defaultDeckTOML)
	})
	return defaultDeck, defaultErr
}

// LoadFile はファイルからデッキ定義を読み込みます。
func LoadFile(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog.LoadFile: %w", err)
	}
	return Parse(data)
}

// Parse は TOML をデコードします。名前定義 (major/suit/rank) を含む場合は枚数も検証します。
func Parse(data []byte) (*Deck, error) {
	var d Deck
	if _, err := toml.Decode(string(data), &d); err != nil {
		return nil, fmt.Errorf("error parsing deck toml: %w", err)
	}
	if len(d.Major) == 0 && len(d.Suit) == 0 && len(d.Rank) == 0 {
		// 本文のみのファイル (fill 用)
		return &d, nil
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Deck) validate() error {
	if len(d.Major) != MajorCount {
		return fmt.Errorf("deck %q: expected %d major arcana, got %d", d.Deck.ID, MajorCount, len(d.Major))
	}
	if len(d.Suit) != SuitCount {
		return fmt.Errorf("deck %q: expected %d suits, got %d", d.Deck.ID, SuitCount, len(d.Suit))
	}
	if len(d.Rank) != RankCount {
		return fmt.Errorf("deck %q: expected %d ranks, got %d", d.Deck.ID, RankCount, len(d.Rank))
	}
	for _, s := range d.Suit {
		if !s.Code.Valid() {
			return fmt.Errorf("deck %q: unknown suit %q", d.Deck.ID, s.Code)
		}
	}
	seen := make(map[int]bool, TotalCards)
	for _, k := range d.sortKeys() {
		if seen[k] {
			return fmt.Errorf("deck %q: duplicate sort key %d", d.Deck.ID, k)
		}
		seen[k] = true
	}
	return nil
}

func (d *Deck) sortKeys() []int {
	keys := make([]int, 0, TotalCards)
	for _, m := range d.Major {
		keys = append(keys, m.Number)
	}
	for _, s := range d.Suit {
		for _, r := range d.Rank {
			keys = append(keys, s.BaseKey+r.Offset)
		}
	}
	return keys
}

// SuitNameKo はスートの韓国語表記を返します。見つからない場合はコードをそのまま返します。
func (d *Deck) SuitNameKo(s model.Suit) string {
	for _, e := range d.Suit {
		if e.Code == s {
			return e.NameKo
		}
	}
	return string(s)
}

// Seeds は 78 枚分のカード行を組み立てます。本文はプレースホルダで埋められます。
func (d *Deck) Seeds() []model.TarotCard {
	cards := make([]model.TarotCard, 0, TotalCards)
	for _, m := range d.Major {
		rank := strconv.Itoa(m.Number)
		cards = append(cards, newSeed(m.NameEn, m.NameKo, model.ArcanaMajor, nil, rank, m.Number))
	}
	for _, s := range d.Suit {
		suit := s.Code
		for _, r := range d.Rank {
			cards = append(cards, newSeed(
				fmt.Sprintf("%s of %s", r.NameEn, s.NameEn),
				fmt.Sprintf("%s의 %s", s.NameKo, r.NameKo),
				model.ArcanaMinor,
				&suit,
				r.Code,
				s.BaseKey+r.Offset,
			))
		}
	}
	return cards
}

func newSeed(nameEn, nameKo string, arcana model.Arcana, suit *model.Suit, rank string, sortKey int) model.TarotCard {
	return model.TarotCard{
		ID:             uuid.New(),
		NameEn:         nameEn,
		NameKo:         nameKo,
		Arcana:         arcana,
		Suit:           suit,
		Rank:           &rank,
		SortKey:        sortKey,
		Keywords:       []string{},
		Description:    model.PlaceholderText,
		UprightPoints:  model.PlaceholderText,
		ReversedPoints: model.PlaceholderText,
	}
}

// MeaningsBySortKey は本文定義を sort_key で引けるようにします。
func (d *Deck) MeaningsBySortKey() map[int]MeaningEntry {
	m := make(map[int]MeaningEntry, len(d.Meanings))
	for _, e := range d.Meanings {
		m[e.SortKey] = e
	}
	return m
}
