package commons

import (
	"fmt"
	"strconv"
	"strings"

	"arcana_lab/internal/model"
)

var suitFilePrefix = map[model.Suit]string{
	model.SuitWands:     "Wands",
	model.SuitCups:      "Cups",
	model.SuitSwords:    "Swords",
	model.SuitPentacles: "Pents",
}

var rankNumbers = map[string]int{
	"ACE": 1, "TWO": 2, "THREE": 3, "FOUR": 4, "FIVE": 5, "SIX": 6, "SEVEN": 7,
	"EIGHT": 8, "NINE": 9, "TEN": 10, "PAGE": 11, "KNIGHT": 12, "QUEEN": 13, "KING": 14,
}

// FileTitle は Commons 上の RWS 画像ファイル名を返します (例: RWS_Tarot_00_Fool.jpg, Cups02.jpg)。
func FileTitle(card *model.TarotCard) (string, error) {
	rank := ""
	if card.Rank != nil {
		rank = *card.Rank
	}
	if card.Arcana == model.ArcanaMajor {
		n, err := strconv.Atoi(rank)
		if err != nil {
			return "", fmt.Errorf("major arcana %q has non-numeric rank %q", card.NameEn, rank)
		}
		name := strings.TrimSpace(strings.TrimPrefix(card.NameEn, "The "))
		return fmt.Sprintf("RWS_Tarot_%02d_%s.jpg", n, strings.Join(strings.Fields(name), "_")), nil
	}
	if card.Suit == nil {
		return "", fmt.Errorf("minor arcana %q has no suit", card.NameEn)
	}
	// Wands09.jpg は削除済みで別名が使われている
	if *card.Suit == model.SuitWands && rank == "NINE" {
		return "Tarot_Nine_of_Wands.jpg", nil
	}
	prefix, ok := suitFilePrefix[*card.Suit]
	n, okRank := rankNumbers[rank]
	if !ok || !okRank {
		return "", fmt.Errorf("unknown suit/rank %s/%s", *card.Suit, rank)
	}
	return fmt.Sprintf("%s%02d.jpg", prefix, n), nil
}
