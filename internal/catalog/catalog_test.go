package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arcana_lab/internal/model"
)

func TestDefault_Seeds(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	seeds := d.Seeds()
	require.Len(t, seeds, TotalCards)

	var majors, minors int
	sortKeys := make(map[int]bool)
	for _, c := range seeds {
		assert.False(t, sortKeys[c.SortKey], "sort key %d は一意であるべき", c.SortKey)
		sortKeys[c.SortKey] = true
		assert.Equal(t, model.PlaceholderText, c.Description)
		assert.NotNil(t, c.Keywords)
		switch c.Arcana {
		case model.ArcanaMajor:
			majors++
			assert.Nil(t, c.Suit)
			assert.GreaterOrEqual(t, c.SortKey, 0)
			assert.LessOrEqual(t, c.SortKey, 21)
		case model.ArcanaMinor:
			minors++
			require.NotNil(t, c.Suit)
		}
	}
	assert.Equal(t, MajorCount, majors)
	assert.Equal(t, SuitCount*RankCount, minors)
}

func TestDefault_Names(t *testing.T) {
	d, err := Default()
	require.NoError(t, err)

	byKey := make(map[int]model.TarotCard)
	for _, c := range d.Seeds() {
		byKey[c.SortKey] = c
	}

	fool := byKey[0]
	assert.Equal(t, "The Fool", fool.NameEn)
	assert.Equal(t, "바보", fool.NameKo)
	require.NotNil(t, fool.Rank)
	assert.Equal(t, "0", *fool.Rank)

	aceOfWands := byKey[101]
	assert.Equal(t, "Ace of Wands", aceOfWands.NameEn)
	assert.Equal(t, "완드의 에이스", aceOfWands.NameKo)
	assert.Equal(t, "ACE", *aceOfWands.Rank)

	kingOfPentacles := byKey[414]
	assert.Equal(t, "King of Pentacles", kingOfPentacles.NameEn)
	assert.Equal(t, "펜타클의 킹", kingOfPentacles.NameKo)
	assert.Equal(t, model.SuitPentacles, *kingOfPentacles.Suit)

	assert.Equal(t, "소드", d.SuitNameKo(model.SuitSwords))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("[[major]]\nnumber = 0\nname_en = \"The Fool\"\n"))
	assert.Error(t, err, "大アルカナが 22 枚に満たない場合はエラー")

	_, err = Parse([]byte("not = [valid"))
	assert.Error(t, err)
}

func TestLoadFile_Meanings(t *testing.T) {
	d, err := LoadFile(filepath.Join("testdata", "meanings.toml"))
	require.NoError(t, err)
	require.Len(t, d.Meanings, 2)

	m := d.MeaningsBySortKey()
	assert.Equal(t, []string{"시작", "자유", "모험"}, m[0].Keywords)
	assert.Empty(t, m[101].ReversedPoints)
}
