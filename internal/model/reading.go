// internal/model/reading.go
package model

// DisabledModel は生成バックエンド未設定時に報告されるモデル名です。
const DisabledModel = "disabled"

// ReadingCard はリーディング生成に渡すカード 1 枚分の根拠データです。
type ReadingCard struct {
	Position       int
	NameKo         string
	NameEn         string
	Arcana         Arcana
	Suit           *Suit
	Orientation    Orientation
	Keywords       []string
	Description    string
	UprightPoints  string
	ReversedPoints string
}

// ReadingInput はリーディング生成の入力です。
type ReadingInput struct {
	Date      string
	CardCount int
	Cards     []ReadingCard
}

// ReadingOutput はリーディング生成の結果です。PromptText はどの経路でも必ず設定されます。
type ReadingOutput struct {
	PromptText     string
	Model          string
	ReadingText    string
	SummaryOneLine *string
}

// StoredModel は Draw に保存するモデル名を返します (フォールバック時は nil)。
func (o *ReadingOutput) StoredModel() *string {
	if o.Model == "" || o.Model == DisabledModel {
		return nil
	}
	m := o.Model
	return &m
}
