package service

import (
	"fmt"
	"strings"

	"arcana_lab/internal/model"
)

const (
	fallbackSummary      = "카드 데이터 준비 전 임시 리딩"
	failedReadingText    = "리딩 생성에 실패했습니다."
	noneLabel            = "(none)"
	maxFallbackKeywords  = 10
	maxGeneratedKeywords = 12
)

var systemPromptLines = []string{
	"당신은 타로 리딩을 '간결하고 결정적으로' 작성하는 어시스턴트입니다.",
	"반드시 아래에 제공된 카드 데이터(키워드/설명/포인트)만을 근거로 문장을 구성하세요.",
	"카드 데이터가 '" + model.PlaceholderText + "'인 경우, 추측하지 말고 일반적인 톤의 조언으로만 작성하세요.",
	"출력은 반드시 JSON 하나로만 응답하세요. 추가 텍스트 금지.",
	"과도하게 짧게 쓰지 마세요. 각 섹션을 충분히 서술하되 장황한 수사는 피하세요.",
}

var userPromptRules = []string{
	"다음 JSON 형식으로만 답하세요:",
	`{"readingText":"(카드별 해석 + 전체 요약 + 오늘의 조언)","summaryOneLine":"(한 줄 요약, 40자 내)","keywords":["..."],"moneyReading":"...","loveReading":"...","dayReview":"..."}`,
	"",
	"readingText 구성 규칙:",
	"- 카드별 해석: 카드 순서대로 각 4~6문장",
	"- 전체 요약: 3~5문장",
	"- 오늘의 조언: 2~3문장",
	"",
	"추가 필드 규칙:",
	"- keywords: 오늘의 핵심 키워드 5~12개(중복 제거, 짧게)",
	"- moneyReading: 금전/일/성과 관점 3~6문장",
	"- loveReading: 관계/연애 관점 3~6문장",
	"- dayReview: 오늘 하루 총평 3~5문장",
}

// readingPrompt はモデルに送るメッセージと、監査用に保存する全文です。
type readingPrompt struct {
	System string
	User   string
	Text   string
}

func buildReadingPrompt(in model.ReadingInput) readingPrompt {
	system := strings.Join(systemPromptLines, "\n")

	blocks := make([]string, 0, len(in.Cards))
	for i, c := range in.Cards {
		arcana := "arcana=" + string(c.Arcana)
		if c.Suit != nil {
			arcana += " / suit=" + string(*c.Suit)
		}
		keywords := strings.Join(c.Keywords, ", ")
		if keywords == "" {
			keywords = noneLabel
		}
		blocks = append(blocks, strings.Join([]string{
			fmt.Sprintf("#%d", i+1),
			fmt.Sprintf("nameKo=%s | nameEn=%s", c.NameKo, c.NameEn),
			arcana,
			"orientation=" + string(c.Orientation),
			"keywords=" + keywords,
			"description=" + c.Description,
			"uprightPoints=" + c.UprightPoints,
			"reversedPoints=" + c.ReversedPoints,
		}, "\n"))
	}

	userLines := []string{
		"date=" + in.Date,
		fmt.Sprintf("cardCount=%d", in.CardCount),
		"",
		"cards:",
		strings.Join(blocks, "\n\n"),
		"",
	}
	user := strings.Join(append(userLines, userPromptRules...), "\n")

	return readingPrompt{
		System: system,
		User:   user,
		Text:   "SYSTEM:\n" + system + "\n\nUSER:\n" + user,
	}
}

func orientationLabel(o model.Orientation) string {
	if o == model.OrientationUpright {
		return "정방향"
	}
	return "역방향"
}

// uniqueKeywords は空白を除いた重複なしのキーワードを出現順で最大 limit 件返します。
func uniqueKeywords(lists [][]string, limit int) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, limit)
	for _, list := range lists {
		for _, k := range list {
			k = strings.TrimSpace(k)
			if k == "" || seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}

func keywordsLine(keywords []string) string {
	if len(keywords) == 0 {
		return "키워드: " + noneLabel
	}
	return "키워드: " + strings.Join(keywords, ", ")
}

// buildFallbackReading は生成バックエンドなしで使う定型リーディングです。
func buildFallbackReading(in model.ReadingInput) string {
	lines := []string{"오늘의 리딩(임시):", ""}
	lists := make([][]string, 0, len(in.Cards))
	for i, c := range in.Cards {
		lines = append(lines, fmt.Sprintf("- %d. %s (%s)", i+1, c.NameKo, orientationLabel(c.Orientation)))
		lists = append(lists, c.Keywords)
	}
	lines = append(lines,
		"",
		keywordsLine(uniqueKeywords(lists, maxFallbackKeywords)),
		"",
		"금전적 해석:",
		"지출과 결정은 한 박자 쉬어가며, 지금 할 수 있는 작은 정리부터 진행해보세요.",
		"",
		"연애적 해석:",
		"상대의 의도를 추측하기보다, 오늘 필요한 사실과 감정을 차분히 확인해보세요.",
		"",
		"오늘 하루 총평:",
		"크게 밀어붙이기보다 균형을 회복하는 날입니다. 작은 선택을 정리하면 흐름이 정돈됩니다.",
	)
	return strings.Join(lines, "\n")
}

// generatedReading はモデルが返す JSON オブジェクトです。
type generatedReading struct {
	ReadingText    string   `json:"readingText"`
	SummaryOneLine string   `json:"summaryOneLine"`
	Keywords       []string `json:"keywords"`
	MoneyReading   string   `json:"moneyReading"`
	LoveReading    string   `json:"loveReading"`
	DayReview      string   `json:"dayReview"`
}

func (g *generatedReading) valid() bool {
	return strings.TrimSpace(g.ReadingText) != "" && strings.TrimSpace(g.SummaryOneLine) != ""
}

// format は本文に任意セクションを連結します。空のセクションは出力しません。
func (g *generatedReading) format() string {
	parts := []string{strings.TrimSpace(g.ReadingText)}
	if kws := uniqueKeywords([][]string{g.Keywords}, maxGeneratedKeywords); len(kws) > 0 {
		parts = append(parts, "", keywordsLine(kws))
	}
	sections := []struct{ title, body string }{
		{"금전적 해석:", g.MoneyReading},
		{"연애적 해석:", g.LoveReading},
		{"오늘 하루 총평:", g.DayReview},
	}
	for _, s := range sections {
		if body := strings.TrimSpace(s.body); body != "" {
			parts = append(parts, "", s.title, body)
		}
	}
	return strings.Join(parts, "\n")
}
