package service

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"

	"arcana_lab/internal/model"
)

// CardFace は SVG カード画像の描画に必要な情報です。
type CardFace struct {
	NameKo string
	NameEn string
	Arcana model.Arcana
	Suit   *model.Suit
	SuitKo string
	Rank   *string
}

var suitGlyphs = map[model.Suit]string{
	model.SuitWands:     "✶",
	model.SuitCups:      "☾",
	model.SuitSwords:    "⟠",
	model.SuitPentacles: "✦",
}

// cardDimensions は画像サイズ種別ごとの幅と高さを返します。
func cardDimensions(size model.CardImageSize) (int, int) {
	if size == model.CardImageFull {
		return 720, 1200
	}
	return 240, 400
}

// RenderCardSVG は画像ファイルがないカードのためのプレースホルダ画像を描きます。
func RenderCardSVG(face CardFace, size model.CardImageSize) []byte {
	w, h := cardDimensions(size)
	thumb := size != model.CardImageFull
	px := func(ratio float64, base int) int { return int(math.Round(ratio * float64(base))) }
	pick := func(t, f float64) float64 {
		if thumb {
			return t
		}
		return f
	}

	accent, accentSoft, arcanaLabel := "#E9D5FF", "rgba(168,85,247,0.10)", "마이너"
	if face.Arcana == model.ArcanaMajor {
		accent, accentSoft, arcanaLabel = "#FDE68A", "rgba(245,158,11,0.10)", "메이저"
	}
	glyph := "✶"
	subtitle := arcanaLabel
	if face.Suit != nil {
		if g, ok := suitGlyphs[*face.Suit]; ok {
			glyph = g
		}
		subtitle += " · " + face.SuitKo
	}
	if face.Rank != nil && *face.Rank != "" {
		subtitle += " #" + *face.Rank
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(w, h, fmt.Sprintf(`viewBox="0 0 %d %d"`, w, h))

	canvas.Def()
	canvas.LinearGradient("bg", 0, 0, 0, 100, []svg.Offcolor{
		{Offset: 0, Color: "#070B1A", Opacity: 1},
		{Offset: 100, Color: "#020617", Opacity: 1},
	})
	canvas.LinearGradient("gold", 0, 0, 100, 100, []svg.Offcolor{
		{Offset: 0, Color: accent, Opacity: 0.9},
		{Offset: 100, Color: "#F59E0B", Opacity: 0.55},
	})
	canvas.Filter("blur", `x="-20%" y="-20%" width="140%" height="140%"`)
	blur := pick(18, 42)
	canvas.FeGaussianBlur(svg.Filterspec{}, blur, blur)
	canvas.Fend()
	canvas.DefEnd()

	// 背景と光彩
	canvas.Roundrect(0, 0, w, h, px(0.06, w), px(0.06, w), `fill="url(#bg)"`)
	canvas.Circle(px(0.75, w), px(0.18, h), px(0.55, w), fmt.Sprintf(`fill="%s" filter="url(#blur)"`, accentSoft))
	canvas.Circle(px(0.20, w), px(0.80, h), px(0.55, w), `fill="rgba(59,130,246,0.10)" filter="url(#blur)"`)

	// 二重の枠線
	canvas.Roundrect(px(0.04, w), px(0.03, h), px(0.92, w), px(0.94, h), px(0.05, w), px(0.05, w),
		fmt.Sprintf(`fill="none" stroke="url(#gold)" stroke-opacity="0.35" stroke-width="%g"`, pick(2, 4)))
	canvas.Roundrect(px(0.065, w), px(0.055, h), px(0.87, w), px(0.89, h), px(0.045, w), px(0.045, w),
		fmt.Sprintf(`fill="none" stroke="url(#gold)" stroke-opacity="0.18" stroke-width="%g"`, pick(1.5, 3)))

	// 星座風の線と点
	upper := [][2]float64{{0.18, 0.22}, {0.32, 0.30}, {0.46, 0.24}, {0.60, 0.34}, {0.72, 0.22}}
	lower := [][2]float64{{0.26, 0.68}, {0.40, 0.78}, {0.56, 0.72}, {0.70, 0.80}}
	canvas.Group(fmt.Sprintf(`fill="none" stroke="url(#gold)" stroke-opacity="0.18" stroke-width="%g"`, pick(1, 2)))
	for _, line := range [][][2]float64{upper, lower} {
		xs := make([]int, 0, len(line))
		ys := make([]int, 0, len(line))
		for _, p := range line {
			xs = append(xs, px(p[0], w))
			ys = append(ys, px(p[1], h))
		}
		canvas.Polyline(xs, ys)
	}
	canvas.Gend()
	canvas.Group(`fill="#E5E7EB" fill-opacity="0.10"`)
	for _, p := range append(append([][2]float64{}, upper...), lower...) {
		canvas.Circle(px(p[0], w), px(p[1], h), int(pick(2, 4)))
	}
	canvas.Gend()

	canvas.Text(px(0.10, w), px(0.14, h), "ARCANA-LAB",
		fmt.Sprintf(`fill="rgba(253,230,138,0.85)" font-family="ui-sans-serif, system-ui" font-size="%g" letter-spacing="%g"`, pick(12, 26), pick(3, 6)))
	canvas.Text(px(0.50, w), px(0.52, h), glyph,
		fmt.Sprintf(`text-anchor="middle" fill="url(#gold)" font-family="ui-serif, Georgia, serif" font-size="%g" opacity="0.85"`, pick(72, 200)))
	canvas.Text(px(0.50, w), px(0.72, h), face.NameKo,
		fmt.Sprintf(`text-anchor="middle" fill="rgba(241,245,249,0.92)" font-family="ui-sans-serif, system-ui" font-size="%g" font-weight="600"`, pick(18, 46)))
	canvas.Text(px(0.50, w), px(0.76, h), face.NameEn,
		fmt.Sprintf(`text-anchor="middle" fill="rgba(148,163,184,0.95)" font-family="ui-sans-serif, system-ui" font-size="%g"`, pick(12, 26)))
	canvas.Text(px(0.50, w), px(0.82, h), subtitle,
		fmt.Sprintf(`text-anchor="middle" fill="rgba(253,230,138,0.70)" font-family="ui-sans-serif, system-ui" font-size="%g" letter-spacing="%g"`, pick(11, 22), pick(1.5, 3)))

	canvas.End()
	return buf.Bytes()
}
