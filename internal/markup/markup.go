// Package markup turns a stored album into a self-contained print-ready HTML
// document. Generation is pure and deterministic: identical inputs yield
// byte-identical markup, so the renderer output is reproducible.
package markup

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"math"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/albumpress/albumpress/internal/album"
)

//go:embed templates/album.html
var templateFS embed.FS

var albumTemplate = template.Must(template.ParseFS(templateFS, "templates/album.html"))

// documentData is the root data passed to the album template.
type documentData struct {
	Title        string
	PageWidthMM  string
	PageHeightMM string
	Pages        []pageData
}

// pageData holds one rendered page block.
type pageData struct {
	Style string
	Last  bool
	Boxes []boxData
}

// boxData holds one positioned element box. Style and Text are pre-escaped.
type boxData struct {
	Kind  string
	Style string
	Text  string
}

// Generate builds the print markup for an album. One page block is emitted per
// page, sized to the canvas dimensions, with a page break after every block
// except the last. Structurally valid but malformed values (out-of-range
// opacity, missing URLs, unknown element types) degrade instead of failing.
func Generate(a album.Album, pages []album.Page, canvas album.CanvasSize, theme album.Theme) (string, error) {
	data := documentData{
		Title:        html.EscapeString(a.Name),
		PageWidthMM:  formatNumber(canvas.WidthMM),
		PageHeightMM: formatNumber(canvas.HeightMM),
		Pages:        make([]pageData, 0, len(pages)),
	}

	for i, p := range pages {
		data.Pages = append(data.Pages, pageData{
			Style: pageStyle(p, theme),
			Last:  i == len(pages)-1,
			Boxes: buildBoxes(p.Elements),
		})
	}

	var buf bytes.Buffer
	if err := albumTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing album template: %w", err)
	}
	return buf.String(), nil
}

// pageStyle resolves the page background: the page's own color/image override
// the theme defaults.
func pageStyle(p album.Page, theme album.Theme) string {
	var sb styleBuilder
	switch {
	case p.BackgroundColor != "":
		sb.add("background-color", cssValue(p.BackgroundColor))
	case theme.BackgroundGradient != "":
		sb.add("background", cssValue(theme.BackgroundGradient))
	case theme.BackgroundColor != "":
		sb.add("background-color", cssValue(theme.BackgroundColor))
	}
	if p.BackgroundImage != "" {
		sb.add("background-image", "url('"+cssURL(p.BackgroundImage)+"')")
		sb.add("background-size", "cover")
		sb.add("background-position", "center")
	}
	return sb.String()
}

// buildBoxes converts the page's elements into positioned boxes in paint
// order: ascending zIndex, ties broken by input order.
func buildBoxes(elements []album.Element) []boxData {
	ordered := make([]album.Element, len(elements))
	copy(ordered, elements)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ZIndex < ordered[j].ZIndex
	})

	boxes := make([]boxData, 0, len(ordered))
	for _, el := range ordered {
		boxes = append(boxes, buildBox(el))
	}
	return boxes
}

func buildBox(el album.Element) boxData {
	var sb styleBuilder
	sb.add("left", fracToPercent(el.X)+"%")
	sb.add("top", fracToPercent(el.Y)+"%")
	sb.add("width", fracToPercent(math.Max(el.Width, 0))+"%")
	sb.add("height", fracToPercent(math.Max(el.Height, 0))+"%")
	sb.add("z-index", strconv.Itoa(el.ZIndex))
	if el.Rotation != 0 {
		sb.add("transform", "rotate("+formatNumber(el.Rotation)+"deg)")
	}
	if op := normalizeOpacity(el.Opacity); op < 1 {
		sb.add("opacity", formatNumber(op))
	}

	box := boxData{Kind: string(el.Type), Style: ""}
	switch el.Type {
	case album.ElementPhoto:
		photoStyle(&sb, el.Photo)
	case album.ElementText:
		box.Text = textStyle(&sb, el.Text)
	case album.ElementShape:
		shapeStyle(&sb, el.Shape)
	default:
		// Unrecognized element types keep their box but paint nothing.
		box.Kind = "unknown"
	}
	box.Style = sb.String()
	return box
}

func photoStyle(sb *styleBuilder, photo *album.PhotoElement) {
	if photo == nil {
		return
	}
	// A missing URL renders an empty box rather than a broken-image placeholder
	// bleeding into print output.
	if photo.URL != "" {
		sb.add("background-image", "url('"+cssURL(photo.URL)+"')")
	}
	if filter := photoFilter(photo); filter != "" {
		sb.add("filter", filter)
	}
	if photo.BorderRadius > 0 {
		sb.add("border-radius", formatNumber(photo.BorderRadius)+"px")
	}
	if photo.Border != "" {
		sb.add("border", cssValue(photo.Border))
	}
	if photo.Shadow != "" {
		sb.add("box-shadow", cssValue(photo.Shadow))
	}
}

// photoFilter composes raster filter directives. Unset (zero) values mean the
// neutral 1.0, matching how the layout editor omits untouched sliders.
func photoFilter(photo *album.PhotoElement) string {
	if photo.Brightness == 0 && photo.Contrast == 0 && photo.Saturation == 0 {
		return ""
	}
	return "brightness(" + formatNumber(valueOrOne(photo.Brightness)) +
		") contrast(" + formatNumber(valueOrOne(photo.Contrast)) +
		") saturate(" + formatNumber(valueOrOne(photo.Saturation)) + ")"
}

func textStyle(sb *styleBuilder, text *album.TextElement) string {
	if text == nil {
		return ""
	}
	align := text.TextAlign
	if align == "" {
		align = "center"
	}
	sb.add("text-align", cssValue(align))
	switch align {
	case "left":
		sb.add("justify-content", "flex-start")
	case "right":
		sb.add("justify-content", "flex-end")
	default:
		sb.add("justify-content", "center")
	}
	if text.FontFamily != "" {
		sb.add("font-family", cssValue(text.FontFamily))
	}
	if text.FontSize > 0 {
		sb.add("font-size", formatNumber(text.FontSize)+"pt")
	}
	if text.FontWeight != "" {
		sb.add("font-weight", cssValue(text.FontWeight))
	}
	if text.FontStyle != "" {
		sb.add("font-style", cssValue(text.FontStyle))
	}
	if text.Color != "" {
		sb.add("color", cssValue(text.Color))
	}
	if text.BackgroundColor != "" {
		sb.add("background-color", cssValue(text.BackgroundColor))
	}
	if text.LineHeight > 0 {
		sb.add("line-height", formatNumber(text.LineHeight))
	}
	if text.LetterSpacing != 0 {
		sb.add("letter-spacing", formatNumber(text.LetterSpacing)+"pt")
	}
	if text.Shadow != "" {
		sb.add("text-shadow", cssValue(text.Shadow))
	}
	return html.EscapeString(text.Content)
}

func shapeStyle(sb *styleBuilder, shape *album.ShapeElement) {
	if shape == nil {
		return
	}
	if shape.FillColor != "" {
		sb.add("background-color", cssValue(shape.FillColor))
	}
	if shape.StrokeWidth > 0 && shape.StrokeColor != "" {
		sb.add("border", formatNumber(shape.StrokeWidth)+"px solid "+cssValue(shape.StrokeColor))
	}
	if shape.ShapeType == album.ShapeCircle {
		sb.add("border-radius", "50%")
	} else if shape.BorderRadius > 0 {
		sb.add("border-radius", formatNumber(shape.BorderRadius)+"px")
	}
}

// styleBuilder accumulates inline CSS declarations in insertion order.
type styleBuilder struct {
	parts []string
}

func (b *styleBuilder) add(property, value string) {
	b.parts = append(b.parts, property+": "+value)
}

func (b *styleBuilder) String() string {
	return strings.Join(b.parts, "; ")
}

// fracToPercent converts a [0,1] fraction to a percent string by shifting the
// decimal point textually, so the emitted percentage maps back to the exact
// fraction the editor stored (no binary float drift from multiplying by 100).
func fracToPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	for len(fracPart) < 2 {
		fracPart += "0"
	}
	intPart += fracPart[:2]
	fracPart = fracPart[2:]
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	out := intPart
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

// formatNumber formats a float without trailing zeros.
func formatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// normalizeOpacity clamps opacity to [0,1]; the zero value means opaque.
func normalizeOpacity(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return math.Min(v, 1)
}

func valueOrOne(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

// cssValueEscaper strips characters that would let user data break out of an
// inline style declaration or the style attribute holding it.
var cssValueEscaper = strings.NewReplacer(`"`, "", ";", "", "{", "", "}", "", "<", "", ">", "", "\n", "", "\r", "")

func cssValue(s string) string {
	return cssValueEscaper.Replace(s)
}

// cssURLEscaper makes a URL safe inside url('...') and the style attribute.
var cssURLEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `"`, "%22", "\n", "", "\r", "", "<", "%3C", ">", "%3E")

func cssURL(s string) string {
	return cssURLEscaper.Replace(s)
}
