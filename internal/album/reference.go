package album

import (
	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed reference.yaml
var referenceYAML []byte

type referenceData struct {
	CanvasSizes []CanvasSize `yaml:"canvas_sizes"`
	Themes      []Theme      `yaml:"themes"`
}

var reference referenceData

func init() {
	// Embedded file, so a parse failure is a build defect, not a runtime condition.
	if err := yaml.Unmarshal(referenceYAML, &reference); err != nil {
		panic("failed to unmarshal embedded reference.yaml: " + err.Error())
	}
}

// DefaultCanvasSizeID is used when an album references an unknown canvas size.
const DefaultCanvasSizeID = "square-20"

// DefaultThemeID is used when an album references an unknown theme.
const DefaultThemeID = "classic"

// CanvasSizes returns all available canvas sizes.
func CanvasSizes() []CanvasSize {
	out := make([]CanvasSize, len(reference.CanvasSizes))
	copy(out, reference.CanvasSizes)
	return out
}

// Themes returns all available themes.
func Themes() []Theme {
	out := make([]Theme, len(reference.Themes))
	copy(out, reference.Themes)
	return out
}

// CanvasSizeByID looks up a canvas size. Unknown ids fall back to the default
// size so a dangling reference never breaks an export.
func CanvasSizeByID(id string) CanvasSize {
	for _, cs := range reference.CanvasSizes {
		if cs.ID == id {
			return cs
		}
	}
	for _, cs := range reference.CanvasSizes {
		if cs.ID == DefaultCanvasSizeID {
			return cs
		}
	}
	return CanvasSize{ID: DefaultCanvasSizeID, Label: "Square 20×20", WidthMM: 200, HeightMM: 200, AspectRatio: "1:1"}
}

// ThemeByID looks up a theme, falling back to the default theme for unknown ids.
func ThemeByID(id string) Theme {
	for _, t := range reference.Themes {
		if t.ID == id {
			return t
		}
	}
	for _, t := range reference.Themes {
		if t.ID == DefaultThemeID {
			return t
		}
	}
	return Theme{ID: DefaultThemeID, Name: "Classic", BackgroundColor: "#ffffff", TextColor: "#222222"}
}
