package album

import "time"

// CanvasSize describes the physical page dimensions of an album in millimeters.
type CanvasSize struct {
	ID          string  `json:"id" yaml:"id"`
	Label       string  `json:"label" yaml:"label"`
	WidthMM     float64 `json:"width_mm" yaml:"width_mm"`
	HeightMM    float64 `json:"height_mm" yaml:"height_mm"`
	AspectRatio string  `json:"aspect_ratio" yaml:"aspect_ratio"`
}

// Theme holds the visual defaults applied to pages that do not override them.
type Theme struct {
	ID                 string `json:"id" yaml:"id"`
	Name               string `json:"name" yaml:"name"`
	BackgroundColor    string `json:"background_color" yaml:"background_color"`
	BackgroundGradient string `json:"background_gradient,omitempty" yaml:"background_gradient"`
	PrimaryColor       string `json:"primary_color" yaml:"primary_color"`
	SecondaryColor     string `json:"secondary_color" yaml:"secondary_color"`
	TextColor          string `json:"text_color" yaml:"text_color"`
}

// Album is the top-level photo book record. Pages are owned by the album;
// the export pipeline treats an album as a read-only snapshot.
type Album struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	CanvasSizeID string    `json:"canvas_size_id"`
	ThemeID      string    `json:"theme_id"`
	Category     string    `json:"category,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Page is one printed page of an album. Order defines the print sequence;
// pages are always rendered in ascending order.
type Page struct {
	ID              string    `json:"id"`
	AlbumID         string    `json:"album_id"`
	Order           int       `json:"order"`
	BackgroundColor string    `json:"background_color,omitempty"`
	BackgroundImage string    `json:"background_image,omitempty"`
	Elements        []Element `json:"elements"`
}

// ElementType discriminates the element union.
type ElementType string

// Element type constants.
const (
	ElementPhoto ElementType = "photo"
	ElementText  ElementType = "text"
	ElementShape ElementType = "shape"
)

// Element is a positioned box on a page. Position and size are fractions of
// the page box in [0,1]; out-of-range values are tolerated and clamped only
// visually at render time. Exactly one variant field matches Type; elements
// with an unrecognized type are kept but render as a no-op.
type Element struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Rotation float64     `json:"rotation"`
	Opacity  float64     `json:"opacity"`
	ZIndex   int         `json:"z_index"`

	Photo *PhotoElement `json:"photo,omitempty"`
	Text  *TextElement  `json:"text,omitempty"`
	Shape *ShapeElement `json:"shape,omitempty"`
}

// PhotoElement holds the photo-specific fields of an element.
type PhotoElement struct {
	URL          string  `json:"url"`
	BorderRadius float64 `json:"border_radius,omitempty"`
	Border       string  `json:"border,omitempty"`
	Shadow       string  `json:"shadow,omitempty"`
	Brightness   float64 `json:"brightness,omitempty"`
	Contrast     float64 `json:"contrast,omitempty"`
	Saturation   float64 `json:"saturation,omitempty"`
}

// TextElement holds the text-specific fields of an element.
type TextElement struct {
	Content         string  `json:"content"`
	FontFamily      string  `json:"font_family,omitempty"`
	FontSize        float64 `json:"font_size,omitempty"`
	FontWeight      string  `json:"font_weight,omitempty"`
	FontStyle       string  `json:"font_style,omitempty"`
	Color           string  `json:"color,omitempty"`
	BackgroundColor string  `json:"background_color,omitempty"`
	TextAlign       string  `json:"text_align,omitempty"`
	LineHeight      float64 `json:"line_height,omitempty"`
	LetterSpacing   float64 `json:"letter_spacing,omitempty"`
	Shadow          string  `json:"shadow,omitempty"`
}

// ShapeType enumerates the supported shape variants.
type ShapeType string

// Shape type constants.
const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeCircle    ShapeType = "circle"
)

// ShapeElement holds the shape-specific fields of an element.
type ShapeElement struct {
	ShapeType    ShapeType `json:"shape_type"`
	FillColor    string    `json:"fill_color,omitempty"`
	StrokeColor  string    `json:"stroke_color,omitempty"`
	StrokeWidth  float64   `json:"stroke_width,omitempty"`
	BorderRadius float64   `json:"border_radius,omitempty"`
}
