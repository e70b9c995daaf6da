package render

// Format is the nominal paper format of the exported PDF. The markup's own
// @page size directive takes precedence when present.
type Format string

// Supported paper formats.
const (
	FormatA4     Format = "A4"
	FormatA3     Format = "A3"
	FormatLetter Format = "Letter"
	FormatLegal  Format = "Legal"
)

// Orientation of the exported pages.
type Orientation string

// Supported orientations.
const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// Margins holds per-side print margins in millimeters.
type Margins struct {
	TopMM    float64 `json:"top_mm"`
	RightMM  float64 `json:"right_mm"`
	BottomMM float64 `json:"bottom_mm"`
	LeftMM   float64 `json:"left_mm"`
}

// PDFOptions controls one render call.
type PDFOptions struct {
	Format            Format      `json:"format"`
	Orientation       Orientation `json:"orientation"`
	Quality           int         `json:"quality"`
	IncludeBackground bool        `json:"include_background"`
	Margins           Margins     `json:"margins"`
}

// DefaultOptions returns the documented export defaults: A4 portrait,
// quality 85, backgrounds on, 1cm margins on all sides.
func DefaultOptions() PDFOptions {
	return PDFOptions{
		Format:            FormatA4,
		Orientation:       OrientationPortrait,
		Quality:           85,
		IncludeBackground: true,
		Margins:           Margins{TopMM: 10, RightMM: 10, BottomMM: 10, LeftMM: 10},
	}
}

// Merge fills unset fields of o from the defaults. IncludeBackground cannot be
// distinguished from an explicit false here, so callers that need to preserve
// an explicit false handle it at the decoding boundary.
func (o PDFOptions) Merge(defaults PDFOptions) PDFOptions {
	if o.Format == "" {
		o.Format = defaults.Format
	}
	if o.Orientation == "" {
		o.Orientation = defaults.Orientation
	}
	if o.Quality <= 0 {
		o.Quality = defaults.Quality
	}
	if o.Margins == (Margins{}) {
		o.Margins = defaults.Margins
	}
	return o
}

// paperSizeMM returns the portrait dimensions of a paper format.
func paperSizeMM(f Format) (width, height float64) {
	switch f {
	case FormatA3:
		return 297, 420
	case FormatLetter:
		return 215.9, 279.4
	case FormatLegal:
		return 215.9, 355.6
	default:
		return 210, 297
	}
}

// PaperSizeMM returns the oriented paper dimensions for the options.
func (o PDFOptions) PaperSizeMM() (width, height float64) {
	w, h := paperSizeMM(o.Format)
	if o.Orientation == OrientationLandscape {
		return h, w
	}
	return w, h
}

const mmPerInch = 25.4

func mmToInches(mm float64) float64 {
	return mm / mmPerInch
}
