package pdf

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
)

// Element places one text block. Every numeric value is a fraction of the
// output page (x/maxWidth of width, y/fontSize of height), all in [0,1].
type Element struct {
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"fontSize"`
	Font     string  `json:"font,omitempty"`
	Color    string  `json:"color,omitempty"`
	Align    string  `json:"align,omitempty"` // "center" (default) or "left"
	MaxWidth float64 `json:"maxWidth,omitempty"`
	Text     string  `json:"text,omitempty"` // fixed boilerplate, when the element owns its text
}

// ImageBox places an image region. W/H for rectangles (signature), Size for
// squares (QR, fraction of min(pageW, pageH)).
type ImageBox struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	W    float64 `json:"w,omitempty"`
	H    float64 `json:"h,omitempty"`
	Size float64 `json:"size,omitempty"`
}

// Layout is the canonical, resolution-independent description of where each
// certificate element goes.
type Layout struct {
	Title         Element  `json:"title"`
	Organization  Element  `json:"organization"`
	PresentedTo   Element  `json:"presentedTo"`
	Recipient     Element  `json:"recipient"`
	ForCompletion Element  `json:"forCompletion"`
	CourseName    Element  `json:"courseName"`
	Description   Element  `json:"description"`
	DateLabel     Element  `json:"dateLabel"`
	DateValue     Element  `json:"dateValue"`
	Signature     ImageBox `json:"signatureImg"`
	SignatoryLine Element  `json:"signatoryLine"`
	QR            ImageBox `json:"qr"`
	CertID        Element  `json:"certId"`
}

// Standard returns the built-in professional layout used whenever a template
// carries no custom layout.
func Standard() Layout {
	return Layout{
		Title:         Element{Y: 0.15, FontSize: 0.05, Font: "Times-Bold", Color: "#111", Align: "center"},
		Organization:  Element{Y: 0.22, FontSize: 0.025, Font: "Helvetica-Bold", Color: "#444", Align: "center"},
		PresentedTo:   Element{Y: 0.35, FontSize: 0.02, Font: "Helvetica", Color: "#555", Align: "center", Text: "This certificate is proudly presented to"},
		Recipient:     Element{Y: 0.42, FontSize: 0.06, Font: "Great Vibes", Color: "#d4af37", Align: "center"},
		ForCompletion: Element{Y: 0.52, FontSize: 0.02, Font: "Helvetica", Color: "#555", Align: "center", Text: "For successfully completing the course"},
		CourseName:    Element{Y: 0.56, FontSize: 0.035, Font: "Helvetica-Bold", Color: "#222", Align: "center"},
		Description:   Element{Y: 0.65, FontSize: 0.018, Font: "Helvetica", Color: "#666", Align: "center", MaxWidth: 0.7},
		DateLabel:     Element{Y: 0.78, X: 0.20, FontSize: 0.015, Font: "Helvetica-Bold", Color: "#333", Align: "left", Text: "Date of Issue"},
		DateValue:     Element{Y: 0.81, X: 0.20, FontSize: 0.015, Font: "Helvetica", Color: "#333", Align: "left"},
		Signature:     ImageBox{X: 0.65, Y: 0.75, W: 0.20, H: 0.08},
		SignatoryLine: Element{Y: 0.83, X: 0.65, FontSize: 0.015, Font: "Helvetica-Bold", Color: "#333", Align: "left", Text: "Authorized Signatory"},
		QR:            ImageBox{X: 0.45, Y: 0.82, Size: 0.10},
		CertID:        Element{Y: 0.94, FontSize: 0.012, Font: "Courier", Color: "#999", Align: "center"},
	}
}

/* =======================================================================
   Stored template layouts

   Two representations exist in the data:
   - canonical percentage elements (canvas omitted)
   - legacy fixed-canvas pixel layouts authored against 1600x1100
   Both resolve to the canonical Layout here; the migration endpoint uses
   the same conversion to rewrite legacy rows in place.
======================================================================= */

type storedCanvas struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

type storedElement struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	FontFamily string  `json:"fontFamily"`
	FontSize   float64 `json:"fontSize"`
	FontWeight string  `json:"fontWeight"`
	Align      string  `json:"align"`
	Color      string  `json:"color"`
	MaxWidth   float64 `json:"maxWidth"`
}

type storedSignature struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Label  string  `json:"label"`
}

type storedBox struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// TemplateLayout mirrors the JSON stored on a template row.
type TemplateLayout struct {
	Canvas        *storedCanvas    `json:"canvas,omitempty"`
	Title         *storedElement   `json:"title,omitempty"`
	Subtitle      *storedElement   `json:"subtitle,omitempty"`
	RecipientName *storedElement   `json:"recipientName,omitempty"`
	Description   *storedElement   `json:"description,omitempty"`
	Date          *storedElement   `json:"date,omitempty"`
	Signatures    []storedSignature `json:"signatures,omitempty"`
	QR            *storedBox       `json:"qr,omitempty"`
}

// ResolveLayout parses a stored template layout and returns the canonical
// percentage Layout plus whether the source was a legacy fixed-canvas layout
// (a migration candidate). Empty input resolves to the standard layout.
func ResolveLayout(raw []byte) (Layout, bool, error) {
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "{}" {
		return Standard(), false, nil
	}

	var stored TemplateLayout
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Standard(), false, fmt.Errorf("parse template layout: %w", err)
	}

	layout := Standard()
	fixed := stored.Canvas != nil && stored.Canvas.W > 0 && stored.Canvas.H > 0

	sx, sy := 1.0, 1.0
	if fixed {
		sx, sy = 1.0/stored.Canvas.W, 1.0/stored.Canvas.H
	}

	apply := func(dst *Element, src *storedElement) {
		if src == nil {
			return
		}
		dst.X = clamp01(src.X * sx)
		dst.Y = clamp01(src.Y * sy)
		if src.FontSize > 0 {
			dst.FontSize = clamp01(src.FontSize * sy)
		}
		if src.FontFamily != "" {
			dst.Font = src.FontFamily
		}
		if weightIsBold(src.FontWeight) && src.FontFamily != "" {
			dst.Font = src.FontFamily + "-Bold"
		}
		if src.Align != "" {
			dst.Align = src.Align
		}
		if src.Color != "" {
			dst.Color = src.Color
		}
		if src.MaxWidth > 0 {
			dst.MaxWidth = clamp01(src.MaxWidth * sx)
		}
	}

	apply(&layout.Title, stored.Title)
	apply(&layout.PresentedTo, stored.Subtitle)
	apply(&layout.Recipient, stored.RecipientName)
	apply(&layout.Description, stored.Description)
	apply(&layout.DateValue, stored.Date)

	if len(stored.Signatures) > 0 {
		sig := stored.Signatures[0]
		layout.Signature = ImageBox{
			X: clamp01(sig.X * sx),
			Y: clamp01(sig.Y * sy),
			W: clamp01(sig.Width * sx),
			H: clamp01(sig.Height * sy),
		}
		layout.SignatoryLine.X = layout.Signature.X
		layout.SignatoryLine.Y = clamp01(layout.Signature.Y + layout.Signature.H + 0.01)
		if sig.Label != "" {
			layout.SignatoryLine.Text = sig.Label
		}
	}

	if stored.QR != nil {
		size := stored.QR.Size
		if fixed {
			// Square box: scale against the shorter canvas edge, matching
			// how the renderer sizes the QR against min(pageW, pageH).
			size = size / minf(stored.Canvas.W, stored.Canvas.H)
		}
		layout.QR = ImageBox{
			X:    clamp01(stored.QR.X * sx),
			Y:    clamp01(stored.QR.Y * sy),
			Size: clamp01(size),
		}
	}

	return layout, fixed, nil
}

// MigrateStored rewrites a legacy fixed-canvas layout into the canonical
// percentage form. Returns (nil, false) when the input is already canonical.
func MigrateStored(raw []byte) ([]byte, bool, error) {
	layout, fixed, err := ResolveLayout(raw)
	if err != nil {
		return nil, false, err
	}
	if !fixed {
		return nil, false, nil
	}
	out, err := json.Marshal(canonicalStored(layout))
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func canonicalStored(l Layout) TemplateLayout {
	el := func(e Element) *storedElement {
		return &storedElement{
			X:          e.X,
			Y:          e.Y,
			FontFamily: e.Font,
			FontSize:   e.FontSize,
			Align:      e.Align,
			Color:      e.Color,
			MaxWidth:   e.MaxWidth,
		}
	}
	return TemplateLayout{
		Title:         el(l.Title),
		Subtitle:      el(l.PresentedTo),
		RecipientName: el(l.Recipient),
		Description:   el(l.Description),
		Date:          el(l.DateValue),
		Signatures: []storedSignature{{
			X:      l.Signature.X,
			Y:      l.Signature.Y,
			Width:  l.Signature.W,
			Height: l.Signature.H,
			Label:  l.SignatoryLine.Text,
		}},
		QR: &storedBox{X: l.QR.X, Y: l.QR.Y, Size: l.QR.Size},
	}
}

/* =======================================================================
   Fonts & colors
======================================================================= */

// resolveFont maps friendly template font names onto the guaranteed core
// set. Unknown names never fail a render; they substitute the default with
// a warning so operators can fix the template data.
func resolveFont(name string) (family, style string) {
	switch name {
	case "", "Helvetica", "Montserrat", "Poppins":
		return "Helvetica", ""
	case "Helvetica-Bold", "Montserrat-Bold", "Poppins-Bold":
		return "Helvetica", "B"
	case "Times", "Times-Roman":
		return "Times", ""
	case "Times-Bold", "Playfair Display", "Playfair Display-Bold":
		return "Times", "B"
	case "Times-Italic", "Great Vibes", "Great Vibes-Bold":
		return "Times", "I"
	case "Courier":
		return "Courier", ""
	case "Courier-Bold":
		return "Courier", "B"
	default:
		log.Printf("[WARN] unmapped font %q on template layout, substituting Helvetica", name)
		return "Helvetica", ""
	}
}

func weightIsBold(w string) bool {
	if w == "bold" {
		return true
	}
	n, err := strconv.Atoi(w)
	return err == nil && n >= 600
}

// parseHexColor accepts #rgb and #rrggbb; anything else renders black.
func parseHexColor(s string) (r, g, b int) {
	if len(s) == 0 || s[0] != '#' {
		return 0, 0, 0
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16), int(v >> 8 & 0xff), int(v & 0xff)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
