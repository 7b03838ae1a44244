package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
)

// A4 landscape in points, used when no readable background exists.
const (
	defaultPageW = 842.0
	defaultPageH = 595.0
)

// Renderer is the deterministic, single-pass certificate layout function:
// background → text blocks → signature → QR → certificate id, onto a page
// sized to the background image's native aspect ratio.
type Renderer struct {
	Paths Resolver
}

// RenderInput carries the resolved template side of a render call.
type RenderInput struct {
	BackgroundRef string
	Layout        Layout
}

type page struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
	w   float64
	h   float64
}

// Render produces the finished PDF at outPath. It fails only on QR encoding
// failure or unrecoverable I/O; missing background or signature images
// degrade silently.
func (r *Renderer) Render(in RenderInput, data CertificateData, outPath, certificateID, qrURL string) (string, error) {
	data.ApplyDefaults()

	// 1. Page dimensions follow the background's native pixel size.
	bgPath := r.Paths.Resolve(in.BackgroundRef)
	w, h := defaultPageW, defaultPageH
	bgReadable := false
	if FileExists(bgPath) {
		if iw, ih, err := imageSize(bgPath); err == nil {
			w, h = iw, ih
			bgReadable = true
		} else {
			log.Printf("[WARN] unreadable background %s: %v (rendering on blank %gx%g page)", bgPath, err, w, h)
		}
	} else if in.BackgroundRef != "" {
		log.Printf("[WARN] background %q not found, rendering on blank page", in.BackgroundRef)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pg := &page{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), w: w, h: h}

	// 2. Background full-bleed at the origin.
	if bgReadable {
		if err := pg.image("bg", bgPath, 0, 0, w, h); err != nil {
			log.Printf("[WARN] skip background %s: %v", bgPath, err)
		}
	}

	// 3. Text blocks, fixed order; each skips silently on empty input.
	L := in.Layout
	pg.text(L.Title, strings.ToUpper(data.CertificateTitle))
	pg.text(L.Organization, strings.ToUpper(data.OrganizationName))
	pg.text(L.PresentedTo, L.PresentedTo.Text)
	pg.text(L.Recipient, data.RecipientName)
	pg.text(L.ForCompletion, L.ForCompletion.Text)
	pg.text(L.CourseName, data.CourseName)
	if desc := strings.TrimSpace(data.Description); desc != "" && desc != data.CourseName {
		pg.text(L.Description, desc)
	}

	// 4. Issue date.
	pg.text(L.DateLabel, L.DateLabel.Text)
	pg.text(L.DateValue, data.DisplayDate())

	// 5. Signature image; the signatory label is drawn either way.
	r.drawSignature(pg, L.Signature, data.SignatureURL, certificateID)
	pg.text(L.SignatoryLine, L.SignatoryLine.Text)

	// 6. QR code. The one image whose failure is fatal.
	if err := drawQR(pg, L.QR, certificateID, qrURL); err != nil {
		return "", err
	}

	// 7. Certificate identifier.
	pg.text(L.CertID, "Certificate ID: "+certificateID)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", fmt.Errorf("create certificate dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return "", fmt.Errorf("write certificate pdf: %w", err)
	}
	return outPath, nil
}

// text draws one laid-out block. No-ops when the source text is empty.
func (pg *page) text(el Element, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	family, style := resolveFont(el.Font)
	size := el.FontSize * pg.h
	pg.pdf.SetFont(family, style, size)
	cr, cg, cb := parseHexColor(el.Color)
	pg.pdf.SetTextColor(cr, cg, cb)
	lineH := size * 1.2

	if el.Align == "left" {
		pg.pdf.SetXY(pg.w*el.X, pg.h*el.Y)
		pg.pdf.CellFormat(0, lineH, pg.tr(text), "", 0, "L", false, 0, "")
		return
	}

	maxW := el.MaxWidth
	if maxW <= 0 || maxW > 1 {
		maxW = 0.8
	}
	pg.pdf.SetXY(pg.w*(1-maxW)/2, pg.h*el.Y)
	pg.pdf.MultiCell(pg.w*maxW, lineH, pg.tr(text), "", "C", false)
}

func (r *Renderer) drawSignature(pg *page, box ImageBox, sigRef, certificateID string) {
	if sigRef == "" || box.W <= 0 || box.H <= 0 {
		return
	}
	sigPath := r.Paths.Resolve(sigRef)
	if !FileExists(sigPath) {
		log.Printf("[WARN] signature %q not found, skipping", sigRef)
		return
	}
	img, err := openImage(sigPath)
	if err != nil {
		log.Printf("[WARN] skip signature %s: %v", sigPath, err)
		return
	}

	// Aspect-preserving fit, centered inside the declared box.
	boxW, boxH := pg.w*box.W, pg.h*box.H
	b := img.Bounds()
	scale := minf(boxW/float64(b.Dx()), boxH/float64(b.Dy()))
	dw, dh := float64(b.Dx())*scale, float64(b.Dy())*scale
	x := pg.w*box.X + (boxW-dw)/2
	y := pg.h*box.Y + (boxH-dh)/2

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Printf("[WARN] skip signature %s: %v", sigPath, err)
		return
	}
	name := "sig-" + certificateID
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pg.pdf.RegisterImageOptionsReader(name, opts, &buf)
	pg.pdf.ImageOptions(name, x, y, dw, dh, false, opts, 0, "")
}

// qrGeometry sizes the QR square against the short page edge and centers it
// horizontally. The layout's X is ignored on purpose: centering keeps the code
// in place on both portrait and landscape templates.
func qrGeometry(pageW, pageH float64, box ImageBox) (x, y, size float64) {
	frac := box.Size
	if frac <= 0 {
		frac = 0.10
	}
	size = minf(pageW, pageH) * frac
	x = (pageW - size) / 2
	y = pageH * box.Y
	return x, y, size
}

func drawQR(pg *page, box ImageBox, certificateID, qrURL string) error {
	if qrURL == "" {
		return nil
	}
	x, y, size := qrGeometry(pg.w, pg.h, box)
	pngBytes, err := EncodeQR(qrURL, int(size*4))
	if err != nil {
		return err
	}
	name := "qr-" + certificateID
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pg.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(pngBytes))
	pg.pdf.ImageOptions(name, x, y, size, size, false, opts, 0, "")
	return nil
}

// image embeds a file-backed image. PNG/JPEG/GIF go to gofpdf directly;
// anything else (WEBP templates mostly) is decoded and re-encoded as PNG.
func (pg *page) image(name, path string, x, y, w, h float64) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		opts := gofpdf.ImageOptions{ImageType: imageTypeFromExt(path)}
		pg.pdf.ImageOptions(path, x, y, w, h, false, opts, 0, "")
		if pg.pdf.Err() {
			return pg.pdf.Error()
		}
		return nil
	default:
		img, err := openImage(path)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return err
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pg.pdf.RegisterImageOptionsReader(name, opts, &buf)
		pg.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
		return nil
	}
}

func imageTypeFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	default:
		return "PNG"
	}
}

// imageSize reads native pixel dimensions without decoding the full image.
func imageSize(path string) (float64, float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	var cfg image.Config
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		cfg, err = webp.DecodeConfig(f)
	} else {
		cfg, _, err = image.DecodeConfig(f)
	}
	if err != nil {
		return 0, 0, err
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}

func openImage(path string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return webp.Decode(f)
	}
	return imaging.Open(path)
}
