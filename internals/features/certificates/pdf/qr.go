package pdf

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// VerificationURL builds the public link encoded into the QR code and
// printed on the page: {frontendBaseURL}/verify/{certificateID}.
func VerificationURL(frontendBaseURL, certificateID string) string {
	return strings.TrimRight(frontendBaseURL, "/") + "/verify/" + certificateID
}

// EncodeQR renders the verification URL as a PNG buffer. Unlike missing
// images a QR failure is fatal: an unscannable certificate has no
// verification path.
func EncodeQR(content string, sizePx int) ([]byte, error) {
	if sizePx < 256 {
		sizePx = 256
	}
	png, err := qrcode.Encode(content, qrcode.Medium, sizePx)
	if err != nil {
		return nil, fmt.Errorf("encode verification QR: %w", err)
	}
	return png, nil
}
