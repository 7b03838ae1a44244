package notifications

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"

	"sertifikatku_backend/internals/configs"
)

// Mailer delivers certificate PDFs over plain SMTP. Delivery is always best
// effort: callers log the returned error and move on.
type Mailer struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

func NewMailerFromEnv() *Mailer {
	return &Mailer{
		Host: configs.GetEnv("SMTP_HOST"),
		Port: configs.GetEnv("SMTP_PORT", "587"),
		User: configs.GetEnv("SMTP_USER"),
		Pass: configs.GetEnv("SMTP_PASS"),
		From: configs.GetEnv("SMTP_FROM", configs.GetEnv("SMTP_USER")),
	}
}

// Enabled reports whether SMTP is configured at all. Unconfigured mailers
// silently skip sending so local setups work without a mail server.
func (m *Mailer) Enabled() bool {
	return m.Host != "" && m.From != ""
}

// SendCertificate emails the rendered PDF to the recipient.
func (m *Mailer) SendCertificate(to, studentName, certificateID, pdfPath string) error {
	if !m.Enabled() {
		return nil
	}
	if to == "" {
		return fmt.Errorf("no recipient address")
	}

	pdfBytes, err := os.ReadFile(pdfPath)
	if err != nil {
		return fmt.Errorf("read certificate pdf: %w", err)
	}

	subject := "Your certificate " + certificateID
	text := fmt.Sprintf(
		"Hello %s,\r\n\r\nYour certificate %s is attached.\r\nYou can verify it anytime at %s/verify/%s\r\n",
		studentName, certificateID, configs.FrontendURL, certificateID)

	msg, err := buildMessage(m.From, to, subject, text, filepath.Base(pdfPath), pdfBytes)
	if err != nil {
		return err
	}

	addr := m.Host + ":" + m.Port
	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}
	return smtp.SendMail(addr, auth, m.From, []string{to}, msg)
}

// buildMessage assembles a multipart/mixed message: one text part plus the
// PDF as a base64 attachment.
func buildMessage(from, to, subject, text, filename string, attachment []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", w.Boundary())

	textHdr := textproto.MIMEHeader{}
	textHdr.Set("Content-Type", "text/plain; charset=utf-8")
	part, err := w.CreatePart(textHdr)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(text)); err != nil {
		return nil, err
	}

	attHdr := textproto.MIMEHeader{}
	attHdr.Set("Content-Type", "application/pdf")
	attHdr.Set("Content-Transfer-Encoding", "base64")
	attHdr.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	part, err = w.CreatePart(attHdr)
	if err != nil {
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(attachment)
	// 76-char lines per RFC 2045.
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := part.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return nil, err
		}
		encoded = encoded[n:]
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
