package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.\-]`)
	hexColor            = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)
)

// SanitizeURL accepts only absolute http and https URLs. Anything else,
// including javascript: and data: URIs, yields "".
func SanitizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// SanitizeFilename replaces every character outside [A-Za-z0-9_.-] with "_".
func SanitizeFilename(s string) string {
	return unsafeFilenameChars.ReplaceAllString(s, "_")
}

// Filename derives the download name for an invoice number.
func Filename(invoiceNumber string) string {
	if invoiceNumber == "" {
		invoiceNumber = "draft"
	}
	return "invoice-" + SanitizeFilename(invoiceNumber) + ".pdf"
}

// sanitizeColor keeps hex colors only; the value lands inside a stylesheet.
func sanitizeColor(s string) string {
	s = strings.TrimSpace(s)
	if hexColor.MatchString(s) {
		return s
	}
	return ""
}
