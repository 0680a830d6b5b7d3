package constants

import "strings"

// Source formats accepted by the document opener.
const (
	PDF = "PDF"
	TXT = "TXT"
)

// AllowedExtensions holds the default allowed file extensions for receipts ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to its source format, or "" when unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt":
		return TXT
	}
	return ""
}

// Decoder names for PDF sources.
const (
	DecoderLedongthuc = "ledongthuc"
	DecoderPdftotext  = "pdftotext"
)

// Database drivers accepted by the repository.
const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)
