package constants

import "strings"

// DocumentFormat classifies what kind of binary the pipeline was handed.
type DocumentFormat string

const (
	PDF   DocumentFormat = "PDF"
	IMAGE DocumentFormat = "IMAGE"
	OTHER DocumentFormat = "OTHER"
)

// AllowedExtensions holds the file extensions accepted for invoice ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"webp": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapMediaTypeToFormat classifies a MIME media type.
func MapMediaTypeToFormat(mediaType string) DocumentFormat {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	switch {
	case mt == "application/pdf":
		return PDF
	case strings.HasPrefix(mt, "image/"):
		return IMAGE
	default:
		return OTHER
	}
}

// MapExtToMediaType returns the MIME type for an extension, or "" if unknown.
func MapExtToMediaType(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return "application/pdf"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}
