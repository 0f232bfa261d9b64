package constants

import "strings"

// Format is the coarse document type derived from a file extension.
type Format string

const (
	PDF         Format = "PDF"
	IMAGE       Format = "IMAGE"
	SPREADSHEET Format = "SPREADSHEET"
	CSV         Format = "CSV"
	GENERIC     Format = "GENERIC"
)

// AllowedExtensions holds the file extensions picked up from the input collection.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"xlsx": {},
	"csv":  {},
}

// DefaultMaxImageDimension is the longest side (px) an image may have before it is downscaled.
const DefaultMaxImageDimension = 3072

// DefaultMaxImageMB caps attachment size for images.
const DefaultMaxImageMB = 15

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// MapExtToFormat maps an extension (with or without dot) to a Format.
// Unknown extensions map to GENERIC.
func MapExtToFormat(ext string) Format {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "png", "jpg", "jpeg":
		return IMAGE
	case "xlsx":
		return SPREADSHEET
	case "csv":
		return CSV
	default:
		return GENERIC
	}
}
