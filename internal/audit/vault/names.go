// Helpers for decoding vault identifiers: path stripping, extension
// detection and drawing/part number parsing from PDF display names.
package vault

import (
	"regexp"
	"strings"
)

// knownExts in priority order; filetype substring match beats a filename
// suffix match.
var knownExts = []string{".idw", ".pdf", ".ipt", ".iam"}

// DetectExt derives the CAD extension from the raw filetype string first,
// then from the identifier itself.
func DetectExt(filetypeVal, nameVal string) string {
	t := strings.ToLower(filetypeVal)
	n := strings.ToLower(nameVal)
	for _, e := range knownExts {
		if strings.Contains(t, e) {
			return e
		}
		if strings.HasSuffix(n, e) {
			return e
		}
	}
	return ""
}

// StripPath reduces any path-ish string to its last segment.
func StripPath(nameVal string) string {
	s := strings.TrimSpace(nameVal)
	unified := strings.ReplaceAll(s, `\`, "/")
	parts := strings.Split(unified, "/")
	return parts[len(parts)-1]
}

// BaseName lower-cases and drops the extension of the last path segment.
func BaseName(nameVal string) string {
	just := strings.ToLower(StripPath(nameVal))
	if dot := strings.LastIndex(just, "."); dot > 0 {
		return just[:dot]
	}
	return just
}

var (
	reDrawingNumber = regexp.MustCompile(`\b[A-Z]{1,3}\d{4}\b`)
	reTrailingExt   = regexp.MustCompile(`\.[A-Z0-9]+$`)
	reRevMarker     = regexp.MustCompile(`\bREV(?:ISION)?\s*\d+\b`)
	rePartRun       = regexp.MustCompile(`[A-Z0-9]{6,}`)
)

// ExtractDrawingNumber finds a 1-3 letter prefix + 4 digit drawing number.
func ExtractDrawingNumber(nameVal string) string {
	return reDrawingNumber.FindString(strings.ToUpper(nameVal))
}

// PDFNameInfo is what a .pdf display name yields once decoded.
type PDFNameInfo struct {
	DrawingNumber string
	PartNumber    string
}

// ParsePDFName decodes "{drawing} {part} REV n.pdf"-style display names: the
// part number is the last alphanumeric run of 6+ chars after stripping the
// extension and revision markers.
func ParsePDFName(nameVal string) PDFNameInfo {
	raw := StripPath(nameVal)
	if raw == "" {
		return PDFNameInfo{}
	}
	upper := strings.ToUpper(raw)
	noExt := reTrailingExt.ReplaceAllString(upper, "")
	cleaned := reRevMarker.ReplaceAllString(noExt, " ")

	info := PDFNameInfo{DrawingNumber: ExtractDrawingNumber(cleaned)}
	if runs := rePartRun.FindAllString(cleaned, -1); len(runs) > 0 {
		info.PartNumber = runs[len(runs)-1]
	}
	return info
}
