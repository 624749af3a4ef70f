package mimetype

import (
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// OctetStream is the fallback type for unknown content.
const OctetStream = "application/octet-stream"

// detectionBytes is how much http.DetectContentType needs at most.
const detectionBytes = 512

//go:embed data/types.yaml
var typesYAML []byte

// byExtension is the embedded extension table, loaded once at package init.
// The table ships with the binary, so a parse failure is a build defect.
var byExtension = mustLoadTable(typesYAML)

func mustLoadTable(raw []byte) map[string]string {
	table := make(map[string]string)
	if err := yaml.Unmarshal(raw, &table); err != nil {
		panic(fmt.Sprintf("mimetype: malformed embedded table: %v", err))
	}
	for ext, typ := range table {
		table[strings.ToLower(ext)] = typ
	}
	return table
}

// ByExtension returns the MIME type for a file extension, with or without the
// leading dot. Returns the empty string when the extension is unknown.
func ByExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		return ""
	}
	return byExtension[ext]
}

// Lookup returns the MIME type for a file name based on its extension.
// Unknown extensions map to OctetStream.
func Lookup(filename string) string {
	if typ := ByExtension(filepath.Ext(filename)); typ != "" {
		return typ
	}
	return OctetStream
}

// DetectReader sniffs the MIME type from content magic bytes.
// It reads up to 512 bytes and returns OctetStream when nothing is readable.
func DetectReader(r io.Reader) string {
	buf := make([]byte, detectionBytes)
	n, err := r.Read(buf)
	if err != nil && n == 0 {
		return OctetStream
	}
	return http.DetectContentType(buf[:n])
}

// Normalize extracts the base MIME type, removing parameters like charset.
// Returns the lowercase MIME type.
func Normalize(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(mimeType))
}

// Matches reports whether a MIME type matches any of the allowed patterns.
// Patterns may be exact ("image/png") or wildcards ("image/*").
func Matches(mimeType string, allowed []string) bool {
	mimeType = Normalize(mimeType)

	for _, pattern := range allowed {
		pattern = strings.TrimSpace(strings.ToLower(pattern))

		if mimeType == pattern {
			return true
		}

		if strings.HasSuffix(pattern, "/*") {
			prefix := strings.TrimSuffix(pattern, "*")
			if strings.HasPrefix(mimeType, prefix) {
				return true
			}
		}
	}

	return false
}
