// Package mimetype maps file extensions to MIME types using an embedded data
// table, with content sniffing as a fallback.
//
// The table lives in data/types.yaml and is compiled into the binary, so
// lookups never touch the host system's mime database and behave identically
// across platforms:
//
//	mimetype.Lookup("style.css")      // "text/css; charset=utf-8"
//	mimetype.ByExtension(".png")      // "image/png"
//	mimetype.ByExtension("unknown")   // ""
//
// For content without a useful extension, DetectReader sniffs magic bytes via
// http.DetectContentType. Normalize and Matches help compare types, including
// wildcard patterns such as "image/*".
package mimetype
