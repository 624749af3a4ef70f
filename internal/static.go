package internal

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/anvil/pkg/mimetype"
)

// Files at or above streamThreshold are written in fixed chunks with a flush
// after each and no Content-Length; smaller files go out in a single write
// with Content-Length set explicitly.
const (
	streamThreshold = 20_000_000
	streamChunkSize = 4096
)

// worldReadable is the permission bit a file must carry to be served.
const worldReadable fs.FileMode = 0o004

// MIMELookupFunc resolves a file name to a MIME type. The application
// default is mimetype.Lookup; override it with WithMIMELookup.
type MIMELookupFunc func(filename string) string

// ServeFileOption configures a ServeFile call.
type ServeFileOption func(*serveFileConfig)

type serveFileConfig struct {
	dir          string
	contentType  string
	downloadName string
}

// WithDir resolves the file against the given directory instead of the
// first configured static directory.
func WithDir(dir string) ServeFileOption {
	return func(cfg *serveFileConfig) {
		cfg.dir = dir
	}
}

// WithContentType forces the Content-Type header, bypassing MIME lookup.
func WithContentType(contentType string) ServeFileOption {
	return func(cfg *serveFileConfig) {
		cfg.contentType = contentType
	}
}

// WithDownloadName serves the file as an attachment under the given name.
func WithDownloadName(name string) ServeFileOption {
	return func(cfg *serveFileConfig) {
		cfg.downloadName = name
	}
}

func (c *requestContext) ServeFile(name string, opts ...ServeFileOption) error {
	var cfg serveFileConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.dir == "" && c.settings != nil {
		if dirs := c.settings.StaticDirs(); len(dirs) > 0 {
			cfg.dir = dirs[0]
		}
	}
	return serveStatic(c, name, cfg)
}

// serveStatic is the static responder. Resolution and access checks happen
// before any header is touched so a refusal carries no validator headers.
//
// The ETag is a stat fingerprint over (path, mtime, size), never file
// content. A matching If-None-Match short-circuits to an empty 304 on both
// size paths.
func serveStatic(c *requestContext, name string, cfg serveFileConfig) error {
	if containsDotDot(name) {
		return ErrBadRequest("invalid file path")
	}

	full := filepath.Join(cfg.dir, filepath.FromSlash(path.Clean("/"+name)))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return ErrNotFound("file not found")
	}
	if info.Mode().Perm()&worldReadable == 0 {
		return ErrForbidden("file access denied")
	}

	f, err := os.Open(full)
	if err != nil {
		return ErrForbidden("file access denied", WithError(err))
	}
	defer f.Close()

	w := c.responseWriter
	etag := staticETag(full, info.ModTime(), info.Size())
	w.Header().Set("ETag", etag)
	w.Header().Set("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))

	if c.request.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}

	contentType := cfg.contentType
	if contentType == "" {
		lookup := c.mime
		if lookup == nil {
			lookup = mimetype.Lookup
		}
		contentType = lookup(full)
		if contentType == "" {
			contentType = mimetype.OctetStream
		}
	}
	w.Header().Set("Content-Type", contentType)
	if cfg.downloadName != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", cfg.downloadName))
	}

	if info.Size() < streamThreshold {
		data, err := io.ReadAll(f)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		if c.request.Method == http.MethodHead {
			return nil
		}
		_, err = w.Write(data)
		return err
	}

	// Streaming path: status and headers go out first, the body follows in
	// fixed chunks with a flush after each so slow clients throttle reads.
	w.WriteHeader(http.StatusOK)
	if c.request.Method == http.MethodHead {
		return nil
	}

	buf := make([]byte, streamChunkSize)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				// Client went away mid-stream; nothing left to send.
				return nil
			}
			w.Flush()
		}
		if rerr != nil {
			if errors.Is(rerr, io.EOF) {
				return nil
			}
			return rerr
		}
	}
}

// serveStaticPath serves a request under the static URL prefix, trying the
// configured static directories in order. A file that exists anywhere in
// the list decides the response; a miss everywhere is a 404.
func (a *App) serveStaticPath(c *requestContext) error {
	rel := strings.TrimPrefix(c.Path(), a.settings.StaticURLPrefix())
	if rel == c.Path() || rel == "" {
		return ErrNotFound("file not found")
	}
	if containsDotDot(rel) {
		return ErrBadRequest("invalid file path")
	}
	for _, dir := range a.settings.StaticDirs() {
		full := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+rel)))
		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			return serveStatic(c, rel, serveFileConfig{dir: dir})
		}
	}
	return ErrNotFound("file not found")
}

// staticETag fingerprints a file from its stat data.
func staticETag(name string, modTime time.Time, size int64) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%d", name, modTime.UnixNano(), size)
	return `"` + strconv.FormatUint(h.Sum64(), 16) + `"`
}

// containsDotDot reports whether any path element is "..".
func containsDotDot(v string) bool {
	if !strings.Contains(v, "..") {
		return false
	}
	for _, ent := range strings.FieldsFunc(v, isSlashRune) {
		if ent == ".." {
			return true
		}
	}
	return false
}

func isSlashRune(r rune) bool { return r == '/' || r == '\\' }
