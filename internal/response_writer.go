package internal

import (
	"bufio"
	"io"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter wraps http.ResponseWriter to provide response interception.
// It tracks status, size, and the handled flag, and runs registered hooks
// before the first write. Once the first byte or header goes out the flag is
// set and nothing can change the status line anymore.
type ResponseWriter struct {
	http.ResponseWriter
	status      int
	size        int64
	written     bool
	beforeWrite []func()
	mu          sync.Mutex
}

// NewResponseWriter creates a new ResponseWriter.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
	}
}

// OnBeforeWrite registers a hook to run before the first write.
// Hooks are called in registration order when the header is about to go out.
// Session auto-save uses this to persist dirty sessions before the cookie
// header window closes. Hooks registered after the first write never run.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written {
		return
	}
	w.beforeWrite = append(w.beforeWrite, fn)
}

// prepare runs the before-write hooks and sends the header. Every path that
// puts bytes or headers on the wire funnels through here; only the first
// call does anything.
func (w *ResponseWriter) prepare() {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return
	}
	w.written = true
	hooks := w.beforeWrite
	w.beforeWrite = nil
	w.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	w.ResponseWriter.WriteHeader(w.status)
}

// WriteHeader sends an HTTP response header with the provided status code.
// Subsequent calls are ignored.
func (w *ResponseWriter) WriteHeader(code int) {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return
	}
	w.status = code
	w.mu.Unlock()

	w.prepare()
}

// Write writes the data to the connection as part of an HTTP reply.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.prepare()

	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

// ReadFrom hands the body straight to the underlying writer when it supports
// it, which enables sendfile for file-backed sources. The header and hooks
// still go out first.
func (w *ResponseWriter) ReadFrom(src io.Reader) (int64, error) {
	rf, ok := w.ResponseWriter.(io.ReaderFrom)
	if !ok {
		// Masking ReadFrom forces io.Copy into its buffered loop over Write.
		return io.Copy(struct{ io.Writer }{w}, src)
	}

	w.prepare()
	n, err := rf.ReadFrom(src)
	w.size += n
	return n, err
}

// Status returns the HTTP status code of the response.
func (w *ResponseWriter) Status() int {
	return w.status
}

// Size returns the number of bytes written to the response body.
func (w *ResponseWriter) Size() int64 {
	return w.size
}

// Written returns true if the response has been written.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Flush implements the http.Flusher interface. The first flush forces the
// header out, so the before-write hooks run here too.
func (w *ResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		w.prepare()
		flusher.Flush()
	}
}

// Hijack implements the http.Hijacker interface.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Push implements the http.Pusher interface.
func (w *ResponseWriter) Push(target string, opts *http.PushOptions) error {
	if pusher, ok := w.ResponseWriter.(http.Pusher); ok {
		return pusher.Push(target, opts)
	}
	return http.ErrNotSupported
}

// Unwrap returns the underlying ResponseWriter.
// This allows middleware to access the original writer if needed.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
