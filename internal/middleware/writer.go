package middleware

import "net/http"

// trackingWriter records the response status and whether anything has been
// sent to the client yet.
type trackingWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func newTrackingWriter(w http.ResponseWriter) *trackingWriter {
	if tw, ok := w.(*trackingWriter); ok {
		return tw
	}
	return &trackingWriter{ResponseWriter: w, status: http.StatusOK}
}

func (tw *trackingWriter) WriteHeader(code int) {
	if !tw.wroteHeader {
		tw.status = code
		tw.wroteHeader = true
	}
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *trackingWriter) Write(b []byte) (int, error) {
	tw.wroteHeader = true
	return tw.ResponseWriter.Write(b)
}

func (tw *trackingWriter) Unwrap() http.ResponseWriter {
	return tw.ResponseWriter
}
