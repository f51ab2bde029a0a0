package middleware

import (
	"log"
	"net/http"
	"time"
)

// loggedResponse captures status and body size as the handler writes.
type loggedResponse struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (lr *loggedResponse) WriteHeader(code int) {
	lr.status = code
	lr.ResponseWriter.WriteHeader(code)
}

func (lr *loggedResponse) Write(b []byte) (int, error) {
	n, err := lr.ResponseWriter.Write(b)
	lr.bytes += int64(n)
	return n, err
}

// LoggingMiddleware logs one key=value line per request. Generation
// endpoints can run for tens of seconds against the LLM, so duration is the
// field worth watching.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lr := &loggedResponse{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(lr, r)
		log.Printf("method=%s path=%s status=%d duration=%s bytes=%d ip=%s",
			r.Method, r.URL.Path, lr.status, time.Since(start), lr.bytes, r.RemoteAddr)
	})
}
