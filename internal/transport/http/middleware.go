package http

import (
	"log"
	"net/http"
	"time"
)

// RequestLogger logs basic request details and latency.
func RequestLogger(next http.Handler, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Printf(
			"request method=%s path=%s status=%d member=%s duration=%s",
			r.Method,
			r.URL.Path,
			rec.status,
			memberOrDash(r.Header.Get(MemberIDHeader)),
			time.Since(start),
		)
	})
}

// Recover turns a handler panic into a logged 500.
func Recover(next http.Handler, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if v := recover(); v != nil {
				logger.Printf("panic method=%s path=%s: %v", r.Method, r.URL.Path, v)
				if !rec.wroteHeader {
					writeError(rec, http.StatusInternalServerError, codeInternalError, "internal error")
				}
			}
		}()
		next.ServeHTTP(rec, r)
	})
}

func memberOrDash(id string) string {
	if id == "" {
		return "-"
	}
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.status = code
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}
