package http

import (
	"context"
	stdhttp "net/http"
	"time"
)

const healthTimeout = 2 * time.Second

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandleHealth reports liveness. When db is set, an unreachable database
// turns the answer into 503.
func HandleHealth(db Pinger) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		if r.Method != stdhttp.MethodGet && r.Method != stdhttp.MethodHead {
			writeError(w, stdhttp.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		status, body := stdhttp.StatusOK, "ok"
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				status, body = stdhttp.StatusServiceUnavailable, "database unavailable"
			}
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
