package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/garrettladley/shopsync/internal/xhttp"
	"github.com/garrettladley/shopsync/internal/xslog"
)

const (
	healthTimeout = 2 * time.Second

	statusOK          = "ok"
	statusUnavailable = "unavailable"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

type Health struct {
	checks map[string]Check
}

func NewHealth(checks map[string]Check) *Health {
	return &Health{checks: checks}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HandleHealth runs every check concurrently and answers 503 if any fails.
func (h *Health) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(h.checks))
		g       errgroup.Group
	)
	for name, check := range h.checks {
		g.Go(func() error {
			err := check(ctx)

			status := statusOK
			if err != nil {
				status = statusUnavailable
				xslog.FromContext(ctx).ErrorContext(ctx, "health check failed",
					xslog.Backend(name),
					xslog.Error(err),
				)
			}

			mu.Lock()
			results[name] = status
			mu.Unlock()
			return err
		})
	}

	if err := g.Wait(); err != nil {
		xhttp.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: statusUnavailable, Checks: results})
		return
	}
	xhttp.WriteOK(w, healthResponse{Status: statusOK, Checks: results})
}
