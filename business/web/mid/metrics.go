package mid

import (
	"context"
	"net/http"

	"github.com/R-Song/conflux-go/business/sys/metrics"
	"github.com/R-Song/conflux-go/foundation/web"
)

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			// Add the metrics value into the context for metric gathering.
			ctx = metrics.Set(ctx)

			// Call the next handler.
			err := handler(ctx, w, r)

			// Handle updating the metrics that can be handled here.
			metrics.AddRequests(ctx)
			metrics.AddGoroutines(ctx)

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
