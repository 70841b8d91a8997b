package implementation

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/jt828/promtext/pkg/observability"
)

// StartHTTPServer serves h on lis in the background. Serve errors other
// than a clean shutdown are logged.
func StartHTTPServer(
	lis net.Listener,
	h http.Handler,
	log observability.Logger,
) *http.Server {
	srv := &http.Server{
		Addr:              lis.Addr().String(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", observability.String("addr", srv.Addr), observability.Err(err))
		}
	}()

	return srv
}
