package bootstrap

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	"github.com/jt828/promtext/pkg/observability"
	"github.com/jt828/promtext/pkg/retry"
	retryImpl "github.com/jt828/promtext/pkg/retry/implementation"
)

// DefaultListenRetry waits out a previous instance still holding the port
// during a rolling restart.
func DefaultListenRetry() retry.Retry {
	return retryImpl.NewRetry(5,
		retry.WithInterval(200*time.Millisecond),
		retry.WithMaxInterval(2*time.Second),
		retry.WithJitterPercent(10),
		retry.WithRetryable(func(err error) bool {
			return errors.Is(err, syscall.EADDRINUSE)
		}),
	)
}

// Listen opens a TCP listener on addr, retrying while the address is in use.
func Listen(ctx context.Context, r retry.Retry, addr string, log observability.Logger) (net.Listener, error) {
	var lc net.ListenConfig
	var lis net.Listener
	err := r.Execute(ctx, func() error {
		var err error
		lis, err = lc.Listen(ctx, "tcp", addr)
		if err != nil {
			log.Warn("listen failed", observability.String("addr", addr), observability.Err(err))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return lis, nil
}
