package vault

import (
	"context"
	"time"
)

const (
	DefaultDownloadDelay     = 500 * time.Millisecond
	DefaultDeleteConcurrency = 8
)

// Policy sets the concurrency of each bulk operation. Downloads always run
// one at a time with DownloadDelay between items; deletes run in parallel.
type Policy struct {
	DownloadDelay     time.Duration
	DeleteConcurrency int
}

func DefaultPolicy() Policy {
	return Policy{
		DownloadDelay:     DefaultDownloadDelay,
		DeleteConcurrency: DefaultDeleteConcurrency,
	}
}

func (p Policy) normalized() Policy {
	if p.DownloadDelay < 0 {
		p.DownloadDelay = 0
	}
	if p.DeleteConcurrency <= 0 {
		p.DeleteConcurrency = DefaultDeleteConcurrency
	}
	return p
}

// Sleeper waits d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
