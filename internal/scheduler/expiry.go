// Package scheduler runs the background sweep that expires pools whose
// deadline passed without a selection.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type expirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

type sweepLocker interface {
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

// ExpirySweeper periodically moves past-deadline ACTIVE pools to
// EXPIRED. A short Redis lock keeps multiple instances from sweeping at
// once; since expiry settles through the same guarded transition as
// selection, an overlapping sweep is wasted work but never a double
// refund.
type ExpirySweeper struct {
	pools  expirer
	lock   sweepLocker
	cron   *cron.Cron
	logger *zap.Logger
	spec   string
}

func NewExpirySweeper(pools expirer, lock sweepLocker, spec string, logger *zap.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		pools:  pools,
		lock:   lock,
		cron:   cron.New(),
		logger: logger,
		spec:   spec,
	}
}

func (s *ExpirySweeper) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("expiry sweeper started", zap.String("spec", s.spec))
	return nil
}

func (s *ExpirySweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *ExpirySweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.lock != nil {
		ok, err := s.lock.SetIfNotExists(ctx, "pools:expiry:lock", "1", 45*time.Second)
		if err != nil || !ok {
			return
		}
	}

	n, err := s.pools.ExpireDue(ctx)
	if err != nil {
		s.logger.Error("expiry sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("expired pools", zap.Int("count", n))
	}
}
