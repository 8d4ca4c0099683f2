// Package clock keeps the local notion of time aligned with the remote
// service's clock.
//
// A Synchronizer caches the signed difference between remote and local time
// after a single remote query. It is meant to be created once per process and
// shared by every authenticator that needs authoritative time.
package clock

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// TimeSource reports the remote service's current Unix time in seconds.
// A zero value or a non-nil error indicate the time is unavailable.
type TimeSource interface {
	FetchServerTime(ctx context.Context) (uint32, error)
}

// TimeSourceFunc adapts a function to the TimeSource interface.
type TimeSourceFunc func(ctx context.Context) (uint32, error)

// FetchServerTime calls f(ctx).
func (f TimeSourceFunc) FetchServerTime(ctx context.Context) (uint32, error) {
	return f(ctx)
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger used for synchronization diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNow overrides the local clock. Intended for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Synchronizer) {
		if now != nil {
			s.now = now
		}
	}
}

// Synchronizer maintains a cached offset between remote and local time.
// It is safe for concurrent use.
type Synchronizer struct {
	source TimeSource
	logger *zap.Logger
	now    func() time.Time

	// offset is remote minus local seconds; zero means not yet known.
	offset atomic.Int64
	// mu serializes remote queries while the offset is unknown.
	mu sync.Mutex
}

// NewSynchronizer returns a Synchronizer that queries source on demand.
func NewSynchronizer(source TimeSource, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		source: source,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Time returns the current authoritative Unix time.
//
// When the offset is cached this never blocks. Otherwise at most one caller
// queries the time source; concurrent callers wait for it and reuse the
// result. If the query fails the local time is returned uncorrected, and if
// no time source is configured zero is returned. Callers must treat zero as
// unknown.
func (s *Synchronizer) Time(ctx context.Context) uint32 {
	if s == nil {
		return 0
	}
	if off := s.offset.Load(); off != 0 {
		return s.at(off)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if off := s.offset.Load(); off != 0 {
		return s.at(off)
	}
	if s.source == nil {
		s.logger.Warn("no time source configured")
		return 0
	}

	if ctx == nil {
		ctx = context.Background()
	}
	remote, err := s.source.FetchServerTime(ctx)
	local := s.now().Unix()
	switch {
	case err != nil:
		s.logger.Warn("failed to query server time", zap.Error(err))
	case remote == 0:
		s.logger.Warn("server returned zero time")
	default:
		off := int64(remote) - local
		if off > math.MaxInt16 || off < math.MinInt16 {
			s.logger.Warn("clock skew exceeds expected range",
				zap.Int64("offset_seconds", off))
		}
		s.offset.Store(off)
		s.logger.Debug("clock synchronized", zap.Int64("offset_seconds", off))
	}

	return s.at(s.offset.Load())
}

// Offset returns the cached offset in seconds, or zero if unknown.
func (s *Synchronizer) Offset() int64 {
	if s == nil {
		return 0
	}
	return s.offset.Load()
}

// Reset discards the cached offset so the next call to Time queries the
// time source again.
func (s *Synchronizer) Reset() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.offset.Store(0)
	s.mu.Unlock()
}

func (s *Synchronizer) at(off int64) uint32 {
	t := s.now().Unix() + off
	if t <= 0 || t > math.MaxUint32 {
		return 0
	}
	return uint32(t)
}
