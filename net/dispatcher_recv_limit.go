package net

import (
	"context"
	"sync/atomic"

	"go.uber.org/ratelimit"
	"golang.org/x/time/rate"
)

// DispatcherRecvLimiter token bucket limiter applied to every received frame.
type DispatcherRecvLimiter struct {
	limiter atomic.Pointer[rate.Limiter]
}

// NewTokenRecvLimiter creates a limiter allowing limit frames per second with burst.
func NewTokenRecvLimiter(limit int, burst int) *DispatcherRecvLimiter {
	self := &DispatcherRecvLimiter{}
	self.limiter.Store(rate.NewLimiter(rate.Limit(limit), burst))
	return self
}

// Take waits for a token.
func (l *DispatcherRecvLimiter) Take() error {
	return l.limiter.Load().Wait(context.Background())
}

// Allow takes a token if one is available without waiting.
func (l *DispatcherRecvLimiter) Allow() bool {
	return l.limiter.Load().Allow()
}

// Reload swaps in a limiter with the new rate.
func (l *DispatcherRecvLimiter) Reload(limit int, burst int) {
	l.limiter.Store(rate.NewLimiter(rate.Limit(limit), burst))
}

func (l *DispatcherRecvLimiter) recvLimiterFilter(d *Delivery, f DispatcherFilterHandleFunc) error {
	if err := l.Take(); err != nil {
		return err
	}
	return f(d)
}

// FunnelRecvLimiter spaces frames evenly at a fixed rate. A limit of zero
// disables it.
type FunnelRecvLimiter struct {
	limiter atomic.Pointer[ratelimit.Limiter]
}

// NewFunnelRecvLimiter creates a funnel letting limit frames per second through.
func NewFunnelRecvLimiter(limit int) *FunnelRecvLimiter {
	self := &FunnelRecvLimiter{}
	self.Reload(limit)
	return self
}

// Take blocks until the next frame may pass.
func (l *FunnelRecvLimiter) Take() {
	if limiter := l.limiter.Load(); limiter != nil {
		_ = (*limiter).Take()
	}
}

// Reload replaces the rate. Zero or less disables the funnel.
func (l *FunnelRecvLimiter) Reload(limit int) {
	if limit <= 0 {
		l.limiter.Store(nil)
		return
	}
	limiter := ratelimit.New(limit)
	l.limiter.Store(&limiter)
}

// Enabled reports whether the funnel limits anything.
func (l *FunnelRecvLimiter) Enabled() bool {
	return l.limiter.Load() != nil
}

func (l *FunnelRecvLimiter) funnelFilter(d *Delivery, f DispatcherFilterHandleFunc) error {
	l.Take()
	return f(d)
}
