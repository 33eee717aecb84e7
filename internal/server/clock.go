package server

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// defaultTickInterval is how often the clock advances the play-time counter.
const defaultTickInterval = time.Second

// Clock drives the game store's time-based duties from a single goroutine:
// it advances the play-time counter every tick, writes the autosave on a
// coarser interval, and writes one final autosave on shutdown. It implements
// Service so the lifecycle can own it.
type Clock struct {
	tickInterval     time.Duration
	autosaveInterval time.Duration

	// tick advances the store's play-time clock.
	tick func(time.Duration)
	// autosave writes the autosave subset; errors are logged, not fatal.
	autosave func() error

	logger *zap.Logger

	done chan struct{}
	once sync.Once
}

// NewClock creates a stopped clock.
//
// Precondition: tick and autosave must not be nil; an autosaveInterval of 0
// disables autosaving. logger may be nil.
func NewClock(autosaveInterval time.Duration, tick func(time.Duration), autosave func() error, logger *zap.Logger) *Clock {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Clock{
		tickInterval:     defaultTickInterval,
		autosaveInterval: autosaveInterval,
		tick:             tick,
		autosave:         autosave,
		logger:           logger,
		done:             make(chan struct{}),
	}
}

// Start runs the clock until Stop is called.
//
// Postcondition: Blocks for the clock's lifetime and always returns nil.
func (c *Clock) Start() error {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	var autosaveC <-chan time.Time
	if c.autosaveInterval > 0 {
		autosaveTicker := time.NewTicker(c.autosaveInterval)
		defer autosaveTicker.Stop()
		autosaveC = autosaveTicker.C
	}

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			c.tick(now.Sub(last))
			last = now
		case <-autosaveC:
			if err := c.autosave(); err != nil {
				c.logger.Warn("autosave failed", zap.Error(err))
			} else {
				c.logger.Debug("autosave written")
			}
		case <-c.done:
			// A parting autosave so a shutdown mid-interval loses nothing.
			if c.autosaveInterval > 0 {
				if err := c.autosave(); err != nil {
					c.logger.Warn("shutdown autosave failed", zap.Error(err))
				}
			}
			return nil
		}
	}
}

// Stop halts the clock. Idempotent.
func (c *Clock) Stop() {
	c.once.Do(func() { close(c.done) })
}
