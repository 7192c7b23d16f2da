package core

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/coregx/sqlplate/internal/logger"
	"github.com/coregx/sqlplate/internal/util"
)

// pingTimeout bounds a single health check ping.
const pingTimeout = 5 * time.Second

// HealthStatus is a snapshot of the most recent background health check.
type HealthStatus struct {
	// Enabled reports whether background health checking is running.
	Enabled bool
	// Healthy reports whether the last ping succeeded. False until the
	// first ping completes.
	Healthy bool
	// LastPing is the time of the most recent ping, zero before the first.
	LastPing time.Time
	// Err is the error from the most recent ping, nil on success.
	Err error
}

// healthChecker performs periodic health checks on database connections.
// It pings the database at regular intervals to detect dead connections early.
type healthChecker struct {
	db       *sql.DB
	logger   logger.Logger
	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup

	mu       sync.RWMutex
	pinged   bool
	lastErr  error
	lastPing time.Time
}

// newHealthChecker creates a new health checker that pings the database at the specified interval.
func newHealthChecker(db *sql.DB, log logger.Logger, interval time.Duration) *healthChecker {
	return &healthChecker{
		db:       db,
		logger:   log,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// start begins the health check loop in a background goroutine.
func (h *healthChecker) start() {
	h.wg.Add(1)
	go h.run()
}

// run is the main health check loop.
func (h *healthChecker) run() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.ping()
		case <-h.stop:
			return
		}
	}
}

// ping performs a single health check.
func (h *healthChecker) ping() {
	ctx, cancel := util.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	err := h.db.PingContext(ctx)

	h.mu.Lock()
	h.pinged = true
	h.lastErr = err
	h.lastPing = time.Now()
	h.mu.Unlock()

	if err != nil {
		h.logger.Warn("database health check failed",
			"error", err,
			"interval", h.interval)
	} else {
		h.logger.Debug("database health check passed",
			"interval", h.interval)
	}
}

// shutdown halts the health checker and waits for it to finish.
func (h *healthChecker) shutdown() {
	close(h.stop)
	h.wg.Wait()
}

// status returns a snapshot of the most recent health check.
func (h *healthChecker) status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HealthStatus{
		Enabled:  true,
		Healthy:  h.pinged && h.lastErr == nil,
		LastPing: h.lastPing,
		Err:      h.lastErr,
	}
}
