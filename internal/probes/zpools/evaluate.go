package zpools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jandubois/check-zpools/internal/config"
	"github.com/jandubois/check-zpools/internal/probe"
	"github.com/jandubois/check-zpools/internal/zpool"
)

// healthOnline is the only health label that does not raise an alarm.
const healthOnline = "ONLINE"

// Snapshot is the observed state of one pool.
type Snapshot struct {
	Health      string
	Capacity    zpool.Capacity
	SparesInUse int
}

// Verdict is the evaluated state of one pool.
type Verdict struct {
	Pool     string
	Status   probe.Status
	Issues   []string
	Capacity zpool.Capacity
}

// PerfData returns the performance data token for the pool.
func (v Verdict) PerfData() string {
	return fmt.Sprintf("%s=%d%%", v.Pool, v.Capacity.Percent)
}

// Observe queries health, capacity and spare usage of a pool.
// The first failing query aborts and its error is returned unchanged.
func Observe(ctx context.Context, src zpool.Source, pool string) (Snapshot, error) {
	health, err := src.Health(ctx, pool)
	if err != nil {
		return Snapshot{}, err
	}
	capacity, err := src.Capacity(ctx, pool)
	if err != nil {
		return Snapshot{}, err
	}
	spares, err := src.SparesInUse(ctx, pool)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Health: health, Capacity: capacity, SparesInUse: spares}, nil
}

// Judge derives the verdict for a pool. Every matching rule adds an issue;
// the pool status is the worst status any rule implies.
func Judge(pool string, snap Snapshot, thresholds *config.Thresholds) Verdict {
	v := Verdict{
		Pool:     pool,
		Status:   probe.StatusOK,
		Capacity: snap.Capacity,
	}

	if snap.Health != healthOnline {
		v.Issues = append(v.Issues, fmt.Sprintf("POOL %s health is %s", pool, snap.Health))
		v.Status = probe.StatusCritical
	}

	if thresholds != nil {
		used := snap.Capacity.Percent
		switch {
		case used >= thresholds.Critical:
			v.Issues = append(v.Issues, fmt.Sprintf("POOL %s usage is CRITICAL (%d%%)", pool, used))
			v.Status = probe.StatusCritical
		case used >= thresholds.Warning:
			v.Issues = append(v.Issues, fmt.Sprintf("POOL %s usage is WARNING (%d%%)", pool, used))
			v.Status = probe.Worst(v.Status, probe.StatusWarning)
		}
	}

	// A spare in use means a failed disk was already replaced: worth a
	// warning, never more on its own.
	if snap.SparesInUse > 0 {
		v.Issues = append(v.Issues, fmt.Sprintf("POOL %s has %d spare(s) in use", pool, snap.SparesInUse))
		v.Status = probe.Worst(v.Status, probe.StatusWarning)
	}

	return v
}

// Evaluate observes and judges a single pool.
func Evaluate(ctx context.Context, src zpool.Source, pool string, thresholds *config.Thresholds) (Verdict, error) {
	snap, err := Observe(ctx, src, pool)
	if err != nil {
		return Verdict{}, err
	}
	v := Judge(pool, snap, thresholds)

	slog.Debug("pool evaluated",
		"pool", pool,
		"health", snap.Health,
		"capacity", snap.Capacity.String(),
		"spares_in_use", snap.SparesInUse,
		"status", v.Status,
	)
	return v, nil
}
