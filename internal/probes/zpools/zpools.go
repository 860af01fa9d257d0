// Package zpools provides the ZFS pool health and capacity probe.
package zpools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jandubois/check-zpools/internal/config"
	"github.com/jandubois/check-zpools/internal/probe"
	"github.com/jandubois/check-zpools/internal/zpool"
)

// Name is the probe name.
const Name = "zpools"

const (
	okPrefix    = "ALL ZFS POOLS OK"
	alarmPrefix = "ZFS POOL ALARM:"
	issueSep    = " // "
)

// ErrNoPools is returned when ALL is selected and zpool lists no pools.
var ErrNoPools = errors.New("no ZFS pools found")

// GetDescription returns the probe description.
func GetDescription() probe.Description {
	return probe.Description{
		Name:        Name,
		Description: "Check health, capacity and spare usage of ZFS pools",
		Version:     "1.0.0",
		Arguments: probe.Arguments{
			Required: map[string]probe.ArgumentSpec{
				"pool": {
					Type:        "string",
					Description: "Pool name, or ALL for every pool",
				},
			},
			Optional: map[string]probe.ArgumentSpec{
				"warning": {
					Type:        "number",
					Description: "Warning capacity percentage (requires critical)",
				},
				"critical": {
					Type:        "number",
					Description: "Critical capacity percentage (requires warning)",
				},
				"soft_fail": {
					Type:        "boolean",
					Description: "Exit with the WARNING code on CRITICAL results",
					Default:     false,
				},
			},
		},
	}
}

// Resolve returns the pools to evaluate for the selector. ALL lists every
// pool in zpool order; any other selector is returned as is and checked
// for existence when it is evaluated.
func Resolve(ctx context.Context, src zpool.Source, selector string) ([]string, error) {
	if selector != config.AllPools {
		return []string{selector}, nil
	}
	pools, err := src.ListPools(ctx)
	if err != nil {
		return nil, err
	}
	if len(pools) == 0 {
		return nil, ErrNoPools
	}
	return pools, nil
}

// Aggregate folds the verdicts, in evaluation order, into the check result.
func Aggregate(verdicts []Verdict) *probe.Result {
	if len(verdicts) == 0 {
		return probe.Unknown("%s", ErrNoPools)
	}

	status := probe.StatusOK
	var issues, perfData, names []string
	for _, v := range verdicts {
		status = probe.Worst(status, v.Status)
		issues = append(issues, v.Issues...)
		perfData = append(perfData, v.PerfData())
		names = append(names, v.Pool)
	}

	message := okPrefix + " (" + strings.Join(names, ", ") + ")"
	if status != probe.StatusOK {
		message = alarmPrefix + " " + strings.Join(issues, issueSep)
	}

	return &probe.Result{
		Status:   status,
		Message:  message,
		PerfData: perfData,
	}
}

// Run executes the probe. The first failing query ends the run: a named
// pool that does not exist is CRITICAL, everything else is UNKNOWN.
func Run(ctx context.Context, src zpool.Source, cfg *config.CheckConfig) *probe.Result {
	pools, err := Resolve(ctx, src, cfg.Pool)
	if err != nil {
		logHints(err)
		if errors.Is(err, ErrNoPools) {
			return probe.Unknown("%s", ErrNoPools)
		}
		return probe.Unknown("failed to list pools: %v", err)
	}

	thresholds := cfg.Thresholds()
	verdicts := make([]Verdict, 0, len(pools))
	for _, pool := range pools {
		v, err := Evaluate(ctx, src, pool, thresholds)
		if err != nil {
			logHints(err)
			if errors.Is(err, zpool.ErrPoolNotFound) && !cfg.SelectsAll() {
				return &probe.Result{
					Status:  probe.StatusCritical,
					Message: alarmPrefix + " POOL " + pool + " does not exist",
				}
			}
			return probe.Unknown("%v", err)
		}
		verdicts = append(verdicts, v)
	}

	return Aggregate(verdicts)
}

func logHints(err error) {
	slog.Warn("zpool query failed", "error", err.Error())
	slog.Debug("zpool query failure detail", "error", fmt.Sprintf("%+v", err))
	if hint := errors.FlattenHints(err); hint != "" {
		slog.Warn(hint)
	}
}
