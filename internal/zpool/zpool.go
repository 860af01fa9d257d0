// Package zpool queries ZFS pool state through the zpool(8) command.
package zpool

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	units "github.com/docker/go-units"
)

var (
	// ErrToolUnavailable is returned when the zpool binary cannot be found.
	ErrToolUnavailable = errors.New("command not found")
	// ErrQueryFailed marks any failed or unparsable zpool invocation.
	ErrQueryFailed = errors.New("zpool query failed")
	// ErrPoolNotFound is returned when zpool reports that the pool does not exist.
	ErrPoolNotFound = errors.New("no such pool")
)

// Source provides the per-pool readings the check evaluates.
type Source interface {
	ListPools(ctx context.Context) ([]string, error)
	Health(ctx context.Context, pool string) (string, error)
	Capacity(ctx context.Context, pool string) (Capacity, error)
	SparesInUse(ctx context.Context, pool string) (int, error)
}

// Capacity is the space usage of a pool.
type Capacity struct {
	Percent   int
	Size      int64
	Allocated int64
}

func (c Capacity) String() string {
	return fmt.Sprintf("%d%% (%s of %s)", c.Percent, units.BytesSize(float64(c.Allocated)), units.BytesSize(float64(c.Size)))
}

// Client implements Source on top of the zpool command.
type Client struct {
	zpool  string
	runner Runner
	logger *slog.Logger
}

// NewClient creates a Client running the given zpool binary.
func NewClient(zpoolPath string, runner Runner, logger *slog.Logger) *Client {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{zpool: zpoolPath, runner: runner, logger: logger}
}

// ListPools returns pool names in the order zpool lists them.
func (c *Client) ListPools(ctx context.Context) ([]string, error) {
	out, err := c.query(ctx, "", "list", "-H", "-o", "name")
	if err != nil {
		return nil, err
	}
	return parsePoolNames(out), nil
}

// Health returns the pool health label, e.g. ONLINE or DEGRADED.
func (c *Client) Health(ctx context.Context, pool string) (string, error) {
	out, err := c.query(ctx, pool, "list", "-H", "-o", "health", pool)
	if err != nil {
		return "", err
	}
	health := strings.TrimSpace(out)
	if health == "" {
		return "", errors.Mark(errors.Newf("empty health for pool %s", pool), ErrQueryFailed)
	}
	return health, nil
}

// Capacity returns the used capacity of the pool.
func (c *Client) Capacity(ctx context.Context, pool string) (Capacity, error) {
	out, err := c.query(ctx, pool, "list", "-Hp", "-o", "capacity,size,allocated", pool)
	if err != nil {
		return Capacity{}, err
	}
	capacity, err := parseCapacity(out)
	if err != nil {
		return Capacity{}, errors.Mark(errors.Wrapf(err, "pool %s", pool), ErrQueryFailed)
	}
	return capacity, nil
}

// SparesInUse returns the number of hot spares currently replacing a device.
func (c *Client) SparesInUse(ctx context.Context, pool string) (int, error) {
	out, err := c.query(ctx, pool, "status", pool)
	if err != nil {
		return 0, err
	}
	return countSparesInUse(out), nil
}

func (c *Client) query(ctx context.Context, pool string, args ...string) (string, error) {
	c.logger.Debug("running zpool", "path", c.zpool, "args", strings.Join(args, " "))

	out, err := c.runner.Run(ctx, c.zpool, args...)
	if err == nil {
		return out, nil
	}
	if pool != "" && strings.Contains(err.Error(), "no such pool") {
		return "", errors.Wrapf(ErrPoolNotFound, "pool %s", pool)
	}
	c.logger.Debug("zpool failed", "args", strings.Join(args, " "), "error", err)
	return "", errors.Mark(errors.Wrapf(err, "zpool %s", strings.Join(args, " ")), ErrQueryFailed)
}

func parsePoolNames(output string) []string {
	var names []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == "no pools available" {
			continue
		}
		names = append(names, strings.Fields(line)[0])
	}
	return names
}

// parseCapacity reads "capacity size allocated" as printed by zpool list -Hp.
func parseCapacity(output string) (Capacity, error) {
	fields := strings.Fields(output)
	if len(fields) < 1 {
		return Capacity{}, errors.New("empty capacity output")
	}

	percent, err := strconv.Atoi(strings.TrimSuffix(fields[0], "%"))
	if err != nil {
		return Capacity{}, errors.Wrapf(err, "invalid capacity %q", fields[0])
	}
	if percent < 0 || percent > 100 {
		return Capacity{}, errors.Newf("capacity %d%% out of range", percent)
	}

	c := Capacity{Percent: percent}
	if len(fields) >= 3 {
		if c.Size, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
			return Capacity{}, errors.Wrapf(err, "invalid size %q", fields[1])
		}
		if c.Allocated, err = strconv.ParseInt(fields[2], 10, 64); err != nil {
			return Capacity{}, errors.Wrapf(err, "invalid allocated size %q", fields[2])
		}
	}
	return c, nil
}

// countSparesInUse counts device lines in zpool status output whose state is INUSE.
func countSparesInUse(output string) int {
	count := 0
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "INUSE" {
			count++
		}
	}
	return count
}
