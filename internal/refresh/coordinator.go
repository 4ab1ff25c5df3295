// Package refresh drives the external catalog scraper and reloads the catalog
// store once the scraper reports success.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var ErrInFlight = errors.New("refresh already in flight")

// Result is the structured outcome of one scraper invocation.
type Result struct {
	ExitCode int
	Output   string
}

// Runner executes the external refresh process once.
type Runner interface {
	Run(ctx context.Context) (Result, error)
}

// CatalogReloader is the write side of the catalog store.
type CatalogReloader interface {
	Reload(ctx context.Context) error
}

// CommandRunner runs the scraper as a subprocess with a bounded timeout.
// Exit status and combined output come back as a Result; only spawn-level
// failures (binary missing, context cancelled) surface as errors.
type CommandRunner struct {
	name    string
	args    []string
	timeout time.Duration
}

func NewCommandRunner(name string, args []string, timeout time.Duration) *CommandRunner {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &CommandRunner{name: name, args: args, timeout: timeout}
}

func (r *CommandRunner) Run(ctx context.Context) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.name, r.args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{ExitCode: exitErr.ExitCode(), Output: string(out)}, nil
		}
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("refresh process timed out: %w", ctx.Err())
		}
		return Result{}, fmt.Errorf("failed to run refresh process: %w", err)
	}

	return Result{ExitCode: 0, Output: string(out)}, nil
}

// Coordinator serializes refresh requests: a second Run while one is in
// flight is rejected with ErrInFlight, never queued, so two reloads can't
// race to install a snapshot.
type Coordinator struct {
	runner Runner
	store  CatalogReloader
	busy   atomic.Bool
}

func NewCoordinator(runner Runner, store CatalogReloader) *Coordinator {
	return &Coordinator{runner: runner, store: store}
}

// Run invokes the scraper and, only on exit code 0, reloads the catalog.
// Any failure leaves the active snapshot untouched.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.busy.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	defer c.busy.Store(false)

	runID := uuid.NewString()
	log.Printf("refresh %s: starting scraper", runID)

	result, err := c.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", runID, err)
	}
	if result.ExitCode != 0 {
		log.Printf("refresh %s: scraper exited with %d: %s", runID, result.ExitCode, result.Output)
		return fmt.Errorf("refresh %s: scraper exited with code %d", runID, result.ExitCode)
	}

	if err := c.store.Reload(ctx); err != nil {
		return fmt.Errorf("refresh %s: %w", runID, err)
	}

	log.Printf("refresh %s: catalog reloaded", runID)
	return nil
}
