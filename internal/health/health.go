// Package health provides toolchain health checks for provecase. It verifies that
// gnatprove and each prover backend are reachable, and returns a structured report
// used by the 'provecase doctor' command.
package health

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
	"golang.org/x/sync/errgroup"

	"github.com/ariel-frischer/provecase/internal/proof"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Skipped bool
	Message string
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult
	Passed bool
}

// Checker runs health checks. LookPath is exec.LookPath unless replaced in tests.
type Checker struct {
	LookPath func(file string) (string, error)
	// MaxParallel bounds the number of concurrent lookups.
	MaxParallel int
}

// NewChecker returns a Checker using the real PATH.
func NewChecker() *Checker {
	return &Checker{LookPath: exec.LookPath, MaxParallel: 4}
}

// RunHealthChecks checks the gnatprove command and every prover binary.
// Results keep the order: gnatprove first, then provers as given. When the
// command runs gnatprove through a wrapper such as docker, the provers live
// wherever the wrapper puts them and the host PATH is not searched for them.
func (c *Checker) RunHealthChecks(ctx context.Context, gnatproveCmd string, provers []string) *HealthReport {
	report := &HealthReport{
		Checks: make([]CheckResult, 1+len(provers)),
		Passed: true,
	}

	g, ctx := errgroup.WithContext(ctx)
	if c.MaxParallel > 0 {
		g.SetLimit(c.MaxParallel)
	}

	g.Go(func() error {
		report.Checks[0] = c.checkGnatprove(ctx, gnatproveCmd)
		return nil
	})
	wrapper := wrapperOf(gnatproveCmd)
	for i, name := range provers {
		g.Go(func() error {
			report.Checks[i+1] = c.checkProver(ctx, name, wrapper)
			return nil
		})
	}
	_ = g.Wait()

	for _, check := range report.Checks {
		if !check.Passed {
			report.Passed = false
			break
		}
	}
	return report
}

// checkGnatprove resolves the executable of the gnatprove command prefix.
func (c *Checker) checkGnatprove(ctx context.Context, command string) CheckResult {
	result := CheckResult{Name: "gnatprove"}
	parts, err := shlex.Split(command)
	if err != nil || len(parts) == 0 {
		result.Message = fmt.Sprintf("invalid gnatprove_cmd %q", command)
		return result
	}
	return c.lookup(ctx, result, parts[0])
}

// checkProver resolves the binary of a prover backend. Behind a wrapper only
// the name is checked.
func (c *Checker) checkProver(ctx context.Context, name, wrapper string) CheckResult {
	result := CheckResult{Name: name}
	if _, err := proof.ParseProver(name); err != nil {
		result.Message = err.Error()
		return result
	}
	if wrapper != "" {
		result.Passed = true
		result.Skipped = true
		result.Message = fmt.Sprintf("not checked, gnatprove runs through %s", wrapper)
		return result
	}
	return c.lookup(ctx, result, proof.Executable(name))
}

// wrapperOf returns the first word of command when it is not gnatprove itself.
func wrapperOf(command string) string {
	parts, err := shlex.Split(command)
	if err != nil || len(parts) == 0 {
		return ""
	}
	if strings.TrimSuffix(filepath.Base(parts[0]), ".exe") == "gnatprove" {
		return ""
	}
	return parts[0]
}

func (c *Checker) lookup(ctx context.Context, result CheckResult, file string) CheckResult {
	if err := ctx.Err(); err != nil {
		result.Message = err.Error()
		return result
	}
	path, err := c.LookPath(file)
	if err != nil {
		result.Message = fmt.Sprintf("%s not found in PATH", file)
		return result
	}
	result.Passed = true
	result.Message = fmt.Sprintf("found at %s", path)
	return result
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	var sb strings.Builder
	for _, check := range report.Checks {
		symbol := "✗"
		switch {
		case check.Skipped:
			symbol = "-"
		case check.Passed:
			symbol = "✓"
		}
		fmt.Fprintf(&sb, "%s %s: %s\n", symbol, check.Name, check.Message)
	}
	return sb.String()
}
