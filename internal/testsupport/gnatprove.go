// Package testsupport binds proof.Prover to the gnatprove command line tool.
// It turns a proof.Config into gnatprove arguments, runs the tool, and reports
// a non-zero exit as a *ProofError.
package testsupport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/shlex"

	"github.com/ariel-frischer/provecase/internal/proof"
)

// DefaultCommand is used when Options.Command is empty.
const DefaultCommand = "gnatprove"

// DefaultProjectFile is used when Options.ProjectFile is empty.
const DefaultProjectFile = "test.gpr"

// waitDelay bounds how long Wait blocks on output after gnatprove is killed.
const waitDelay = 2 * time.Second

// Options configures how gnatprove is invoked.
type Options struct {
	// Command is the command prefix, split shell-style.
	// Example: "docker run --rm -v .:/src spark gnatprove"
	Command string
	// ProjectFile is passed with -P.
	ProjectFile string
	// WorkDir is the working directory of the process (empty = current).
	WorkDir string
	// Timeout bounds a single run (0 = no timeout).
	Timeout time.Duration
	// Env holds extra environment variables appended to os.Environ().
	Env map[string]string
	// Stdout and Stderr receive the process output. When nil, the output is
	// captured and stderr is attached to a *ProofError on failure.
	Stdout io.Writer
	Stderr io.Writer
	// Logger receives debug information. Nil disables logging.
	Logger *log.Logger
}

// GnatProve implements proof.Prover by running gnatprove.
type GnatProve struct {
	opts Options
}

// New creates a GnatProve, filling defaults for empty fields.
func New(opts Options) *GnatProve {
	if strings.TrimSpace(opts.Command) == "" {
		opts.Command = DefaultCommand
	}
	if opts.ProjectFile == "" {
		opts.ProjectFile = DefaultProjectFile
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &GnatProve{opts: opts}
}

// BuildArgs returns the gnatprove arguments for cfg, excluding the command prefix.
func (g *GnatProve) BuildArgs(cfg proof.Config) []string {
	args := []string{
		"-P", g.opts.ProjectFile,
		"--quiet",
		"--level=" + strconv.Itoa(cfg.Level),
		"-j" + strconv.Itoa(cfg.Procs),
		"--prover=" + strings.Join(cfg.Provers, ","),
	}
	if cfg.Replay {
		args = append(args, "--replay")
	}
	return args
}

// BuildCommand validates cfg and constructs the exec.Cmd that would run it.
func (g *GnatProve) BuildCommand(cfg proof.Config) (*exec.Cmd, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prefix, err := shlex.Split(g.opts.Command)
	if err != nil {
		return nil, fmt.Errorf("parsing gnatprove command %q: %w", g.opts.Command, err)
	}
	if len(prefix) == 0 {
		return nil, fmt.Errorf("gnatprove command %q produces no executable", g.opts.Command)
	}

	args := append(prefix[1:], g.BuildArgs(cfg)...)
	cmd := exec.Command(prefix[0], args...)
	g.configureCmd(cmd)
	return cmd, nil
}

// configureCmd sets working directory and environment on the command.
func (g *GnatProve) configureCmd(cmd *exec.Cmd) {
	if g.opts.WorkDir != "" {
		cmd.Dir = g.opts.WorkDir
	}
	// Provers spawned by gnatprove can outlive a killed parent and hold the
	// output pipes open.
	cmd.WaitDelay = waitDelay
	cmd.Env = os.Environ()
	for k, v := range g.opts.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
}

// ProveAll runs gnatprove once with cfg and blocks until it exits.
func (g *GnatProve) ProveAll(ctx context.Context, cfg proof.Config) error {
	cmd, err := g.BuildCommand(cfg)
	if err != nil {
		return err
	}
	g.opts.Logger.Debug("invoking gnatprove", "mode", cfg.Mode(), "argv", cmd.Args)
	return g.runCommand(ctx, cmd, cfg.Mode())
}

// runCommand executes the command and maps its outcome to an error.
func (g *GnatProve) runCommand(ctx context.Context, cmd *exec.Cmd, mode string) error {
	ctx, cancel := g.applyTimeout(ctx)
	defer cancel()

	var stderrBuf bytes.Buffer
	cmd.Stdout = g.opts.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = io.Discard
	}
	cmd.Stderr = g.opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = &stderrBuf
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting gnatprove: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	start := time.Now()
	var err error
	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return fmt.Errorf("running gnatprove (%s): %w", mode, ctx.Err())
	case err = <-done:
	}
	g.opts.Logger.Debug("gnatprove finished", "mode", mode, "duration", time.Since(start))

	if err == nil {
		return nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return &ProofError{
			Mode:     mode,
			ExitCode: exitErr.ExitCode(),
			Output:   strings.TrimSpace(stderrBuf.String()),
		}
	}
	return fmt.Errorf("running gnatprove (%s): %w", mode, err)
}

// applyTimeout returns a context with timeout if Options.Timeout is set.
func (g *GnatProve) applyTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.opts.Timeout > 0 {
		return context.WithTimeout(ctx, g.opts.Timeout)
	}
	return ctx, func() {}
}
