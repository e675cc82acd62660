package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"smartos-inventory/internal/domain"
)

// DefaultExecutable is the ssh client looked up by the exec strategy
const DefaultExecutable = "ssh"

// waitDelay bounds how long output pipes are drained after the client is killed
const waitDelay = 2 * time.Second

// ExecTransport runs commands through an external ssh client
type ExecTransport struct {
	executable string
	spec       domain.ConnectionSpec
	logger     *slog.Logger
}

// NewExecTransport creates a transport that invokes executable
func NewExecTransport(executable string, spec domain.ConnectionSpec, logger *slog.Logger) *ExecTransport {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ExecTransport{executable: executable, spec: spec, logger: logger}
}

// Name returns the strategy identifier
func (t *ExecTransport) Name() string {
	return StrategyExec
}

// Args returns the ssh(1) argument list for command
func (t *ExecTransport) Args(command string) []string {
	args := []string{
		"-o", "BatchMode=yes",
		"-p", strconv.Itoa(t.spec.Port),
	}
	if t.spec.KeyFile != "" && fileExists(t.spec.KeyFile) {
		args = append(args, "-i", t.spec.KeyFile)
	}
	if t.spec.KnownHostsFile != "" {
		args = append(args, "-o", "UserKnownHostsFile="+t.spec.KnownHostsFile)
	}
	if secs := int(t.spec.Timeout.Seconds()); secs > 0 {
		args = append(args, "-o", "ConnectTimeout="+strconv.Itoa(secs))
	}
	return append(args, "--", t.spec.Target(), command)
}

// Execute runs the ssh client and returns its stdout. The process is
// killed if ctx ends first.
func (t *ExecTransport) Execute(ctx context.Context, command string) (string, error) {
	if t.spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.spec.Timeout)
		defer cancel()
	}

	args := t.Args(command)
	t.logger.Debug("running ssh client", "executable", t.executable, "args", args)

	cmd := exec.CommandContext(ctx, t.executable, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			err = fmt.Errorf("%s exited with status %d: %s", filepath.Base(t.executable), exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		} else if ctx.Err() != nil {
			err = fmt.Errorf("%w (%v)", ctx.Err(), err)
		}
		return "", &domain.TransportError{Target: t.spec.Target(), Err: err}
	}

	return stdout.String(), nil
}

// Close is a no-op; each Execute owns its process
func (t *ExecTransport) Close() error {
	return nil
}

// FindSSHExecutable returns the full path of the first executable named
// name, searching the working directory first when checkCwd is set and then
// every PATH entry. A name containing a path separator is checked as is.
func FindSSHExecutable(name string, checkCwd bool) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) {
		if isExecutable(name) {
			return name, nil
		}
		return "", fmt.Errorf("ssh executable %s not found or not executable", name)
	}

	var dirs []string
	if checkCwd {
		if cwd, err := os.Getwd(); err == nil {
			dirs = append(dirs, cwd)
		}
	}
	dirs = append(dirs, filepath.SplitList(os.Getenv("PATH"))...)

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, name)
		if isExecutable(path) {
			return path, nil
		}
	}

	return "", fmt.Errorf("ssh executable %q not found in working directory or PATH", name)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
