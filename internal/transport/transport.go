// Package transport runs the vmadm query on the SmartOS global zone.
//
// Two strategies share one interface: SSHTransport speaks SSH in-process
// with golang.org/x/crypto/ssh, ExecTransport shells out to an ssh(1)
// binary. Select picks one at startup. Every failure is reported as a
// domain.TransportError.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"smartos-inventory/internal/domain"
)

// Transport executes one command on the remote host and returns its stdout
type Transport interface {
	// Name returns the strategy identifier
	Name() string

	// Execute runs command and returns its standard output. A non-zero
	// remote exit status is an error.
	Execute(ctx context.Context, command string) (string, error)

	// Close releases anything held between calls
	Close() error
}

// Strategy names accepted by Select
const (
	StrategyAuto = "auto"
	StrategySSH  = "ssh"
	StrategyExec = "exec"
)

// Options selects and configures a transport
type Options struct {
	Strategy string
	// Executable is the ssh client name or path for the exec strategy
	Executable string
	// SearchCwd looks for the ssh client in the working directory before PATH
	SearchCwd bool
	Logger    *slog.Logger
}

// Select builds the transport for spec. The auto strategy prefers the
// in-process client and falls back to the ssh binary when no credentials
// or trusted host keys are usable in-process.
func Select(spec domain.ConnectionSpec, opts Options) (Transport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	switch opts.Strategy {
	case StrategySSH:
		t, err := NewSSHTransport(spec, logger)
		if err != nil {
			return nil, &domain.TransportError{Target: spec.Target(), Err: err}
		}
		return t, nil

	case StrategyExec:
		t, err := newExecFromOptions(spec, opts, logger)
		if err != nil {
			return nil, &domain.TransportError{Target: spec.Target(), Err: err}
		}
		return t, nil

	case StrategyAuto, "":
		t, sshErr := NewSSHTransport(spec, logger)
		if sshErr == nil {
			return t, nil
		}
		logger.Debug("in-process ssh unavailable, trying ssh binary", "error", sshErr)

		e, execErr := newExecFromOptions(spec, opts, logger)
		if execErr == nil {
			return e, nil
		}
		return nil, &domain.TransportError{Target: spec.Target(), Err: errors.Join(sshErr, execErr)}

	default:
		return nil, &domain.TransportError{Target: spec.Target(), Err: fmt.Errorf("unknown transport strategy %q", opts.Strategy)}
	}
}

func newExecFromOptions(spec domain.ConnectionSpec, opts Options, logger *slog.Logger) (*ExecTransport, error) {
	name := opts.Executable
	if name == "" {
		name = DefaultExecutable
	}
	path, err := FindSSHExecutable(name, opts.SearchCwd)
	if err != nil {
		return nil, err
	}
	return NewExecTransport(path, spec, logger), nil
}
