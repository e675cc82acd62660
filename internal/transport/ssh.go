package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"smartos-inventory/internal/domain"
)

// SSHTransport runs commands with the in-process SSH client
type SSHTransport struct {
	spec      domain.ConnectionSpec
	config    *ssh.ClientConfig
	agentConn net.Conn
	logger    *slog.Logger
}

// NewSSHTransport prepares the client configuration. It fails when the
// known_hosts file cannot be read or no authentication method is usable.
func NewSSHTransport(spec domain.ConnectionSpec, logger *slog.Logger) (*SSHTransport, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	t := &SSHTransport{spec: spec, logger: logger}

	config, err := t.buildSSHConfig()
	if err != nil {
		t.Close()
		return nil, err
	}
	t.config = config

	return t, nil
}

// Name returns the strategy identifier
func (t *SSHTransport) Name() string {
	return StrategySSH
}

// buildSSHConfig creates the client config: host key check against the
// trusted store, then the private key and the agent as auth methods
func (t *SSHTransport) buildSSHConfig() (*ssh.ClientConfig, error) {
	if t.spec.User == "" {
		return nil, fmt.Errorf("ssh user not set")
	}
	if t.spec.KnownHostsFile == "" {
		return nil, fmt.Errorf("known_hosts file not set")
	}

	hostKeyCallback, err := knownhosts.New(t.spec.KnownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts: %w", err)
	}

	var auth []ssh.AuthMethod

	signer, err := t.loadKey()
	if err != nil {
		return nil, err
	}
	if signer != nil {
		auth = append(auth, ssh.PublicKeys(signer))
	}

	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		conn, err := net.Dial("unix", sock)
		if err != nil {
			t.logger.Debug("ssh agent unreachable", "socket", sock, "error", err)
		} else {
			t.agentConn = conn
			auth = append(auth, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	if len(auth) == 0 {
		return nil, fmt.Errorf("no usable private key at %q and no ssh agent", t.spec.KeyFile)
	}

	return &ssh.ClientConfig{
		User:            t.spec.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         t.spec.Timeout,
	}, nil
}

// loadKey parses the private key file. A missing file is not an error since
// the agent may still authenticate.
func (t *SSHTransport) loadKey() (ssh.Signer, error) {
	if t.spec.KeyFile == "" {
		return nil, nil
	}

	data, err := os.ReadFile(t.spec.KeyFile)
	if errors.Is(err, os.ErrNotExist) {
		t.logger.Debug("private key not found", "path", t.spec.KeyFile)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	var signer ssh.Signer
	if t.spec.Passphrase != "" {
		// Encrypted key
		signer, err = ssh.ParsePrivateKeyWithPassphrase(data, []byte(t.spec.Passphrase))
	} else {
		// Unencrypted key
		signer, err = ssh.ParsePrivateKey(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key %s: %w", t.spec.KeyFile, err)
	}

	return signer, nil
}

// Execute connects, runs command, and reads stdout until the channel closes.
// The connection is torn down before returning on every path.
func (t *SSHTransport) Execute(ctx context.Context, command string) (string, error) {
	if t.spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.spec.Timeout)
		defer cancel()
	}

	out, err := t.execute(ctx, command)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		return "", &domain.TransportError{Target: t.spec.Target(), Err: err}
	}
	return out, nil
}

func (t *SSHTransport) execute(ctx context.Context, command string) (string, error) {
	client, err := t.connect(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	// Cancelling ctx closes the client, which unblocks Run
	stop := context.AfterFunc(ctx, func() { client.Close() })
	defer stop()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	t.logger.Debug("running remote command", "target", t.spec.Target(), "command", command)
	if err := session.Run(command); err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("remote command exited with status %d: %s", exitErr.ExitStatus(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("command failed: %w", err)
	}

	return stdout.String(), nil
}

// connect establishes the SSH connection, honouring ctx during dial and
// handshake
func (t *SSHTransport) connect(ctx context.Context) (*ssh.Client, error) {
	addr := t.spec.Address()

	dialer := &net.Dialer{
		Timeout: t.spec.Timeout,
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, t.config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection: %w", err)
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// Close releases the agent connection, if any
func (t *SSHTransport) Close() error {
	if t.agentConn == nil {
		return nil
	}
	err := t.agentConn.Close()
	t.agentConn = nil
	return err
}
