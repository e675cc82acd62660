package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup writes a fake ssh client that prints payload and a config file
// forcing the exec transport through it
func setup(t *testing.T, payload string, exit int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	dir := t.TempDir()

	payloadFile := filepath.Join(dir, "payload.json")
	require.NoError(t, os.WriteFile(payloadFile, []byte(payload), 0o644))

	ssh := filepath.Join(dir, "fake-ssh")
	script := "#!/bin/sh\ncat '" + payloadFile + "'\nexit " + strconv.Itoa(exit) + "\n"
	require.NoError(t, os.WriteFile(ssh, []byte(script), 0o755))

	cfg := filepath.Join(dir, "config.yaml")
	content := "ssh:\n  host: 10.0.3.2\n  transport: exec\n  executable: " + ssh + "\n"
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0o644))

	for _, env := range []string{"SMARTOS_HOST", "SMARTOS_PORT", "SMARTOS_USER", "SMARTOS_KEY_FILE"} {
		t.Setenv(env, "")
	}
	return cfg
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"list", []string{"--list"}, false},
		{"host", []string{"--host", "web01"}, false},
		{"list with debug", []string{"--list", "--debug"}, false},
		{"transport override", []string{"--list", "--transport", "exec"}, false},
		{"neither mode", []string{"--debug"}, true},
		{"both modes", []string{"--list", "--host", "web01"}, true},
		{"bad transport", []string{"--list", "--transport", "telnet"}, true},
		{"stray argument", []string{"--list", "extra"}, true},
		{"unknown flag", []string{"--lst"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			opts, err := parseArgs(tt.args, &stdout)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, opts)
		})
	}
}

func TestRunList(t *testing.T) {
	cfg := setup(t, `[
  {"hostname": "a", "brand": "kvm", "nics": [{"ip": "1.2.3.4", "vlan_id": 7}]},
  {"alias": "b", "brand": "lx", "nics": [{"ip": "5.6.7.8"}]}
]`, 0)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--list", "--config", cfg}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var doc map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))
	assert.Equal(t, []any{"a", "b"}, doc["smartos"])
	assert.Equal(t, []any{"a"}, doc["vlan_7"])

	var again bytes.Buffer
	require.Equal(t, 0, run([]string{"--list", "--config", cfg}, &again, &stderr))
	assert.Equal(t, stdout.String(), again.String())
}

func TestRunHost(t *testing.T) {
	cfg := setup(t, `{"hostname": "a", "nics": [{"ip": "1.2.3.4"}]}`, 0)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--host", "a", "--config", cfg}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), `"ansible_ssh_host": "1.2.3.4"`)
}

func TestRunYAML(t *testing.T) {
	cfg := setup(t, `[{"hostname": "a", "brand": "lx", "nics": [{"ip": "1.2.3.4"}]}]`, 0)

	var stdout, stderr bytes.Buffer
	code := run([]string{"--list", "--format", "yaml", "--config", cfg}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "ansible_host: 1.2.3.4")
}

func TestRunFailuresWriteNothingToStdout(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		exit    int
		args    []string
	}{
		{"malformed payload", `{"not": "a list"}`, 0, []string{"--list"}},
		{"record missing both names", `[{"brand": "kvm", "nics": [{"ip": "1.2.3.4"}]}]`, 0, []string{"--list"}},
		{"record without nics", `[{"hostname": "a"}]`, 0, []string{"--list"}},
		{"remote failure", `[]`, 1, []string{"--list"}},
		{"unknown host", `[{"hostname": "a", "nics": [{"ip": "1.2.3.4"}]}]`, 0, []string{"--host", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := setup(t, tt.payload, tt.exit)

			var stdout, stderr bytes.Buffer
			code := run(append(tt.args, "--config", cfg), &stdout, &stderr)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout.String())
			assert.NotEmpty(t, stderr.String())
		})
	}
}

func TestRunUsageErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run(nil, &stdout, &stderr))
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "--list")

	stdout.Reset()
	assert.Equal(t, 0, run([]string{"--help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "--host")
}

func TestRunMissingConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--list", "--config", filepath.Join(t.TempDir(), "nope.yaml")}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
}
