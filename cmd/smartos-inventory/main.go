// Command smartos-inventory is an Ansible dynamic inventory for SmartOS.
//
// It runs `vmadm lookup -j` on a SmartOS global zone over SSH and prints the
// guests grouped by brand and VLAN, with per-host variables under _meta.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"smartos-inventory/internal/codec"
	"smartos-inventory/internal/config"
	"smartos-inventory/internal/logger"
	"smartos-inventory/internal/service"
	"smartos-inventory/internal/transport"
)

// Options defines command line options
type Options struct {
	List      bool   `long:"list" description:"list every guest on the host"`
	Host      string `long:"host" value-name:"HOSTNAME" description:"show the inventory for one guest"`
	Debug     bool   `short:"d" long:"debug" description:"enable debug output on stderr"`
	Config    string `short:"c" long:"config" value-name:"PATH" description:"config file (YAML or INI)"`
	Transport string `long:"transport" choice:"auto" choice:"ssh" choice:"exec" description:"ssh strategy, overrides the config file"`
	Format    string `long:"format" choice:"json" choice:"yaml" default:"json" description:"json for Ansible dynamic inventory, yaml for a static inventory file"`
}

// errHelp signals that usage was printed
var errHelp = errors.New("help requested")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// parseArgs returns parsed command-line flags. Exactly one of --list and
// --host is required.
func parseArgs(args []string, stdout io.Writer) (*Options, error) {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "smartos-inventory"
	parser.Usage = "(--list | --host HOSTNAME) [OPTIONS]"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		if flags.WroteHelp(err) {
			fmt.Fprintln(stdout, err.Error())
			return nil, errHelp
		}
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", rest)
	}

	switch {
	case opts.List && opts.Host != "":
		return nil, errors.New("--list and --host are mutually exclusive")
	case !opts.List && opts.Host == "":
		return nil, errors.New("one of --list or --host is required")
	}

	return opts, nil
}

// run executes one inventory invocation and returns the exit status.
// stdout receives the inventory and nothing else.
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stdout)
	if errors.Is(err, errHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "smartos-inventory: %v\n", err)
		return 1
	}

	log := logger.NewWithWriter(stderr, opts.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out, err := inventory(ctx, opts, log)
	if err != nil {
		log.Error("inventory failed", "error", err)
		return 1
	}

	if _, err := stdout.Write(out); err != nil {
		log.Error("write inventory", "error", err)
		return 1
	}
	return 0
}

func inventory(ctx context.Context, opts *Options, log *slog.Logger) ([]byte, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if opts.Config != "" {
		cfg, path, err = config.LoadFromPath(opts.Config)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if opts.Transport != "" {
		cfg.SSH.Transport = opts.Transport
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if path == "" {
		log.Debug("no config file found, using defaults")
	} else {
		log.Debug("loaded config", "path", path)
	}
	log.Debug(cfg.Summary())

	spec, err := cfg.Connection()
	if err != nil {
		return nil, err
	}

	t, err := transport.Select(spec, transport.Options{
		Strategy:   cfg.SSH.Transport,
		Executable: cfg.SSH.Executable,
		SearchCwd:  true,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}
	defer t.Close()
	log.Debug("selected transport", "strategy", t.Name())

	svc := service.NewInventoryService(t, log)
	if opts.Format == "yaml" {
		svc.SetExporter(codec.NewAnsibleYAMLCodec())
	}
	if opts.List {
		return svc.List(ctx)
	}
	return svc.Host(ctx, opts.Host)
}
