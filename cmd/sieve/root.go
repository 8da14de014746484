package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/reglet-dev/sieve/domain/ports"
	"github.com/reglet-dev/sieve/host"
	"github.com/reglet-dev/sieve/infrastructure/policystore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by the subcommands of one root command.
type app struct {
	v      *viper.Viper
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "sieve",
		Short: "Capability-gated WebAssembly module loader",
		Long: `sieve - Load untrusted WebAssembly guest units behind a name-based allow-list.

Every import a guest makes is resolved by qualified name: to another
registered guest unit, to a host module the manifest explicitly allows, or
it is refused. Configure the sandbox with a YAML manifest.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "Config file (default: none; SIEVE_* env vars also apply)")
	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringP("output", "o", outputText, "Output format for check, resolve, run and errors: text or json")
	root.PersistentFlags().StringP("manifest", "m", "", "Path to the sandbox manifest")
	root.PersistentFlags().StringToString("set", nil, "Manifest template value key=value (repeatable)")
	root.PersistentFlags().String("policy-file", "", "Policy store path; when set, its policy is applied before the manifest (default store: ~/.sieve/policy.yaml)")

	root.AddCommand(
		newCheckCmd(a),
		newResolveCmd(a),
		newRunCmd(a),
		newPolicyCmd(a),
		newSchemaCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("SIEVE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	a.v.SetDefault("log-level", "info")

	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	switch format := a.v.GetString("output"); format {
	case outputText, outputJSON:
		// Errors are reported from the flag after the command returns.
		if err := cmd.Flags().Set("output", format); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid output format %q: want %s or %s", format, outputText, outputJSON)
	}

	logger, err := newLogger(cmd.ErrOrStderr(), a.v.GetString("log-level"))
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	handler := log.NewWithOptions(w, log.Options{
		Prefix: "sieve",
		Level:  lvl,
	})
	return slog.New(handler), nil
}

// loadSandbox builds the sandbox described by the --manifest file.
func (a *app) loadSandbox(cmd *cobra.Command, opts ...host.LoaderOption) (*host.Sandbox, *manifestInfo, error) {
	path := a.v.GetString("manifest")
	if path == "" {
		return nil, nil, fmt.Errorf("--manifest is required")
	}

	values, err := cmd.Flags().GetStringToString("set")
	if err != nil {
		return nil, nil, err
	}
	config := make(map[string]interface{}, len(values))
	for k, v := range values {
		config[k] = v
	}

	loaderOpts := []host.LoaderOption{host.WithLoaderLogger(a.logger)}
	if a.v.GetString("policy-file") != "" {
		loaderOpts = append(loaderOpts, host.WithPolicyStore(a.policyStore()))
	}
	loaderOpts = append(loaderOpts, opts...)
	loader, err := host.NewLoader(loaderOpts...)
	if err != nil {
		return nil, nil, err
	}

	sb, manifest, err := loader.LoadFile(path, config)
	if err != nil {
		return nil, nil, err
	}

	info := &manifestInfo{name: manifest.Name}
	if manifest.Entry != nil {
		info.entry = manifest.Entry.Name
		info.export = manifest.Entry.Export
	}
	return sb, info, nil
}

// manifestInfo is the part of a loaded manifest the commands report on.
type manifestInfo struct {
	name   string
	entry  string
	export string
}

func (a *app) policyStore() ports.PolicyStore {
	var opts []policystore.FileStoreOption
	if path := a.v.GetString("policy-file"); path != "" {
		opts = append(opts, policystore.WithPath(path))
	}
	return policystore.NewFileStore(opts...)
}
