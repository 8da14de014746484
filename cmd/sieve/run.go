package main

import (
	"context"
	"fmt"
	"time"

	"github.com/reglet-dev/sieve/host"
	"github.com/reglet-dev/sieve/hostfuncs"
	"github.com/spf13/cobra"
)

// consoleModule is the host module name backing guest logging.
const consoleModule = "sieve.Console"

const defaultExport = "run"

type runResult struct {
	Entry   string   `json:"entry"`
	Export  string   `json:"export"`
	Results []uint64 `json:"results"`
}

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Link and invoke a guest entry point",
		Long: `Build the sandbox described by --manifest, link the entry guest unit with
everything it imports, and call its export.

The entry point comes from the manifest unless --entry/--export are given.
Host modules java.lang.Math, java.lang.String and sieve.Console are
implemented; they are reachable only if the manifest allows them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sb, info, err := a.loadSandbox(cmd)
			if err != nil {
				return err
			}

			entry := a.v.GetString("entry")
			if entry == "" {
				entry = info.entry
			}
			if entry == "" {
				return fmt.Errorf("no entry point: set --entry or entry.name in the manifest")
			}
			export := a.v.GetString("export")
			if export == "" {
				export = info.export
			}
			if export == "" {
				export = defaultExport
			}

			hosts, err := hostfuncs.NewRegistry(
				hostfuncs.WithBundle(hostfuncs.Combine(
					hostfuncs.StandardBundle(),
					hostfuncs.ConsoleBundle(consoleModule, a.logger),
				)),
				hostfuncs.WithMiddleware(
					hostfuncs.PanicRecoveryMiddleware(),
					hostfuncs.LoggingMiddleware(a.logger),
				),
			)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout := a.v.GetDuration("timeout"); timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			exec, err := host.NewExecutor(ctx, sb,
				host.WithHostFunctions(hosts),
				host.WithWASI(a.v.GetBool("wasi")),
				host.WithMemoryLimitPages(a.v.GetUint32("memory-pages")),
				host.WithExecutorLogger(a.logger),
			)
			if err != nil {
				return err
			}
			defer func() { _ = exec.Close(ctx) }()

			results, err := exec.Invoke(ctx, entry, export)
			if err != nil {
				return err
			}

			if a.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), runResult{Entry: entry, Export: export, Results: results})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s.%s -> %v\n", entry, export, results)
			return nil
		},
	}

	cmd.Flags().String("entry", "", "Guest unit to invoke (default: manifest entry.name)")
	cmd.Flags().String("export", "", "Export to call (default: manifest entry.export or \"run\")")
	cmd.Flags().Bool("wasi", false, "Back wasi_snapshot_preview1 with WASI (must also be allowed)")
	cmd.Flags().Uint32("memory-pages", 0, "Guest memory limit in 64KiB pages (0: runtime default)")
	cmd.Flags().Duration("timeout", 30*time.Second, "Execution timeout")
	return cmd
}
