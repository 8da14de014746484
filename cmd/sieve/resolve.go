package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type resolveResult struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func newResolveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <name>...",
		Short: "Resolve names through a manifest's sandbox",
		Long: `Build the sandbox described by --manifest and print how each name resolves:
guest (a registered guest unit), host (an allowed host symbol) or denied.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sb, _, err := a.loadSandbox(cmd)
			if err != nil {
				return err
			}

			requester, _ := cmd.Flags().GetString("requester")
			out := cmd.OutOrStdout()
			results := make([]resolveResult, 0, len(args))
			for _, name := range args {
				outcome := sb.Resolver().ResolveFor(requester, name)
				results = append(results, resolveResult{Name: name, Kind: outcome.Kind.String()})
			}
			if a.jsonOutput() {
				return writeJSON(out, results)
			}
			for _, r := range results {
				fmt.Fprintf(out, "%s\t%s\n", r.Name, r.Kind)
			}
			return nil
		},
	}

	cmd.Flags().String("requester", "", "Guest unit to attribute the lookups to")
	return cmd
}
