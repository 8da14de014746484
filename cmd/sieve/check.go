package main

import (
	"fmt"

	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/domain/errors"
	"github.com/reglet-dev/sieve/domain/naming"
	"github.com/reglet-dev/sieve/guest"
	"github.com/spf13/cobra"
)

type checkResult struct {
	Name  string                `json:"name"`
	Valid bool                  `json:"valid"`
	Error *entities.ErrorDetail `json:"error,omitempty"`
}

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <name>...",
		Short: "Check guest names against the naming rules and reservations",
		Long: `Check whether each name could be registered as a guest unit.

A name is rejected if it falls inside a reserved namespace (the standard
library namespaces unless --no-reserved) or breaks the qualified-name grammar.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minDepth, _ := cmd.Flags().GetInt("min-depth")
			noReserved, _ := cmd.Flags().GetBool("no-reserved")

			reg := guest.NewRegistry(guest.WithValidator(naming.NewValidator(naming.WithMinDepth(minDepth))))
			if !noReserved {
				if err := reg.ReserveDefaults(); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			results := make([]checkResult, 0, len(args))
			rejected := 0
			for _, name := range args {
				err := reg.Register(name, nil)
				results = append(results, checkResult{Name: name, Valid: err == nil, Error: errors.ToErrorDetail(err)})
				if err != nil {
					rejected++
				}
				if a.jsonOutput() {
					continue
				}
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", name, err)
					continue
				}
				fmt.Fprintf(out, "%s: ok\n", name)
			}
			if a.jsonOutput() {
				if err := writeJSON(out, results); err != nil {
					return err
				}
			}

			a.logger.Debug("check: done", "names", len(args), "rejected", rejected)
			if rejected > 0 {
				return fmt.Errorf("%d of %d names rejected", rejected, len(args))
			}
			return nil
		},
	}

	cmd.Flags().Int("min-depth", naming.DefaultMinDepth, "Minimum number of name components")
	cmd.Flags().Bool("no-reserved", false, "Do not apply the default reserved namespaces")
	return cmd
}
