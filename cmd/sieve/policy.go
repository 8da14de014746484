package main

import (
	"fmt"

	"github.com/reglet-dev/sieve/domain/entities"
	"github.com/reglet-dev/sieve/infrastructure/prompter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newPolicyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Manage the persisted reservation and grant policy",
	}
	cmd.AddCommand(newPolicyExportCmd(a), newPolicyShowCmd(a), newPolicyGrantCmd(a))
	return cmd
}

func newPolicyExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Persist the effective policy of a manifest",
		Long: `Build the sandbox described by --manifest and write its reserved
namespaces and allowed host names to the policy store (--policy-file).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sb, _, err := a.loadSandbox(cmd)
			if err != nil {
				return err
			}

			store := a.policyStore()
			p := sb.Policy()
			if err := store.Save(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "policy written to %s (%d reserved, %d allowed)\n",
				store.ConfigPath(), len(p.Reserved), len(p.Allowed))
			return nil
		},
	}
}

func newPolicyShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := a.policyStore()
			p, err := store.Load()
			if err != nil {
				return err
			}
			if p.IsEmpty() {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "no policy stored at %s\n", store.ConfigPath())
				return err
			}
			data, err := yaml.Marshal(p)
			if err != nil {
				return fmt.Errorf("failed to encode policy: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newPolicyGrantCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Grant the host names a manifest's guests import",
		Long: `Scan the imports of every guest unit in --manifest, ask which of the
host names that would be denied to allow, and add them to the policy store.

Without a terminal the command fails and lists the names, unless --yes
grants all of them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sb, _, err := a.loadSandbox(cmd)
			if err != nil {
				return err
			}

			missing, err := sb.MissingGrants(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(missing) == 0 {
				fmt.Fprintln(out, "nothing to grant")
				return nil
			}

			var granted []string
			yes, _ := cmd.Flags().GetBool("yes")
			p := prompter.NewCliPrompter(cmd.InOrStdin(), out)
			switch {
			case yes:
				for _, req := range missing {
					granted = append(granted, req.Name)
				}
			case p.IsInteractive():
				if granted, err = p.PromptForGrants(missing); err != nil {
					return err
				}
			default:
				return p.FormatNonInteractiveError(missing)
			}

			if len(granted) == 0 {
				fmt.Fprintln(out, "nothing granted")
				return nil
			}

			store := a.policyStore()
			stored, err := store.Load()
			if err != nil {
				return err
			}
			stored.Merge(&entities.Policy{Allowed: granted})
			if err := store.Save(stored); err != nil {
				return err
			}
			a.logger.Info("policy: granted", "names", granted, "path", store.ConfigPath())
			fmt.Fprintf(out, "granted %d host names in %s\n", len(granted), store.ConfigPath())
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Grant every missing host name without prompting")
	return cmd
}
