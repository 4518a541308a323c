package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"sens-scan/internal/policy"
)

func newValidatePolicyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-policy <path>",
		Short: "Parse and compile a policy document",
		Long:  "Reads the policy document, compiles its regular expressions and reports the size of each section.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := policy.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.logger.Debug("policy valid", "location", args[0])
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "policy %s is valid: %s\n", args[0], p.Summary())
			return nil
		},
	}
}
