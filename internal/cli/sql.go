package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSQLCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Print the SQL collected from all migrations",
		Long: `Print the SQL document that visualize would send to Atlas Cloud,
without contacting the service.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v := newVisualizer(cmd, config, strict)

			_, doc, err := v.collect(cmd.Context())
			if err != nil {
				v.fail(err)
				return
			}
			fmt.Fprint(cmd.OutOrStdout(), doc)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "abort when a migration cannot be rendered instead of skipping it")

	return cmd
}
