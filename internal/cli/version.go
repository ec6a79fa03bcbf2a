package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eleven-am/schemaviz/pkg/schemaviz"
)

func newVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the schemaviz version, the client tag sent to Atlas Cloud and build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), schemaviz.Version)
				return
			}
			fmt.Fprint(cmd.OutOrStdout(), schemaviz.FullVersionInfo())
			fmt.Fprintf(cmd.OutOrStdout(), "Client Tag: %s\n", schemaviz.UserAgent())
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return cmd
}
