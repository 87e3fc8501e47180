package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"go-audit-relay/internal/audit"

	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the audit log actions the relay understands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeActions(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}

func writeActions(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTION\tKIND\tNAME\tROUTE")
	for _, row := range audit.Rows() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", row.Action, row.Kind, row.DisplayName, row.Route)
	}
	return tw.Flush()
}
