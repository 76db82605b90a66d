package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/lcx/mirror/opcode"
	"github.com/spf13/cobra"
)

func opcodesCmd() *cobra.Command {
	var free bool

	cmd := &cobra.Command{
		Use:   "opcodes",
		Short: "Print the reserved message id table",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if free {
				fmt.Fprintln(w, "ID\tSTATUS")
				for id := opcode.UserRangeStart; id <= opcode.UserRangeEnd; id++ {
					if opcode.ValidateUserID(id) == nil {
						fmt.Fprintf(w, "%d\tfree\n", id)
					}
				}
				return w.Flush()
			}

			fmt.Fprintln(w, "ID\tNAME\tRANGE")
			for _, t := range opcode.MsgTypes() {
				scope := "internal"
				if t.IsPublic() {
					scope = "public"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\n", t, t, scope)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&free, "free", false, "List the user ids still available")
	return cmd
}
