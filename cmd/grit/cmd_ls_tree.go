package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLsTreeCmd(g *globalFlags) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls-tree [-r] <tree-ish>",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := g.openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			h, err := r.ResolveObject(args[0])
			if err != nil {
				return err
			}

			listing, err := r.LsTree(h, recursive)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, l := range listing {
				fmt.Fprintln(out, l)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees")
	return cmd
}
