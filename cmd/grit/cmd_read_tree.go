package main

import (
	"github.com/spf13/cobra"
)

func newReadTreeCmd(g *globalFlags) *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "read-tree [--dest <dir>] <tree-ish>",
		Short: "Restore a tree into the working tree or another directory",
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

			return r.ReadTree(h, dest)
		},
	}
	cmd.Flags().StringVar(&dest, "dest", "", "directory to restore into (default: the working tree)")
	return cmd
}
