package main

import (
	"fmt"
	"io"
	"os"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/spf13/cobra"
)

func newHashObjectCmd(g *globalFlags) *cobra.Command {
	var (
		write   bool
		typeTag string
	)

	cmd := &cobra.Command{
		Use:   "hash-object [-w] [-t blob|tree] <path|->",
		Short: "Compute an object ID and optionally store the object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := object.ParseObjectType(typeTag)
			if err != nil {
				return fmt.Errorf("hash-object: -t %q: want blob or tree", typeTag)
			}

			var data []byte
			if args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("could not read %q: %w", args[0], err)
			}

			r, err := g.openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			h, err := r.HashObject(data, t, write)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the object into the store")
	cmd.Flags().StringVarP(&typeTag, "type", "t", "blob", "object type")
	return cmd
}
