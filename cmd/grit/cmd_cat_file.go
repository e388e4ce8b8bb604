package main

import (
	"errors"
	"fmt"

	"github.com/odvcencio/grit/pkg/object"
	"github.com/spf13/cobra"
)

func newCatFileCmd(g *globalFlags) *cobra.Command {
	var (
		pretty   bool
		showType bool
		exists   bool
	)

	cmd := &cobra.Command{
		Use:   "cat-file (-p | -t | -e) <oid> | cat-file <type> <oid>",
		Short: "Provide content or type of repository objects",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			modes := 0
			for _, set := range []bool{pretty, showType, exists} {
				if set {
					modes++
				}
			}

			var expected []object.ObjectType
			switch {
			case len(args) == 2 && modes == 0:
				t, err := object.ParseObjectType(args[0])
				if err != nil {
					return fmt.Errorf("cat-file: invalid object type %q", args[0])
				}
				expected = []object.ObjectType{t}
				args = args[1:]
			case len(args) == 1 && modes == 1:
			default:
				return fmt.Errorf("cat-file: expected one of -p, -t, -e with <oid>, or <type> <oid>")
			}

			r, err := g.openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			h, err := r.ResolveObject(args[0])
			if err != nil {
				if exists && errors.Is(err, object.ErrNotFound) {
					return errSilent
				}
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case exists:
				ok, err := r.Exists(h)
				if err != nil {
					return err
				}
				if !ok {
					return errSilent
				}
				return nil
			case showType:
				t, err := r.TypeOf(h)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, t)
				return nil
			}

			t, data, err := r.CatFile(h, expected...)
			if err != nil {
				return err
			}
			if pretty && t == object.TypeTree {
				entries, err := object.UnmarshalTree(data)
				if err != nil {
					return err
				}
				for _, e := range entries {
					fmt.Fprintf(out, "%s %s\t%s\n", e.Type, e.Hash, e.Name)
				}
				return nil
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the object content")
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "show the object type")
	cmd.Flags().BoolVarP(&exists, "exists", "e", false, "exit with zero status if the object exists")
	return cmd
}
