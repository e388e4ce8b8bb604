package main

import (
	"fmt"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newInitCmd(g *globalFlags) *cobra.Command {
	cfg := repo.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty grit repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Init(g.workTree, g.repoDir, cfg, repo.WithLogger(g.log))
			if err != nil {
				return err
			}
			defer r.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty grit repository in %s\n", r.Dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.Storage.Backend, "backend", cfg.Storage.Backend, "object store backend: loose, leveldb or sqlite")
	cmd.Flags().StringVar(&cfg.Storage.Compression, "compression", cfg.Storage.Compression, "loose object compression: none or zstd")
	return cmd
}
