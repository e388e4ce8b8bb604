package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/odvcencio/grit/pkg/repo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "0.1.0-dev"

// errSilent makes main exit 1 without printing anything.
var errSilent = errors.New("silent failure")

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	workTree string
	repoDir  string
	verbose  int
	quiet    bool

	log *logrus.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintln(os.Stderr, "grit:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{log: logrus.New()}

	root := &cobra.Command{
		Use:           "grit",
		Short:         "Content-addressable object store with directory snapshots",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			g.log.SetOutput(cmd.ErrOrStderr())
			g.log.SetLevel(logLevel(g.verbose, g.quiet))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.workTree, "work-tree", ".", "path to the working tree")
	flags.StringVar(&g.repoDir, "repo", "", "path to the repository (default <work-tree>/.grit)")
	flags.CountVarP(&g.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	flags.BoolVarP(&g.quiet, "quiet", "q", false, "only log errors")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(g))
	root.AddCommand(newHashObjectCmd(g))
	root.AddCommand(newCatFileCmd(g))
	root.AddCommand(newWriteTreeCmd(g))
	root.AddCommand(newReadTreeCmd(g))
	root.AddCommand(newLsTreeCmd(g))
	root.AddCommand(newVerifyCmd(g))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "grit %s\n", version)
		},
	}
}

// logLevel maps -v counts to logrus levels: warn by default, then info,
// debug and trace. --quiet wins.
func logLevel(verbose int, quiet bool) logrus.Level {
	if quiet {
		return logrus.ErrorLevel
	}
	switch {
	case verbose <= 0:
		return logrus.WarnLevel
	case verbose == 1:
		return logrus.InfoLevel
	case verbose == 2:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}

func (g *globalFlags) openRepo() (*repo.Repo, error) {
	return repo.Open(g.workTree, g.repoDir, repo.WithLogger(g.log))
}
