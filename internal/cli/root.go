package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/piwi3910/circlepack/internal/model"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version. It is
// normally called from main with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// ShowFunc displays a solved layout in a window and blocks until it closes.
type ShowFunc func(cfg model.PackingConfig, result model.PackingResult) error

// Option configures the command tree.
type Option func(*app)

// WithGUI enables --gui and problem files requesting GUI output.
func WithGUI(show ShowFunc) Option {
	return func(a *app) { a.show = show }
}

// app holds state shared by all commands.
type app struct {
	show ShowFunc
}

// Execute runs the circlepack CLI.
func Execute(opts ...Option) error {
	root := NewRootCommand(opts...)
	if err := root.ExecuteContext(context.Background()); err != nil {
		printError("%v", err)
		return err
	}
	return nil
}

// NewRootCommand builds the root command with every subcommand registered.
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{}
	for _, opt := range opts {
		opt(a)
	}

	var verbose bool
	root := &cobra.Command{
		Use:   "circlepack",
		Short: "circlepack finds the smallest circle that holds a set of rectangles",
		Long: `circlepack packs a small set of rectangles into the smallest enclosing circle.
Rectangles may stay upright, turn in 90 or 45 degree steps, or rotate freely,
with optional padding between shapes and to the circle and an optional target radius.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("circlepack %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(a.solveCommand())
	root.AddCommand(a.compareCommand())
	root.AddCommand(exportCommand())
	root.AddCommand(gcodeCommand())
	root.AddCommand(cacheCommand())

	return root
}
