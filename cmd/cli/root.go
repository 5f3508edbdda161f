package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/storygen/internal/buildinfo"
	"github.com/dmitrijs2005/storygen/internal/client/cli"
	"github.com/dmitrijs2005/storygen/internal/client/config"
	"github.com/dmitrijs2005/storygen/internal/client/services"
	"github.com/dmitrijs2005/storygen/internal/logging"
)

// NewRootCmd creates the storygen command tree. Without a subcommand it
// starts the interactive REPL.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storygen",
		Short: "Generate user stories from requirement documents",
		Long: `storygen uploads a .pdf or .docx requirements document to the story
extraction service and shows the user stories it returns. Results can be
exported as PDF, DOCX or HTML, locally or to an S3 bucket.

Run without a subcommand to start the interactive shell.`,
		Version:       buildinfo.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}

	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewLoginCmd())
	cmd.AddCommand(NewSignupCmd())
	cmd.AddCommand(NewLogoutCmd())
	cmd.AddCommand(NewWhoamiCmd())
	cmd.AddCommand(NewGenerateCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// newApp is a seam for tests.
var newApp = cli.NewApp

// openApp loads the configuration from the parsed flags and wires the client.
func openApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return nil, err
	}
	log := logging.NewTextLogger(os.Stderr, cfg.Verbose)
	return newApp(cmd.Context(), cfg, log)
}

// withSession opens the client, restores the stored session and runs fn.
func withSession(cmd *cobra.Command, fn func(app *cli.App) error) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	app.Start(cmd.Context())
	return fn(app)
}

// exitMessage is what main prints for err before exiting. Errors the app has
// already shown produce no message.
func exitMessage(err error) string {
	if err == nil || cli.AlreadyReported(err) {
		return ""
	}
	return "Error: " + services.UserMessage(err)
}
