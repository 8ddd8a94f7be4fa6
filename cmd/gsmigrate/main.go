package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/gsmigrate/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	os.Exit(run(os.Args[1:]))
}

// run executes the command line and maps the result to a process exit code.
func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	root := newRootCmd()
	root.SetArgs(args)
	return exitCode(root.ExecuteContext(ctx))
}

// exitCode implements the exit code policy: 2 when documents failed or the
// checker found problems, 1 for any other error, 0 on success.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, app.ErrDocumentsFailed), errors.Is(err, app.ErrCheckFailed):
		log.Error().Err(err).Msg("run finished with failures")
		return 2
	default:
		log.Error().Err(err).Msg("run failed")
		return 1
	}
}

// options holds the values bound to the persistent flags.
type options struct {
	configPath string
	envFiles   []string
	flags      app.Config
}

func newRootCmd() *cobra.Command {
	return newRoot(&options{})
}

func newRoot(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "gsmigrate",
		Short:         "Migrate GetSimple CMS page exports to markdown with front matter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "Path to YAML, JSON or TOML config file")
	pf.StringSliceVar(&o.envFiles, "env", []string{".env"}, "dotenv files to load before reading the environment")
	pf.BoolVarP(&o.flags.Verbose, "verbose", "v", false, "Verbose logging")
	pf.StringVar(&o.flags.SourceDir, "source", app.SourceDirDefault, "Directory holding the page XML exports")
	pf.StringVar(&o.flags.TargetRoot, "target", app.TargetRootDefault, "Content root that profile targets are relative to")
	pf.StringVar(&o.flags.Profile, "profile", app.ProfileDefault, "Content profile")
	pf.StringVar(&o.flags.HeadersPath, "headers", "", "YAML forum header table merged over the builtin one")

	root.AddCommand(
		newMigrateCmd(o),
		newConvertCmd(o),
		newForumCmd(o),
		newCheckCmd(o),
		newProfilesCmd(o),
		newVersionCmd(),
	)
	return root
}

// loadConfig layers the configuration: flags > env > file > defaults.
func (o *options) loadConfig(cmd *cobra.Command) (app.Config, error) {
	if loaded, err := app.LoadEnvFiles(o.envFiles...); err != nil {
		return app.Config{}, fmt.Errorf("env files: %w", err)
	} else if len(loaded) > 0 {
		log.Debug().Strs("files", loaded).Msg("loaded env files")
	}

	cfg := o.flags
	if o.configPath != "" {
		fc, err := app.LoadConfigFile(o.configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("config file: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)
	o.reapplyFlags(cmd, &cfg)

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if err := app.ValidateConfig(cfg); err != nil {
		return app.Config{}, err
	}
	return cfg, nil
}

// reapplyFlags restores explicitly set flags over env and file values.
func (o *options) reapplyFlags(cmd *cobra.Command, cfg *app.Config) {
	changed := cmd.Flags().Changed
	if changed("verbose") {
		cfg.Verbose = o.flags.Verbose
	}
	if changed("source") {
		cfg.SourceDir = o.flags.SourceDir
	}
	if changed("target") {
		cfg.TargetRoot = o.flags.TargetRoot
	}
	if changed("profile") {
		cfg.Profile = o.flags.Profile
	}
	if changed("headers") {
		cfg.HeadersPath = o.flags.HeadersPath
	}
	if changed("dry-run") {
		cfg.DryRun = o.flags.DryRun
	}
	if changed("overwrite") {
		cfg.Overwrite = o.flags.Overwrite
	}
	if changed("manifest") {
		cfg.ManifestPath = o.flags.ManifestPath
	}
	if changed("pdf.dir") {
		cfg.PDFDir = o.flags.PDFDir
	}
	if changed("pdf.font") {
		cfg.PDFFont = o.flags.PDFFont
	}
}

func (o *options) newApp(cmd *cobra.Command) (*app.App, app.Config, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return nil, cfg, err
	}
	return a, cfg, nil
}

// writeOutput writes data to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info().Str("out", path).Msg("wrote output")
	return nil
}
