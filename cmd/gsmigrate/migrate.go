package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [slug...]",
		Short: "Convert every page selected by a profile",
		Long: `Converts the pages a profile selects and writes one markdown file per
page, named after the page URL, into the profile's target directory.
Slugs given as arguments replace the profile's own page selection.
Existing files are kept unless --overwrite is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := o.newApp(cmd)
			if err != nil {
				return err
			}
			report, err := a.Migrate(cmd.Context(), cfg.Profile, args...)
			cmd.Printf("%s: migrated=%d skipped=%d failed=%d\n", report.Profile, report.Migrated, report.Skipped, report.Failed)
			return err
		},
	}
	f := cmd.Flags()
	f.BoolVar(&o.flags.DryRun, "dry-run", false, "Convert without writing files")
	f.BoolVar(&o.flags.Overwrite, "overwrite", false, "Replace existing output files")
	f.StringVar(&o.flags.ManifestPath, "manifest", "", "Write a JSON manifest of the run to this path")
	f.StringVar(&o.flags.PDFDir, "pdf.dir", "", "Write a PDF proof copy of each migrated page into this directory")
	f.StringVar(&o.flags.PDFFont, "pdf.font", "", "TrueType font for PDF proof copies (needed for non-Latin text)")
	return cmd
}
