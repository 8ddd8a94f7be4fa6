package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/gsmigrate/internal/app"
)

func newCheckCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check [dir]",
		Short: "Verify front matter and structure of migrated markdown files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := o.newApp(cmd)
			if err != nil {
				return err
			}
			dir := cfg.TargetRoot
			if len(args) > 0 {
				dir = args[0]
			}
			report, err := a.Check(cmd.Context(), dir)
			for _, f := range report.Files {
				if len(f.Problems) > 0 {
					cmd.Printf("%s: %s\n", f.Path, strings.Join(f.Problems, ", "))
				}
			}
			cmd.Printf("files=%d problems=%d\n", len(report.Files), report.Problems)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(app.VersionString())
		},
	}
}
