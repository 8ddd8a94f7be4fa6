package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/gsmigrate/internal/forum"
	"github.com/hyperifyio/gsmigrate/internal/profile"
)

func newConvertCmd(o *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "convert page.xml",
		Short: "Convert a single page export with the selected profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := o.newApp(cmd)
			if err != nil {
				return err
			}
			prof, err := a.Profile(cfg.Profile)
			if err != nil {
				return err
			}
			doc, err := a.ConvertFile(args[0], prof)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, doc.Output)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newForumCmd(o *options) *cobra.Command {
	var (
		out         string
		split       string
		locales     []string
		splitQuotes bool
	)
	cmd := &cobra.Command{
		Use:   "forum page.xml",
		Short: "Convert an exported forum thread",
		Long: `Converts a forum thread page. Header lines found by the locale's
patterns are set in bold; posts are split per paragraph or per header
line and separated by a thematic break.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cfg, err := o.newApp(cmd)
			if err != nil {
				return err
			}
			prof, err := a.Profile(cfg.Profile)
			if err != nil {
				return err
			}
			if !prof.IsForum() {
				if prof, err = a.Profile("forum"); err != nil {
					return err
				}
				if !prof.IsForum() {
					return fmt.Errorf("profile %s: not a forum profile", prof.Name)
				}
			}
			opts := *prof.Forum
			if cmd.Flags().Changed("split") {
				opts.Split = split
			}
			if cmd.Flags().Changed("locale") {
				opts.Locales = locales
			}
			if cmd.Flags().Changed("split-quotes") {
				opts.SplitQuotes = splitQuotes
			}
			prof.Forum = &opts
			if err := prof.Validate(); err != nil {
				return err
			}
			doc, err := a.ConvertFile(args[0], prof)
			if err != nil {
				return err
			}
			return writeOutput(cmd, out, doc.Output)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&out, "output", "o", "", "Output file (default stdout)")
	f.StringVar(&split, "split", string(forum.SplitParagraph), "Post split mode: paragraph or header")
	f.StringSliceVar(&locales, "locale", []string{"ru"}, "Header table locales to match")
	f.BoolVar(&splitQuotes, "split-quotes", true, "Move inline > quote markers onto their own paragraph")
	return cmd
}

func newProfilesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the available content profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := o.newApp(cmd)
			if err != nil {
				return err
			}
			set := a.Profiles()
			for _, name := range set.Names() {
				cmd.Println(describeProfile(set[name]))
			}
			return nil
		},
	}
}

func describeProfile(p profile.Profile) string {
	selection := "all pages"
	switch {
	case len(p.Slugs) > 0:
		selection = "slugs"
	case p.Parent != "":
		selection = "parent=" + p.Parent
	}
	kind := p.Preset
	if p.IsForum() {
		kind = "forum/" + p.Forum.Split
	}
	if kind == "" {
		kind = "custom"
	}
	return p.Name + "\t" + kind + "\ttype=" + p.Type + "\t" + selection + "\t-> " + p.Target
}
