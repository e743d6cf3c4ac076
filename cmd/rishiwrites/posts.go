package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rishiraval/rishiwrites/content"
	"github.com/rishiraval/rishiwrites/toc"
)

var postsTag string

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List the posts in the registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		resolver, _, err := loadContent(cfg)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SLUG\tDATE\tREAD\tCONTENT\tTITLE")
		for _, p := range resolver.Registry().Filter(postsTag) {
			res, err := resolver.Resolve(p.Slug)
			if err != nil {
				return err
			}
			body := "no"
			if res.HasContent {
				body = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%dm\t%s\t%s\n", p.Slug, p.DateString(), p.ReadTime, body, p.Title)
		}
		return w.Flush()
	},
}

var outlineCmd = &cobra.Command{
	Use:   "outline <slug>",
	Short: "Print the table of contents of a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		resolver, _, err := loadContent(cfg)
		if err != nil {
			return err
		}

		view := resolver.NewView()
		defer view.Close()
		if _, err := view.Navigate(args[0]); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		unit, err := view.Content(context.Background())
		if errors.Is(err, content.ErrContentUnavailable) {
			fmt.Println("(no content yet)")
			return nil
		}
		if err != nil {
			return err
		}
		if unit.Outline.Empty() {
			fmt.Println("(no headings)")
			return nil
		}
		for _, e := range unit.Outline {
			indent := ""
			if e.Level == toc.Subsection {
				indent = "  "
			}
			fmt.Printf("%s%s  #%s\n", indent, e.Text, e.ID)
		}
		return nil
	},
}

func init() {
	postsCmd.Flags().StringVar(&postsTag, "tag", "", "only list posts with this tag")
	rootCmd.AddCommand(postsCmd, outlineCmd)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, strings.TrimSuffix(word, "s"))
}
