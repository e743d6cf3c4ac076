package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rishiraval/rishiwrites"
	"github.com/rishiraval/rishiwrites/content"
	"github.com/rishiraval/rishiwrites/scaffold"
)

var (
	newDir      string
	newTags     []string
	newExcerpt  string
	newReadTime int
)

// scaffoldData holds the template variables passed to the post template.
type scaffoldData struct {
	Title string
	Slug  string
	Date  string
}

var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Scaffold a new post and add it to the registry",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := newDir
		if dir == "" {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dir = cfg.ContentDir
		}
		if dir == "" {
			return errors.New("no content directory: pass --dir or set content_dir")
		}
		return runNew(dir, strings.Join(args, " "), time.Now())
	},
}

func runNew(dir, rawTitle string, now time.Time) error {
	title := cases.Title(language.English).String(strings.TrimSpace(rawTitle))
	slug := rishiwrites.Slugify(title)
	if slug == "" {
		return fmt.Errorf("title %q has no usable characters", rawTitle)
	}

	registryPath := filepath.Join(dir, content.RegistryFile)
	if f, err := os.Open(registryPath); err == nil {
		registry, err := content.LoadRegistry(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("read %s: %w", registryPath, err)
		}
		if _, ok := registry.Lookup(slug); ok {
			return fmt.Errorf("post %q already exists", slug)
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	postPath := filepath.Join(dir, filepath.FromSlash(content.SourcePath(slug)))
	if _, err := os.Stat(postPath); err == nil {
		return fmt.Errorf("%s already exists", postPath)
	}

	src, err := scaffold.Templates.ReadFile(scaffold.PostTemplate)
	if err != nil {
		return fmt.Errorf("read %s: %w", scaffold.PostTemplate, err)
	}
	tmpl, err := template.New(filepath.Base(scaffold.PostTemplate)).Parse(string(src))
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(postPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(postPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", postPath, err)
	}
	date := now.UTC().Truncate(24 * time.Hour)
	err = tmpl.Execute(f, scaffoldData{Title: title, Slug: slug, Date: date.Format(content.DateLayout)})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	fmt.Printf("  created %s\n", postPath)

	existing, err := os.ReadFile(registryPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	reg, err := os.OpenFile(registryPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		if _, err := reg.Write([]byte("\n")); err != nil {
			reg.Close()
			return err
		}
	}
	err = content.WriteRecord(reg, content.Post{
		Slug:     slug,
		Title:    title,
		Excerpt:  newExcerpt,
		Date:     date,
		ReadTime: newReadTime,
		Tags:     newTags,
	})
	if cerr := reg.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("update %s: %w", registryPath, err)
	}
	fmt.Printf("  updated %s\n", registryPath)

	fmt.Println()
	fmt.Printf("Write the post in %s, then run 'rishiwrites serve --content %s --watch'.\n", postPath, dir)
	return nil
}

func init() {
	newCmd.Flags().StringVar(&newDir, "dir", "", "content directory (default: content_dir from config)")
	newCmd.Flags().StringSliceVar(&newTags, "tag", nil, "tag for the post (repeatable)")
	newCmd.Flags().StringVar(&newExcerpt, "excerpt", "", "one-line summary shown on the home page")
	newCmd.Flags().IntVar(&newReadTime, "read-time", 5, "estimated read time in minutes")
	rootCmd.AddCommand(newCmd)
}
