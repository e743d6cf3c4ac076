package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rishiraval/rishiwrites"
	"github.com/rishiraval/rishiwrites/content"
	"github.com/rishiraval/rishiwrites/markdown"
)

var (
	cfgFile    string
	contentDir string
)

var rootCmd = &cobra.Command{
	Use:   "rishiwrites",
	Short: "Personal blog server and authoring tools",
	Long: `rishiwrites serves the blog and helps with writing it: list posts,
inspect a post's table of contents, copy code blocks and scaffold new posts.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", rishiwrites.EnvOr("RISHI_CONFIG", "rishiwrites.yml"), "config file path")
	rootCmd.PersistentFlags().StringVar(&contentDir, "content", "", "content directory (default: the embedded posts)")
}

func loadConfig() (rishiwrites.SiteConfig, error) {
	cfg, err := rishiwrites.LoadConfig(cfgFile)
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	if contentDir != "" {
		cfg.ContentDir = contentDir
	}
	return cfg, nil
}

// loadContent builds the resolver and markdown renderer the site would use.
func loadContent(cfg rishiwrites.SiteConfig) (*content.Resolver, *markdown.Renderer, error) {
	md := markdown.New(
		markdown.WithCopyResetDelay(cfg.CopyResetDelay),
		markdown.WithStyle(cfg.CodeStyle),
	)
	r, err := content.Load(rishiwrites.ContentFS(cfg), md)
	if err != nil {
		return nil, nil, fmt.Errorf("loading content: %w", err)
	}
	return r, md, nil
}
