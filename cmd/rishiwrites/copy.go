package main

import (
	"fmt"
	"strconv"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/rishiraval/rishiwrites"
	"github.com/rishiraval/rishiwrites/codeblock"
)

var copyList bool

var copyCmd = &cobra.Command{
	Use:   "copy <slug> [n]",
	Short: "Copy the n-th code block of a post to the clipboard (default 1)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		resolver, md, err := loadContent(cfg)
		if err != nil {
			return err
		}

		src, err := resolver.ReadSource(rishiwrites.ContentFS(cfg), args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		doc, err := md.Parse(src)
		if err != nil {
			return err
		}
		blocks := md.CodeBlocks(doc.Body)
		if len(blocks) == 0 {
			return fmt.Errorf("%s has no code blocks", args[0])
		}

		if copyList {
			for i, b := range blocks {
				name := b.Filename
				if name == "" {
					name = "-"
				}
				fmt.Printf("%d  %-10s %-24s %s\n", i+1, b.Language, name, plural(countLines(b.Code), "line"))
			}
			return nil
		}

		n := 1
		if len(args) == 2 {
			n, err = strconv.Atoi(args[1])
			if err != nil || n < 1 || n > len(blocks) {
				return fmt.Errorf("block number must be between 1 and %d", len(blocks))
			}
		}

		btn := codeblock.New(codeblock.ClipboardFunc(clipboard.WriteAll))
		btn.Delay = cfg.CopyResetDelay
		if err := btn.Copy(blocks[n-1].Code); err != nil {
			return err
		}
		fmt.Printf("%s block %d of %s (%s)\n", btn.Label(), n, args[0], blocks[n-1].Language)
		return nil
	},
}

func countLines(s string) int {
	n := 0
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	if len(s) > 0 && s[len(s)-1] != '\n' {
		n++
	}
	return n
}

func init() {
	copyCmd.Flags().BoolVarP(&copyList, "list", "l", false, "list the code blocks instead of copying")
	rootCmd.AddCommand(copyCmd)
}
