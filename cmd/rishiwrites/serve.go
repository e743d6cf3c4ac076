package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/rishiraval/rishiwrites"
)

var (
	serveAddr  string
	serveWatch bool
	serveDebug bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the blog over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		if serveWatch {
			cfg.Watch = true
		}

		app := rishiwrites.New(cfg)
		app.Echo.HideBanner = true
		if serveDebug {
			app.Echo.Logger.SetLevel(log.DEBUG)
		} else {
			app.Echo.Logger.SetLevel(log.INFO)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		done := make(chan struct{})
		go func() {
			defer close(done)
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.Shutdown(shutdownCtx); err != nil {
				app.Echo.Logger.Errorf("shutdown: %v", err)
			}
		}()

		source := "embedded posts"
		if cfg.ContentDir != "" {
			source = cfg.ContentDir
		}
		fmt.Fprintf(os.Stderr, "rishiwrites %s serving %s on %s\n", version, source, cfg.Addr)
		if err := app.Start(); err != nil {
			return err
		}
		<-done
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the content directory on change")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "debug logging")
	rootCmd.AddCommand(serveCmd)
}
