package ui

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/spotgrid/internal/report"
	"github.com/javiermolinar/spotgrid/internal/server"
)

func (a *App) serveCmd() *cobra.Command {
	var (
		bind    string
		logo    string
		logoDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Program Flow report server",
		Long: `Serve Program Flow PDFs over HTTP for clients that cannot render
them locally.

Endpoints:
  POST /api/reports/program-flow   render a report (?disposition=inline)
  GET  /api/reports/status         generator status
  GET  /healthz                    liveness`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if bind == "" {
				bind = a.config.Server.Bind
			}
			if logo == "" {
				logo = a.config.Report.LogoPath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.Run(ctx, server.Config{
				Bind:     bind,
				LogoPath: logo,
				LogoDir:  logoDir,
				Version:  Version,
			}, report.PDFGenerator{Author: appName}, a.logger)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default server.bind)")
	cmd.Flags().StringVar(&logo, "logo", "", "Default logo for reports (default report.logo_path)")
	cmd.Flags().StringVar(&logoDir, "logo-dir", "", "Directory of logos clients may name (default: the default logo's directory)")
	return cmd
}
