package main

import (
	"context"
	"fmt"
	"os"

	"github.com/javiermolinar/spotgrid/internal/config"
	"github.com/javiermolinar/spotgrid/internal/ui"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading config: %v\n", err)
		return err
	}

	app := ui.NewApp(nil, cfg)
	defer func() { _ = app.Close() }()
	return app.Execute(context.Background())
}
