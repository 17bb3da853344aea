package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/unipilot-backend/internal/app"
	"github.com/yungbote/unipilot-backend/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	a, err := app.New(ctx, app.Options{SkipMigrate: true})
	if err != nil {
		return err
	}
	defer a.Close()

	root := cli.NewRootCmd(&cli.App{
		Roadmaps:  a.Services.Roadmap,
		Migrate:   a.Migrate,
		JWTSecret: a.Cfg.JWTSecretKey,
	})
	return root.ExecuteContext(ctx)
}
