package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront", Format: "console"})

	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	c := &cli{
		out:        os.Stdout,
		errOut:     os.Stderr,
		loadConfig: config.Load,
	}
	if err := execute(context.Background(), c, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
