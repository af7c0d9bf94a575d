package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"

	"github.com/comigor/becas-go/internal/cli"
	"github.com/comigor/becas-go/internal/config"
	"github.com/comigor/becas-go/internal/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.L.Debug("no .env file found, using environment variables")
	}

	cmd := cli.NewRootCmd(cli.DefaultDeps())
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, config.ErrMissingCredential) {
			logger.L.Error("cannot start without an API key", "error", err)
			os.Exit(2)
		}
		logger.L.Error("becas failed", "error", err)
		os.Exit(1)
	}
}
