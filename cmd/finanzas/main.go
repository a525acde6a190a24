package main

import (
	"fmt"
	"os"
	"time"

	"finanzas/internal/cli"
	"finanzas/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	ctx, cancel := cli.SignalContext(logger)
	res, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		cancel()
		logger.Error("Failed to initialize backend", log.FieldError, err)
		os.Exit(1)
	}

	a := &app{svc: res.Service, out: os.Stdout, now: time.Now}
	runErr := a.run(ctx, os.Args[1:])

	if err := res.Close(); err != nil {
		logger.Warn("Cleanup failed", log.FieldError, err)
	}
	cancel()
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "finanzas:", runErr)
		os.Exit(1)
	}
}
