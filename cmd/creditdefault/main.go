// Command creditdefault runs the credit-default training pipeline once:
// extract the contracts table, preprocess, train, evaluate and save the
// model. All settings come from the environment or a .env file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/YuminosukeSato/creditdefault/config"
	"github.com/YuminosukeSato/creditdefault/pkg/log"
	"github.com/YuminosukeSato/creditdefault/training"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "creditdefault: %+v\n", err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "creditdefault: %+v\n", err)
		return err
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.NewZerologLogger(os.Stderr, level, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum, err := training.Run(ctx, cfg, training.Deps{Logger: logger})
	if err != nil {
		logger.Error("run failed", err)
		return err
	}

	fmt.Fprintln(os.Stdout, sum.Report.String())
	logger.Info("run finished",
		log.RunIDKey, sum.RunID.String(),
		log.PathKey, sum.ModelPath,
		log.AUCKey, sum.Report.AUC,
	)
	return nil
}
