package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/openkcm/tenancy/internal/config"
	"github.com/openkcm/tenancy/internal/log"
)

type RunFlags struct {
	GracefulShutdownSec     int64
	GracefulShutdownMessage string
	Env                     string
	// ConfigOptions are applied after the env override
	ConfigOptions []commoncfg.Option
}

// RunFuncWithSignalHandling loads the configuration and runs f with a context
// cancelled on SIGINT or SIGTERM. It returns the process exit code.
func RunFuncWithSignalHandling(f func(context.Context, *config.Config) error, runFlags RunFlags) int {
	ctx, cancelOnSignal := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer cancelOnSignal()

	opts := append([]commoncfg.Option{commoncfg.WithEnvOverride(runFlags.Env)}, runFlags.ConfigOptions...)

	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		log.Error(ctx, "Failed to load the configuration", err)
		_, _ = fmt.Fprintln(os.Stderr, err)

		return 1
	}

	log.Debug(ctx, "Starting the application", slog.String("baseDomain", cfg.Tenancy.BaseDomain))

	err = f(ctx, cfg)
	if err != nil {
		log.Error(ctx, "Failed to run the application", err)
		_, _ = fmt.Fprintln(os.Stderr, err)

		return 1
	}

	if runFlags.GracefulShutdownMessage != "" {
		_, _ = fmt.Fprintf(os.Stderr, runFlags.GracefulShutdownMessage+"\n", runFlags.GracefulShutdownSec)
	}

	time.Sleep(time.Duration(runFlags.GracefulShutdownSec) * time.Second)

	return 0
}
