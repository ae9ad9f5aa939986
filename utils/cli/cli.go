package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	SleepFlag       = "sleep"
	RunningMessage  = "Waiting for commands..."
	ShutdownMessage = "Shutting down gracefully..."
)

// NewRootCmdWithInfinitySleep creates a root command that blocks when --sleep
// is given, so a container can stay up while the CLI is invoked through exec.
// The sleep ends on SIGINT, SIGTERM or when the command context is done.
func NewRootCmdWithInfinitySleep(
	ctx context.Context,
	use string,
	shortDesc string,
	longDesc string,
) *cobra.Command {
	var sleep bool

	rootCmd := &cobra.Command{
		Use:          use,
		Short:        shortDesc,
		Long:         longDesc,
		SilenceUsage: true,

		Run: func(cmd *cobra.Command, _ []string) {
			if sleep {
				sleepUntilDone(cmd)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&sleep, SleepFlag, false, "Block until terminated")
	rootCmd.SetContext(ctx)

	return rootCmd
}

func sleepUntilDone(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cmd.Println(RunningMessage)
	<-ctx.Done()
	cmd.Println(ShutdownMessage)
}
