package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JNickson/kube-log-annotator/internal/config"
	"github.com/JNickson/kube-log-annotator/internal/runtime"
	"github.com/JNickson/kube-log-annotator/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRunCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Tail node log files and emit annotated records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			// stdout carries records when output is stdout.
			slog.SetDefault(utils.NewLogger(os.Stderr, cfg.LogLevel))

			app, err := runtime.New(cfg)
			if err != nil {
				slog.Error("failed to build app", "error", err)
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app.Start(ctx)
			return nil
		},
	}
}

