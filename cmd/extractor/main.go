package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vfg2006/admanager-extractor/infrastructure/integrator/admanager"
	"github.com/vfg2006/admanager-extractor/internal/config"
	"github.com/vfg2006/admanager-extractor/internal/usecases/extracting"
	"github.com/vfg2006/admanager-extractor/pkg/apperrors"
	"github.com/vfg2006/admanager-extractor/pkg/log"
)

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute roda o comando e converte o resultado no código de saída do processo
func execute(args []string) int {
	v := viper.New()
	cmd := newRootCommand(v)
	cmd.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, _ = log.WithRunID(ctx)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return apperrors.ExitOK
	}

	logger := log.ForContext(ctx)
	logger.Error(apperrors.UserMessage(err))
	if appErr, ok := apperrors.As(err); ok {
		logger.Debugf("%+v", appErr.StackTrace())
	}
	logger.WithError(err).Debug("Detalhes do erro")

	return apperrors.ExitCode(err)
}

func newRootCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "admanager-extractor",
		Short:         "Extract a Google Ad Manager report into a normalized CSV table",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), v)
		},
	}

	cmd.Flags().String("data-dir", "", "data directory with config.json and out/tables (env KBC_DATADIR)")
	cmd.Flags().String("log-level", "", "log level: debug, info, warn or error (env LOG_LEVEL)")
	_ = v.BindPFlag("kbc_datadir", cmd.Flags().Lookup("data-dir"))
	_ = v.BindPFlag("log_level", cmd.Flags().Lookup("log-level"))

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.Wrap(err, apperrors.KindConfiguration, "invalid command line")
	})

	return cmd
}

func run(ctx context.Context, v *viper.Viper) error {
	level := v.GetString("log_level")
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}
	log.Configure(level)

	cfg, err := config.NewConfig(v)
	if err != nil {
		return err
	}

	// Define o nível de log com base na configuração
	log.Configure(cfg.App.LogLevel)
	logrus.WithFields(logrus.Fields{
		"run_id":   log.GetRunID(ctx),
		"data_dir": cfg.App.DataDir,
		"level":    cfg.App.LogLevel,
	}).Info("Iniciando extração do Ad Manager")

	integrator := admanager.New(cfg)
	service := extracting.NewService(cfg, integrator.NewReportClient)

	table, err := service.Run(ctx)
	if err != nil {
		return err
	}

	log.ForContext(ctx).WithField("path", table.Path).Info("Tabela gravada")
	return nil
}
