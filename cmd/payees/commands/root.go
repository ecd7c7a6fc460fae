package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	app "github.com/R3E-Network/payee_manager/internal/app"
	"github.com/R3E-Network/payee_manager/internal/app/runtime"
	"github.com/R3E-Network/payee_manager/internal/config"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

type options struct {
	configPath string
	upstream   string
	logLevel   string

	cfg *config.Config
	log *logger.Logger
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "payees",
		Short:         "Payee manager service and CLI",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromPath(opts.configPath)
			if err != nil {
				return err
			}
			if opts.upstream != "" {
				cfg.Upstream.BaseURL = opts.upstream
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			if opts.logLevel != "" {
				cfg.Logging.Level = opts.logLevel
			}
			opts.cfg = cfg
			opts.log = logger.New("payee-manager", logger.Config{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "config/payees.yaml", "path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.upstream, "upstream", "", "remote payee API base URL (e.g. http://127.0.0.1:8080)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override")

	root.AddCommand(
		serveCmd(opts),
		listCmd(opts),
		searchCmd(opts),
		addCmd(opts),
		migrateCmd(opts),
	)
	return root
}

// application builds the in-process application for one-shot commands. The
// returned function releases its connections.
func (o *options) application(ctx context.Context) (*app.Application, func(), error) {
	stores, res, err := runtime.OpenStores(ctx, o.cfg, o.log)
	if err != nil {
		return nil, nil, err
	}
	application, err := app.New(o.cfg, stores, o.log)
	if err != nil {
		_ = res.Close()
		return nil, nil, fmt.Errorf("build application: %w", err)
	}
	return application, func() { _ = res.Close() }, nil
}
