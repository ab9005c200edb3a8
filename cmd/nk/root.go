package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/and161185/notekeeper/internal/api"
	"github.com/and161185/notekeeper/internal/config"
	"github.com/and161185/notekeeper/internal/logging"
	"github.com/and161185/notekeeper/internal/session"
)

// app carries flag values and the dependencies built from them before each command.
type app struct {
	server     string
	configPath string
	strategy   string
	verbose    bool

	cfg    config.Config
	log    *zap.Logger
	sess   *session.Session
	client *api.Client
}

func newRootCmd(version, buildDate string) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "nk",
		Short:         "Notes client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.server, "server", "", "backend base URL (default from config, "+config.DefaultBaseURL+")")
	pf.StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultFile()+")")
	pf.StringVar(&a.strategy, "update-strategy", "", "how edits are applied: recreate or replace")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log HTTP requests to stderr")

	root.AddCommand(
		newVersionCmd(version, buildDate),
		newHealthCmd(a),
		newSumCmd(a),
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newNotesCmd(a),
		newShellCmd(a),
	)
	return root
}

// setup resolves config (file < env < flags) and builds the logger, session and client.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.server != "" {
		cfg.BaseURL = a.server
	}
	if a.strategy != "" {
		cfg.UpdateStrategy = a.strategy
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	sess, err := session.New(session.NewFileStore(cfg.ConfigDir))
	if err != nil {
		return err
	}
	strategy, err := api.ParseUpdateStrategy(cfg.UpdateStrategy)
	if err != nil {
		return err
	}
	client, err := api.New(cfg.BaseURL, sess,
		api.WithHTTPClient(&http.Client{}),
		api.WithLogger(log.Named("api")),
		api.WithUpdateStrategy(strategy),
	)
	if err != nil {
		return err
	}

	a.cfg, a.log, a.sess, a.client = cfg, log, sess, client
	a.log.Debug("config",
		zap.String("base_url", cfg.BaseURL),
		zap.String("update_strategy", strategy.String()),
		zap.Duration("timeout", cfg.Timeout),
	)
	return nil
}

// ctx bounds one command's backend work by the configured timeout.
func (a *app) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.cfg.Timeout)
}

func newVersionCmd(version, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Args:  cobra.NoArgs,
		// no config needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nk %s (%s)\n", version, buildDate)
		},
	}
}
