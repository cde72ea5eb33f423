package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trilhalab/portalctl/internal/api"
	"github.com/trilhalab/portalctl/internal/auth"
	"github.com/trilhalab/portalctl/internal/config"
	"github.com/trilhalab/portalctl/internal/log"
	"github.com/trilhalab/portalctl/internal/session"
)

// deps wires the client stack for one command invocation. Everything hangs
// off the session store; there are no package-level singletons.
type deps struct {
	cfg    *config.Config
	logger *log.Logger
	store  *session.Store
	client *api.Client
	auth   *auth.Service
}

// buildDeps resolves configuration and constructs the store, API client and
// auth service. Extra client options are applied last so commands can
// override defaults (the login command disables the session-expired hint).
func buildDeps(cmd *cobra.Command, opts ...api.Option) (*deps, error) {
	apiURL, _ := cmd.Flags().GetString("api-url")
	stateDir, _ := cmd.Flags().GetString("state-dir")
	logLevel, _ := cmd.Flags().GetString("log-level")

	cfg, err := config.Load(apiURL, stateDir, logLevel)
	if err != nil {
		return nil, err
	}

	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.LogLevel)
	logCfg.Output = cmd.ErrOrStderr()
	logger := log.New(logCfg)
	log.SetDefaultLogger(logger)

	store, err := session.NewStore(cfg.StateDir, logger)
	if err != nil {
		return nil, err
	}

	errOut := cmd.ErrOrStderr()
	clientOpts := append([]api.Option{
		api.WithLogger(logger),
		api.WithSessionExpiredHook(func() {
			fmt.Fprintln(errOut, "Session expired. Run 'portalctl login' to re-authenticate.")
		}),
	}, opts...)

	client, err := api.New(cfg.APIURL, store, clientOpts...)
	if err != nil {
		return nil, err
	}

	return &deps{
		cfg:    cfg,
		logger: logger,
		store:  store,
		client: client,
		auth:   auth.NewService(client, store, logger),
	}, nil
}

func (d *deps) close() {
	d.store.Close()
}
