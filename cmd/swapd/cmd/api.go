package cmd

import (
	"net/url"
	"time"

	"github.com/MinterTeam/minter-swap/api"
	"github.com/MinterTeam/minter-swap/coreV2/statistics"
	"github.com/MinterTeam/minter-swap/log"
	"github.com/MinterTeam/minter-swap/version"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const poolsRefreshInterval = 10 * time.Second

// RunAPI serves the query API over the latest committed state.
var RunAPI = &cobra.Command{
	Use:   "api",
	Short: "Serve the query API",
	RunE:  runAPI,
}

func runAPI(cmd *cobra.Command, _ []string) error {
	logger, err := log.NewLogger(cfg)
	if err != nil {
		return err
	}

	listen, err := url.Parse(cfg.APIListenAddress)
	if err != nil {
		return errors.Wrap(err, "parse api_listen_addr")
	}

	s, appDB, closer, err := openState(0, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	if deployment, ok, err := appDB.GetDeployment(); err != nil {
		return err
	} else if ok {
		logger.Info("serving deployment", "factory", deployment.FactoryV2.String(), "router", deployment.Router02.String())
	} else {
		logger.Info("no deployment found, run fixture first to populate the state")
	}

	var (
		stats    *statistics.Data
		gatherer prometheus.Gatherer
	)
	if cfg.Prometheus {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		stats = statistics.New(registry)
		gatherer = registry
		s.SetStatistics(stats)
	}

	srvc := api.NewService(s, stats, gatherer, logger.With("module", "api"), version.Version)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return api.Run(ctx, srvc, listen.Host)
	})
	if stats != nil {
		g.Go(func() error {
			ticker := time.NewTicker(poolsRefreshInterval)
			defer ticker.Stop()
			for {
				stats.SetPools(s.Swap.AllPairsLength(), len(s.Staking.StakingTokens()))
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		})
	}
	return g.Wait()
}
