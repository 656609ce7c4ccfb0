// Package api serves read-only queries over the exchange state.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/MinterTeam/minter-swap/coreV2/code"
	"github.com/MinterTeam/minter-swap/coreV2/state"
	"github.com/MinterTeam/minter-swap/coreV2/statistics"
	"github.com/MinterTeam/minter-swap/coreV2/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/handlers"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	ErrorInvalidAddress = errors.New("INVALID_ADDRESS")
	ErrorInvalidHeight  = errors.New("INVALID_HEIGHT")
)

type Service struct {
	state    *state.State
	stats    *statistics.Data
	gatherer prometheus.Gatherer
	logger   log.Logger
	version  string
}

// NewService returns the query service over s. A nil gatherer disables
// /metrics.
func NewService(s *state.State, stats *statistics.Data, gatherer prometheus.Gatherer, logger log.Logger, version string) *Service {
	return &Service{
		state:    s,
		stats:    stats,
		gatherer: gatherer,
		logger:   logger,
		version:  version,
	}
}

// Handler returns the routes wrapped with panic recovery and response
// compression.
func (s *Service) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(s.measure)

	r.GET("/status", s.status)
	r.GET("/pairs", s.pairs)
	r.GET("/pairs/:tokenA/:tokenB", s.pair)
	r.GET("/quote/:from/:to/:amount", s.quote)
	r.GET("/staking", s.distributors)
	r.GET("/staking/:token", s.distributor)
	r.GET("/staking/:token/earned/:account", s.earned)
	r.GET("/export", s.export)
	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	return handlers.CompressHandler(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(r))
}

// Run serves the API on addr until ctx is done.
func Run(ctx context.Context, srvc *Service, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           srvc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			srvc.logger.Error("api shutdown", "err", err)
		}
	}()

	srvc.logger.Info("api listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Service) measure(c *gin.Context) {
	start := time.Now()
	c.Next()
	if path := c.FullPath(); path != "" {
		s.stats.SetApiTime(time.Since(start), path)
	}
}

func (s *Service) fail(c *gin.Context, status int, err error) {
	s.logger.Debug("api request failed", "path", c.Request.URL.Path, "err", err)
	c.JSON(status, gin.H{"error": code.NewError(err)})
}

// checkState resolves the ?height= query parameter, the live state when absent.
func (s *Service) checkState(c *gin.Context) (*state.CheckState, bool) {
	var height uint64
	if value := c.Query("height"); value != "" {
		var err error
		if height, err = strconv.ParseUint(value, 10, 64); err != nil {
			s.fail(c, http.StatusBadRequest, errors.Wrapf(ErrorInvalidHeight, "%q", value))
			return nil, false
		}
	}

	cState, err := s.state.CheckStateAtHeight(height)
	if err != nil {
		s.fail(c, http.StatusNotFound, errors.Wrap(ErrorInvalidHeight, err.Error()))
		return nil, false
	}
	return cState, true
}

func parseAddress(c *gin.Context, param string) (types.Address, error) {
	value := c.Param(param)
	if !types.IsHexAddress(value) {
		return types.Address{}, errors.Wrapf(ErrorInvalidAddress, "%s %q", param, value)
	}
	return types.HexToAddress(value), nil
}

type statusResponse struct {
	Version        string  `json:"version"`
	Height         int64   `json:"height"`
	BlockTime      uint64  `json:"block_time"`
	CommitDuration float64 `json:"commit_duration"`
	Factory        string  `json:"factory"`
	Pairs          int     `json:"pairs"`
}

func (s *Service) status(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponse{
		Version:        s.version,
		Height:         s.state.Height(),
		BlockTime:      s.state.BlockTime(),
		CommitDuration: s.stats.GetLastCommitInfo().Duration,
		Factory:        s.state.Swap.Address().String(),
		Pairs:          s.state.Swap.AllPairsLength(),
	})
}

func (s *Service) export(c *gin.Context) {
	cState, ok := s.checkState(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, cState.Export())
}
