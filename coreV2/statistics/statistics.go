package statistics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Data holds the engine metrics. A nil *Data is valid and records nothing.
type Data struct {
	Exec   execCounter
	Commit commitInfo
	Api    apiResponseTime
	Pools  poolGauges
}

type LastCommitInfo struct {
	Height   uint64
	Duration float64
}

type execCounter struct {
	total *prometheus.CounterVec
}

type commitInfo struct {
	sync.RWMutex
	HeightProm     prometheus.Gauge
	DurationProm   prometheus.Gauge
	BlockTimeProm  prometheus.Gauge
	LastCommitInfo LastCommitInfo
}

type apiResponseTime struct {
	sync.Mutex
	responseTime *prometheus.GaugeVec
}

type poolGauges struct {
	pairs        prometheus.Gauge
	distributors prometheus.Gauge
}

func New(registerer prometheus.Registerer) *Data {
	execVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swap_exec_total",
			Help: "Executed state calls by result",
		},
		[]string{"result"},
	)
	apiVec := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "swap_api",
			Help: "Api response duration by path",
		},
		[]string{"path"},
	)
	height := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swap_height",
			Help: "Last committed height",
		},
	)
	commitDuration := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swap_last_commit_duration",
			Help: "Last commit duration in seconds",
		},
	)
	blockTime := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swap_block_time",
			Help: "Block timestamp of the last commit",
		},
	)
	pairs := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swap_pairs",
			Help: "Number of trading pairs",
		},
	)
	distributors := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "swap_reward_pools",
			Help: "Number of reward distributors",
		},
	)
	registerer.MustRegister(execVec, apiVec, height, commitDuration, blockTime, pairs, distributors)

	return &Data{
		Exec:   execCounter{total: execVec},
		Commit: commitInfo{HeightProm: height, DurationProm: commitDuration, BlockTimeProm: blockTime},
		Api:    apiResponseTime{responseTime: apiVec},
		Pools:  poolGauges{pairs: pairs, distributors: distributors},
	}
}

// CountExec records the outcome of one state call.
func (d *Data) CountExec(err error) {
	if d == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "reverted"
	}
	d.Exec.total.WithLabelValues(result).Inc()
}

func (d *Data) SetCommit(height uint64, blockTime uint64, started time.Time) {
	if d == nil {
		return
	}

	d.Commit.Lock()
	defer d.Commit.Unlock()

	durationSeconds := time.Since(started).Seconds()
	d.Commit.HeightProm.Set(float64(height))
	d.Commit.DurationProm.Set(durationSeconds)
	d.Commit.BlockTimeProm.Set(float64(blockTime))
	d.Commit.LastCommitInfo = LastCommitInfo{Height: height, Duration: durationSeconds}
}

func (d *Data) GetLastCommitInfo() LastCommitInfo {
	if d == nil {
		return LastCommitInfo{}
	}

	d.Commit.RLock()
	defer d.Commit.RUnlock()

	return d.Commit.LastCommitInfo
}

func (d *Data) SetPools(pairs, distributors int) {
	if d == nil {
		return
	}

	d.Pools.pairs.Set(float64(pairs))
	d.Pools.distributors.Set(float64(distributors))
}

func (d *Data) SetApiTime(duration time.Duration, path string) {
	if d == nil {
		return
	}

	d.Api.Lock()
	defer d.Api.Unlock()

	d.Api.responseTime.With(prometheus.Labels{"path": path}).Set(duration.Seconds())
}
