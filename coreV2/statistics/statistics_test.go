package statistics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestData(t *testing.T) {
	registry := prometheus.NewRegistry()
	data := New(registry)

	data.CountExec(nil)
	data.CountExec(nil)
	data.CountExec(errors.New("K"))

	if got := testutil.ToFloat64(data.Exec.total.WithLabelValues("ok")); got != 2 {
		t.Errorf("want 2 ok calls, got %v", got)
	}
	if got := testutil.ToFloat64(data.Exec.total.WithLabelValues("reverted")); got != 1 {
		t.Errorf("want 1 reverted call, got %v", got)
	}

	data.SetCommit(7, 1641907057, time.Now())
	if info := data.GetLastCommitInfo(); info.Height != 7 {
		t.Errorf("want height 7, got %d", info.Height)
	}
	if got := testutil.ToFloat64(data.Commit.BlockTimeProm); got != 1641907057 {
		t.Errorf("block time %v", got)
	}

	data.SetPools(2, 1)
	if got := testutil.ToFloat64(data.Pools.pairs); got != 2 {
		t.Errorf("want 2 pairs, got %v", got)
	}
}

func TestData_Nil(t *testing.T) {
	var data *Data
	data.CountExec(nil)
	data.SetCommit(1, 1, time.Now())
	data.SetPools(1, 1)
	data.SetApiTime(time.Second, "/pairs")
	if info := data.GetLastCommitInfo(); info.Height != 0 {
		t.Fatal("nil data must report nothing")
	}
}
