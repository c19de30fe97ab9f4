package fetcher

import (
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/fetcher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	finalizedBlock = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rwa_listener_finalized_block",
			Help: "The last finalized block height reported by the node",
		},
	)

	following = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rwa_listener_following",
			Help: "1 when the listener waits for new finalized blocks, 0 while catching up",
		},
	)

	blockFetchTime = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rwa_listener_block_fetch_duration_seconds",
			Help:    "Time taken to fetch and decode a finalized block",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func FinalizedBlockLogSet(height uint64) {
	finalizedBlock.Set(float64(height))
}

func FetchModeSet(mode fetcher.FetchMode) {
	if mode == fetcher.ModeFollowing {
		following.Set(1)
		return
	}
	following.Set(0)
}

func BlockFetchDurationLog(d time.Duration) {
	blockFetchTime.Observe(d.Seconds())
}
