// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// 各サービス層が要求するメトリクス記録インターフェースをすべて満たす。
type Collector struct {
	feedBuildLatency prometheus.Histogram
	feedMergedEvents prometheus.Histogram
	followTotal      prometheus.Counter
	unfollowTotal    prometheus.Counter
	catalogLookup    *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		feedBuildLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cinelog_feed_build_latency_seconds",
			Help:    "アクティビティフィード構築のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		feedMergedEvents: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cinelog_feed_merged_events",
			Help:    "1回のフィード構築でマージされたイベント数",
			Buckets: []float64{0, 10, 25, 50, 100, 250, 500, 1000},
		}),
		followTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinelog_follow_total",
			Help: "フォロー操作の合計数",
		}),
		unfollowTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cinelog_unfollow_total",
			Help: "フォロー解除操作の合計数",
		}),
		catalogLookup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinelog_catalog_lookup_total",
			Help: "映画カタログ照会の合計数（キャッシュヒット別）",
		}, []string{"cache"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cinelog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"method", "status_code"}),
	}

	reg.MustRegister(
		c.feedBuildLatency,
		c.feedMergedEvents,
		c.followTotal,
		c.unfollowTotal,
		c.catalogLookup,
		c.httpStatus,
	)

	return c
}

// ObserveFeedBuild はフィード構築のレイテンシとマージ件数を記録する。
func (c *Collector) ObserveFeedBuild(duration time.Duration, mergedEvents int) {
	c.feedBuildLatency.Observe(duration.Seconds())
	c.feedMergedEvents.Observe(float64(mergedEvents))
}

// RecordFollow はフォロー操作を記録する。
func (c *Collector) RecordFollow() {
	c.followTotal.Inc()
}

// RecordUnfollow はフォロー解除操作を記録する。
func (c *Collector) RecordUnfollow() {
	c.unfollowTotal.Inc()
}

// RecordCatalogLookup は映画カタログ照会を記録する。
func (c *Collector) RecordCatalogLookup(cacheHit bool) {
	label := "miss"
	if cacheHit {
		label = "hit"
	}
	c.catalogLookup.WithLabelValues(label).Inc()
}

// RecordHTTPRequest はHTTPレスポンスをメソッドとステータスコード別に記録する。
func (c *Collector) RecordHTTPRequest(method, path string, statusCode int) {
	c.httpStatus.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
