// Package metrics 提供基于Prometheus的指标收集框架
//
// # 核心概念
//
// **1. Counter（计数器）**：只增不减的累计值
//   - 示例：HTTP请求总数、借阅审批总数、快照写失败总数
//   - 特点：只能调用Inc()递增
//
// **2. Gauge（仪表盘）**：可增可减的瞬时值
//   - 示例：正在处理的HTTP请求数、熔断器状态
//   - 特点：可以调用Inc()、Dec()、Set()
//
// **3. Histogram（直方图）**：观测值的分布
//   - 示例：HTTP请求耗时、外部元数据查询耗时
//   - 特点：自动计算分位数（P50、P90、P99）
//
// # 使用示例
//
//	// 1. 初始化Metrics
//	metrics.InitMetrics()
//
//	// 2. 在HTTP服务中暴露/metrics端点
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	// 3. 在业务代码中记录指标
//	metrics.LoanTransitionsTotal.With(prometheus.Labels{"action": "approved"}).Inc()
//
// # 常见指标命名规范
//
// 1. **Counter**: 以`_total`结尾（http_requests_total）
// 2. **Histogram**: 以单位结尾（http_request_duration_seconds）
// 3. **Gauge**: 使用现在时态（http_requests_in_progress）
//
// 最佳实践：用有限取值的标签区分维度（method/path/status），
// 避免高基数标签（不要用user_id、book_id作为标签）
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册）
	initialized bool

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数（Counter）
	// 标签：method（GET/POST）、path（/api/v1/books）、status（200/500）
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时（Histogram）
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数（Gauge）
	HTTPRequestsInProgress prometheus.Gauge

	// 借阅业务指标

	// LoanTransitionsTotal 图书状态变更总数（Counter）
	// 标签：action（created/updated/deleted/requested/approved/rejected/returned）
	LoanTransitionsTotal *prometheus.CounterVec

	// NotificationsAppendedTotal 通知追加总数（Counter）
	NotificationsAppendedTotal prometheus.Counter

	// 持久化指标

	// PersistenceWriteFailuresTotal 集合快照写入失败总数（Counter）
	// 标签：collection（books/notifications）
	// 快照写失败不阻断业务,该指标是发现内存与持久化状态偏离的唯一信号
	PersistenceWriteFailuresTotal *prometheus.CounterVec

	// 外部元数据查询指标

	// MetadataLookupsTotal 元数据查询总数（Counter）
	// 标签：result（success/failure/rejected）
	MetadataLookupsTotal *prometheus.CounterVec

	// MetadataLookupDuration 元数据查询耗时（Histogram）
	MetadataLookupDuration prometheus.Histogram

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（Gauge）
	// 0=CLOSED, 1=OPEN, 2=HALF_OPEN
	CircuitBreakerState *prometheus.GaugeVec

	// 消息队列指标

	// MessagesPublishedTotal 变更事件发布总数（Counter）
	// 标签：exchange（交换机）、routing_key（路由键）
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
//
// 必须在程序启动时调用一次，用于注册所有指标到全局Registry
//
// 设计要点：
// 1. 使用promauto.New*自动注册到默认Registry
// 2. Counter使用*Vec支持标签（多维度统计）
// 3. Histogram的Buckets根据业务场景定制
func InitMetrics() {
	// 防止重复初始化
	if initialized {
		return
	}
	initialized = true

	// HTTP请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP请求耗时（秒）",
			// 桶设置：1ms、10ms、100ms、500ms、1s、5s、10s
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	// 借阅业务指标
	LoanTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_transitions_total",
			Help: "借阅生命周期转换总数",
		},
		[]string{"action"},
	)

	NotificationsAppendedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_appended_total",
			Help: "通知追加总数",
		},
	)

	// 持久化指标
	PersistenceWriteFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persistence_write_failures_total",
			Help: "集合快照写入失败总数",
		},
		[]string{"collection"},
	)

	// 元数据查询指标
	MetadataLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_lookups_total",
			Help: "外部元数据查询总数",
		},
		[]string{"result"},
	)

	MetadataLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "metadata_lookup_duration_seconds",
			Help: "外部元数据查询耗时（秒）",
			// 外部HTTP调用耗时较长
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
	)

	// 熔断器指标
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	// 消息队列指标
	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "变更事件发布总数",
		},
		[]string{"exchange", "routing_key"},
	)
}

// IncCounterVec 递增CounterVec（带标签）
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter == nil {
		return
	}
	counter.With(labels).Inc()
}

// SetGaugeVec 设置GaugeVec值（带标签）
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	if gauge == nil {
		return
	}
	gauge.With(labels).Set(value)
}

// ObserveHistogram 记录Histogram观测值
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	if histogram == nil {
		return
	}
	histogram.Observe(value)
}
