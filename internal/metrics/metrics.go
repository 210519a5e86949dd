// Package metrics 暴露网关的 Prometheus 指标。所有方法对 nil 接收者安全。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fixgw"

// Metrics 持有独立注册表，避免污染全局默认注册表。
type Metrics struct {
	registry *prometheus.Registry

	ordersAccepted      prometheus.Counter
	ordersDuplicate     prometheus.Counter
	ordersSent          *prometheus.CounterVec
	sendFailures        prometheus.Counter
	translationFailures *prometheus.CounterVec
	errorNotices        prometheus.Counter
	notifications       *prometheus.CounterVec
	sendLatency         prometheus.Histogram
	connectionUp        prometheus.Gauge
	activeStreams       prometheus.Gauge
}

// New 创建并注册全部指标。
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ordersAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_accepted_total",
			Help:      "Orders accepted by the RPC front end and enqueued.",
		}),
		ordersDuplicate: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_duplicate_total",
			Help:      "Orders rejected by the duplicate guard.",
		}),
		ordersSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_sent_total",
			Help:      "Orders handed to the FIX session, by message type.",
		}, []string{"msg_type"}),
		sendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Orders the FIX session refused to send.",
		}),
		translationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_failures_total",
			Help:      "Requests dropped by the order translator, by field.",
		}, []string{"field"}),
		errorNotices: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "error_notices_total",
			Help:      "Out-of-band error notices drained by the pipeline.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Inbound application messages appended to the event cache.",
		}, []string{"msg_type"}),
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "queue_latency_seconds",
			Help:      "Time from enqueue to send.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
		}),
		connectionUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_up",
			Help:      "1 while the FIX session is logged on.",
		}),
		activeStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_streams",
			Help:      "Open server-stream consumers of the event cache.",
		}),
	}

	m.registry.MustRegister(
		m.ordersAccepted,
		m.ordersDuplicate,
		m.ordersSent,
		m.sendFailures,
		m.translationFailures,
		m.errorNotices,
		m.notifications,
		m.sendLatency,
		m.connectionUp,
		m.activeStreams,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry 返回底层注册表。
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler 返回 /metrics 处理器。
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gauge 注册一个按需求值的指标，如队列深度与缓存大小。
func (m *Metrics) Gauge(name, help string, fn func() float64) {
	if m == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

func (m *Metrics) OrderAccepted() {
	if m != nil {
		m.ordersAccepted.Inc()
	}
}

func (m *Metrics) OrderDuplicate() {
	if m != nil {
		m.ordersDuplicate.Inc()
	}
}

// OrderSent 记录一次成功发送及其排队时长。
func (m *Metrics) OrderSent(msgType string, queued time.Duration) {
	if m == nil {
		return
	}
	m.ordersSent.WithLabelValues(msgType).Inc()
	m.sendLatency.Observe(queued.Seconds())
}

func (m *Metrics) SendFailed() {
	if m != nil {
		m.sendFailures.Inc()
	}
}

func (m *Metrics) TranslationFailed(field string) {
	if m != nil {
		m.translationFailures.WithLabelValues(field).Inc()
	}
}

func (m *Metrics) ErrorNotice() {
	if m != nil {
		m.errorNotices.Inc()
	}
}

func (m *Metrics) Notification(msgType string) {
	if m != nil {
		m.notifications.WithLabelValues(msgType).Inc()
	}
}

// SessionState 在登录/登出回调中更新。
func (m *Metrics) SessionState(up bool) {
	if m == nil {
		return
	}
	if up {
		m.connectionUp.Set(1)
		return
	}
	m.connectionUp.Set(0)
}

// StreamOpened 返回关闭时调用的函数。
func (m *Metrics) StreamOpened() func() {
	if m == nil {
		return func() {}
	}
	m.activeStreams.Inc()
	return m.activeStreams.Dec
}
