// Package metrics 提供 Prometheus 指标采集。
// 业务代码依赖 Recorder 接口；未启用指标时使用 Nop。
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder 业务侧指标接口
type Recorder interface {
	// RecordRun 记录一次节目单指派运行
	RecordRun(outcome string, duration time.Duration)
	// RecordDecision 记录单个节目的决策状态与降级策略（无降级时 strategy 为空）
	RecordDecision(state, strategy string)
	// ObserveHTTP 记录一次 HTTP 请求
	ObserveHTTP(method, route string, status int, duration time.Duration)
}

// Nop 空实现
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) RecordRun(string, time.Duration) {}
func (Nop) RecordDecision(string, string) {}
func (Nop) ObserveHTTP(string, string, int, time.Duration) {}

// Prometheus 基于 Prometheus 的 Recorder 实现
type Prometheus struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	decisions    *prometheus.CounterVec
	fallbacks    *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus 创建采集器。reg 为 nil 时使用 DefaultRegisterer，namespace 为空时为 "designation"。
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "designation"
	}
	p := &Prometheus{reg: reg, namespace: namespace}
	p.ensureRegistered()
	return p
}

func (p *Prometheus) ensureRegistered() {
	p.once.Do(func() {
		p.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "runs_total",
			Help:      "Designation runs by outcome.",
		}, []string{"outcome"})

		p.runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a designation run including persistence.",
			Buckets:   prometheus.DefBuckets,
		})

		p.decisions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "decisions_total",
			Help:      "Part decisions by terminal state.",
		}, []string{"state"})

		p.fallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "fallbacks_total",
			Help:      "Decisions resolved by a fallback strategy.",
		}, []string{"strategy"})

		p.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"})

		p.httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"})

		p.reg.MustRegister(p.runs, p.runDuration, p.decisions, p.fallbacks, p.httpRequests, p.httpLatency)
	})
}

func (p *Prometheus) RecordRun(outcome string, duration time.Duration) {
	p.runs.WithLabelValues(outcome).Inc()
	p.runDuration.Observe(duration.Seconds())
}

func (p *Prometheus) RecordDecision(state, strategy string) {
	p.decisions.WithLabelValues(state).Inc()
	if strategy != "" {
		p.fallbacks.WithLabelValues(strategy).Inc()
	}
}

func (p *Prometheus) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}
