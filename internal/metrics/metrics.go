// Package metrics 暴露 Prometheus 指标：HTTP 请求、配送方式拉取与订阅结果。
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/shipping"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Registry 指标集合，每个实例持有独立的 prometheus.Registry
type Registry struct {
	reg *prometheus.Registry

	Requests          *prometheus.CounterVec
	LatencyMS         *prometheus.HistogramVec
	ShippingFetches   *prometheus.CounterVec
	NewsletterSignups *prometheus.CounterVec
}

// New 创建并注册指标
func New() *Registry {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "shipping",
		Name:      "fetches_total",
		Help:      "Shipping method collection fetches by source and outcome.",
	}, []string{"source", "outcome"})
	signups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "newsletter",
		Name:      "signups_total",
		Help:      "Newsletter subscribe attempts by outcome.",
	}, []string{"outcome"})

	reg := prometheus.NewRegistry()
	reg.MustRegister(requests, latency, fetches, signups)
	return &Registry{
		reg:               reg,
		Requests:          requests,
		LatencyMS:         latency,
		ShippingFetches:   fetches,
		NewsletterSignups: signups,
	}
}

// Handler 返回 /metrics 处理器
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer 返回底层采集器
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveRequest 记录一次 HTTP 请求
func (r *Registry) ObserveRequest(handler string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	if handler == "" {
		handler = "unmatched"
	}
	r.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	r.LatencyMS.WithLabelValues(handler).Observe(float64(elapsed.Milliseconds()))
}

// ObserveNewsletterSignup 记录订阅结果：created / existing / invalid / failed
func (r *Registry) ObserveNewsletterSignup(outcome string) {
	if r == nil {
		return
	}
	r.NewsletterSignups.WithLabelValues(outcome).Inc()
}

// InstrumentFetcher 包装配送方式拉取器，按结果计数
func (r *Registry) InstrumentFetcher(source string, fetcher shipping.Fetcher) shipping.Fetcher {
	if r == nil || fetcher == nil {
		return fetcher
	}
	return shipping.FetcherFunc(func(ctx context.Context) ([]models.ShippingMethod, error) {
		methods, err := fetcher.Fetch(ctx)
		outcome := "ok"
		switch {
		case err != nil && ctx.Err() != nil:
			outcome = "canceled"
		case err != nil:
			outcome = "error"
		}
		r.ShippingFetches.WithLabelValues(source, outcome).Inc()
		return methods, err
	})
}
