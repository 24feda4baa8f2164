package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/lib/log"
	"github.com/dep2p/go-chatnet/pkg/types"
)

var logger = log.Logger("core/metrics")

const namespace = "chatnet"

// serviceStates 状态标签的全部取值
var serviceStates = []string{"inactive", "connecting", "active", "cooldown"}

// Collector 连接层指标
type Collector struct {
	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	throttled       *prometheus.CounterVec
	serviceState    *prometheus.GaugeVec
	transitions     *prometheus.CounterVec
}

var (
	_ pkgif.AttemptObserver      = (*Collector)(nil)
	_ pkgif.ServiceStateObserver = (*Collector)(nil)
)

// NewCollector 创建指标并注册到 reg
//
// 已注册过的同名指标会被复用。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "connect_attempts_total",
				Help:      "Connection attempts per route and outcome",
			},
			[]string{"route", "outcome"},
		),
		attemptDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "connect_attempt_duration_seconds",
				Help:      "Duration of connection attempts that reached the network",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route"},
		),
		throttled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "route_throttled_total",
				Help:      "Attempts skipped because the route was cooling down",
			},
			[]string{"route"},
		),
		serviceState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "service_state",
				Help:      "Current reconnect state of a service (1 for the active state)",
			},
			[]string{"service", "state"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "service_transitions_total",
				Help:      "Reconnect state transitions per service and target state",
			},
			[]string{"service", "state"},
		),
	}

	c.attempts = register(reg, c.attempts)
	c.attemptDuration = register(reg, c.attemptDuration)
	c.throttled = register(reg, c.throttled)
	c.serviceState = register(reg, c.serviceState)
	c.transitions = register(reg, c.transitions)
	return c
}

// register 注册收集器，重复注册时返回已有的收集器
func register[T prometheus.Collector](reg prometheus.Registerer, col T) T {
	if reg == nil {
		return col
	}
	if err := reg.Register(col); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		logger.Warn("注册指标失败", "err", err)
	}
	return col
}

// ObserveAttempt 实现 AttemptObserver
func (c *Collector) ObserveAttempt(route types.RouteType, outcome pkgif.AttemptOutcome, elapsed time.Duration) {
	r := route.String()
	c.attempts.WithLabelValues(r, outcome.String()).Inc()
	if outcome == pkgif.OutcomeThrottled {
		c.throttled.WithLabelValues(r).Inc()
		return
	}
	c.attemptDuration.WithLabelValues(r).Observe(elapsed.Seconds())
}

// ObserveServiceState 实现 ServiceStateObserver
func (c *Collector) ObserveServiceState(service string, state string) {
	for _, s := range serviceStates {
		v := 0.0
		if s == state {
			v = 1
		}
		c.serviceState.WithLabelValues(service, s).Set(v)
	}
	c.transitions.WithLabelValues(service, state).Inc()
}
