// Package prometheus counts lrucache events with client_golang counters.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/lrucache"
)

type Options struct {
	Namespace string // metric namespace; "" => "lrucache"
	// Registerer receives the collectors; nil => prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// ConstLabels are attached to every series, e.g. {"cache": "users"}.
	ConstLabels prometheus.Labels
}

type Hooks struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	deleteFailed  *prometheus.CounterVec
	lockContended prometheus.Counter
	pingFailed    prometheus.Counter
	connections   *prometheus.CounterVec
}

var _ lrucache.Hooks = (*Hooks)(nil)

func New(opts Options) (*Hooks, error) {
	ns := opts.Namespace
	if ns == "" {
		ns = "lrucache"
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: name, Help: help, ConstLabels: opts.ConstLabels,
		})
	}

	h := &Hooks{
		hits:   counter("hits_total", "Cache reads that found the key."),
		misses: counter("misses_total", "Cache reads that did not find the key."),
		deleteFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "delete_failures_total", ConstLabels: opts.ConstLabels,
			Help: "Failed key deletions by operation.",
		}, []string{"op"}),
		lockContended: counter("lock_contended_total", "Lock attempts lost to another owner."),
		pingFailed:    counter("ping_failures_total", "Failed keep-alive pings."),
		connections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "connections_total", ConstLabels: opts.ConstLabels,
			Help: "Store connection attempts by result.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{
		h.hits, h.misses, h.deleteFailed, h.lockContended, h.pingFailed, h.connections,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Hooks) Hit(string)  { h.hits.Inc() }
func (h *Hooks) Miss(string) { h.misses.Inc() }

func (h *Hooks) DeleteFailed(keys []string, _ error) {
	h.deleteFailed.WithLabelValues("del").Add(float64(len(keys)))
}

func (h *Hooks) CleanDeleteFailed(string, error) {
	h.deleteFailed.WithLabelValues("clean").Inc()
}

func (h *Hooks) LockContended(string) { h.lockContended.Inc() }
func (h *Hooks) PingFailed(error)     { h.pingFailed.Inc() }
func (h *Hooks) Connected(string)     { h.connections.WithLabelValues("ok").Inc() }

func (h *Hooks) ConnectionError(string, error) {
	h.connections.WithLabelValues("error").Inc()
}
