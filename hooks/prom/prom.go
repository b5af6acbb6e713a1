// Package prom counts cache outcomes with Prometheus.
//
//	h := prom.New(prometheus.DefaultRegisterer, prom.Options{})
//	cache, _ := resultcache.New(resultcache.Options[Row]{..., Hooks: h})
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/unkn0wn-root/resultcache"
)

type Options struct {
	Namespace   string            // metric name prefix; "" => "resultcache"
	ConstLabels prometheus.Labels // e.g. {"cache": "orders"}
}

type Hooks struct {
	Hits           prometheus.Counter
	Misses         *prometheus.CounterVec // reason
	Dropped        *prometheus.CounterVec // reason
	RemoveFailures prometheus.Counter
	Clears         *prometheus.CounterVec // result: "ok" | "error"
	ClearedKeys    prometheus.Counter
}

var _ resultcache.Hooks = (*Hooks)(nil)

// New registers the collectors on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer, opts Options) *Hooks {
	ns := opts.Namespace
	if ns == "" {
		ns = "resultcache"
	}
	f := promauto.With(reg)
	return &Hooks{
		Hits: f.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "hits_total",
			Help:        "Total number of reads that returned a value",
			ConstLabels: opts.ConstLabels,
		}),
		Misses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "misses_total",
			Help:        "Total number of reads that returned nothing, by reason",
			ConstLabels: opts.ConstLabels,
		}, []string{"reason"}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "set_dropped_total",
			Help:        "Total number of writes that were not performed, by reason",
			ConstLabels: opts.ConstLabels,
		}, []string{"reason"}),
		RemoveFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "remove_failures_total",
			Help:        "Total number of failed removals",
			ConstLabels: opts.ConstLabels,
		}),
		Clears: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "clears_total",
			Help:        "Total number of namespace clears, by result",
			ConstLabels: opts.ConstLabels,
		}, []string{"result"}),
		ClearedKeys: f.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Name:        "cleared_keys_total",
			Help:        "Total number of keys deleted by clears",
			ConstLabels: opts.ConstLabels,
		}),
	}
}

func (h *Hooks) Hit(string)                  { h.Hits.Inc() }
func (h *Hooks) Miss(_, reason string)       { h.Misses.WithLabelValues(reason).Inc() }
func (h *Hooks) SetDropped(_, reason string) { h.Dropped.WithLabelValues(reason).Inc() }
func (h *Hooks) RemoveFailed(string, error)  { h.RemoveFailures.Inc() }

func (h *Hooks) Cleared(_ string, removed int, err error) {
	if err != nil {
		h.Clears.WithLabelValues("error").Inc()
		return
	}
	h.Clears.WithLabelValues("ok").Inc()
	h.ClearedKeys.Add(float64(removed))
}
