package splitter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "splitter",
		Name:      "operations_total",
		Help:      "Splitter operations by name and result",
	}, []string{"op", "result"})

	mCredited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "splitter",
		Name:      "credited_units_total",
		Help:      "Asset units credited to shareholder allocations",
	})

	mWithdrawn = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "splitter",
		Name:      "withdrawn_units_total",
		Help:      "Asset units withdrawn by shareholders",
	})

	mTransferred = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "splitter",
		Name:      "transferred_units_total",
		Help:      "Unused asset units moved out by the admin",
	})
)

func observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	mOperations.WithLabelValues(op, result).Inc()
}
