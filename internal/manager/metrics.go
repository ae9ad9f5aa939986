package manager

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openkcm/tenancy/internal/model"
)

const (
	labelResult = "result"
	labelStatus = "status"

	ResultSuccess  = "success"
	ResultConflict = "conflict"
	ResultInvalid  = "invalid"
	ResultFailure  = "failure"
)

// Metrics holds the tenant lifecycle collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	provisioning *prometheus.CounterVec
	purged       prometheus.Counter
	byStatus     *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		provisioning: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tenancy_provisioning_total",
				Help: "Tenant registrations by result",
			},
			[]string{labelResult},
		),
		purged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tenancy_namespaces_purged_total",
				Help: "Tenant namespaces dropped after deactivation",
			},
		),
		byStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tenancy_tenants",
				Help: "The number of tenants in each status",
			},
			[]string{labelStatus},
		),
	}

	for _, c := range []prometheus.Collector{m.provisioning, m.purged, m.byStatus} {
		err := reg.Register(c)
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) observeProvisioning(result string) {
	if m == nil {
		return
	}

	m.provisioning.WithLabelValues(result).Inc()
}

func (m *Metrics) observePurge() {
	if m == nil {
		return
	}

	m.purged.Inc()
}

func (m *Metrics) setStatusCounts(counts map[model.TenantStatus]int) {
	if m == nil {
		return
	}

	for _, status := range model.TenantStatuses() {
		m.byStatus.WithLabelValues(status.String()).Set(float64(counts[status]))
	}
}
