package manager

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openkcm/tenancy/internal/config"
)

var tenancyDefaults = config.Tenancy{DefaultPageSize: 20, MaxPageSize: 100}

func (m *Metrics) Provisioning() *prometheus.CounterVec { return m.provisioning }
func (m *Metrics) Purged() prometheus.Counter           { return m.purged }
func (m *Metrics) ByStatus() *prometheus.GaugeVec       { return m.byStatus }
