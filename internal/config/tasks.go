package config

const (
	TypeNamespacePurge = "tenant:purge"
	TypeTenantMetrics  = "tenant:metrics"
)

var DefinedTasks = map[string]struct{}{
	TypeNamespacePurge: {},
	TypeTenantMetrics:  {},
}
