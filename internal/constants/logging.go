package constants

// LogLevel represents available logging levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func (l LogLevel) String() string {
	return string(l)
}

// Log attribute keys shared by every component
const (
	LogKeyTenantID   = "tenantId"
	LogKeySchemaName = "schemaName"
	LogKeyRequestID  = "requestId"
	LogKeyTaskType   = "taskType"
)
