package models

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus represents the overall system status.
type SystemStatus struct {
	Status     HealthStatus      `json:"status"`
	Time       Timestamp         `json:"time"`
	Subsystems []SubsystemStatus `json:"subsystems"`
	Providers  []ProviderStatus  `json:"providers"`
	Refresh    *RefreshStatus    `json:"refresh,omitempty"`
}

// SubsystemStatus represents the status of a subsystem.
type SubsystemStatus struct {
	Name   string       `json:"name"`
	Status HealthStatus `json:"status"`
	Detail *string      `json:"detail,omitempty"`
}

// ProviderStatus represents the status of an external provider.
type ProviderStatus struct {
	Provider            string       `json:"provider"`
	Status              HealthStatus `json:"status"`
	CircuitState        string       `json:"circuitState"`
	ConsecutiveFailures uint32       `json:"consecutiveFailures"`
	LastSuccessAt       *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt       *Timestamp   `json:"lastFailureAt,omitempty"`
	Message             *string      `json:"message,omitempty"`
}

// RefreshStatus summarizes the last background refresh run.
type RefreshStatus struct {
	LastRunAt       *Timestamp `json:"lastRunAt,omitempty"`
	DurationMs      int64      `json:"durationMs"`
	SessionsTotal   int        `json:"sessionsTotal"`
	QueriesTotal    int        `json:"queriesTotal"`
	Refreshed       int        `json:"refreshed"`
	Failed          int        `json:"failed"`
	SessionsEvicted int        `json:"sessionsEvicted"`
	TotalRuns       int64      `json:"totalRuns"`
}
