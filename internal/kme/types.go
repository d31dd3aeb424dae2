package kme

// HealthStatus represents the GET /api/v1/health response.
type HealthStatus struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// Health status values reported by the KME.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// KeyRequest represents the POST /api/v1/keys request.
type KeyRequest struct {
	BitLength int    `json:"bitLength"`
	Purpose   string `json:"purpose,omitempty"`
	SAEID     string `json:"saeId,omitempty"`
}

// KeyResponse represents the POST /api/v1/keys response.
type KeyResponse struct {
	Status            string `json:"status"`
	KeyID             string `json:"keyId"`
	KeyMaterialBase64 string `json:"keyMaterialBase64"`
	BitLength         int    `json:"bitLength"`
}
