package models

const HealthHealthy = "healthy"

type HealthReport struct {
	Status    string   `json:"status"`
	Timestamp string   `json:"timestamp"`
	Issues    []string `json:"issues"`
	Error     string   `json:"error"`
	Retailers struct {
		Available    []string `json:"available"`
		CacheEnabled bool     `json:"cache_enabled"`
	} `json:"retailers"`
	Storage struct {
		RecipientsCount    int `json:"recipients_count"`
		SubscriptionsCount int `json:"subscriptions_count"`
	} `json:"storage"`
}

func (h HealthReport) Healthy() bool {
	return h.Status == HealthHealthy
}
