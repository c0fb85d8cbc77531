package models

type Subscription struct {
	URL     string `json:"url"`
	Company string `json:"company"`
	AddedAt string `json:"added_at"`
}

type SubscriptionRequest struct {
	Email string `json:"email"`
	URL   string `json:"url"`
}

// SubscriptionsResponse covers both list shapes: "products" when filtered by
// email, "subscriptions" keyed by email otherwise.
type SubscriptionsResponse struct {
	Products      []Subscription            `json:"products"`
	Subscriptions map[string][]Subscription `json:"subscriptions"`
}
