package domain

import "time"

// SpecialOffer promotes a product, optionally restricted to specific
// variants. It carries no price of its own; the discount comes from the
// normal tier schedules of the targeted variant.
type SpecialOffer struct {
	ID         string     `json:"id"`
	ProductID  string     `json:"productId"`
	TargetSKUs []string   `json:"targetSkus,omitempty"`
	Badge      string     `json:"badge,omitempty"`
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	IsActive   bool       `json:"isActive"`
	IsFeatured bool       `json:"isFeatured"`
	CreatedAt  time.Time  `json:"createdAt"`
}
