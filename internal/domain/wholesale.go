package domain

import "time"

// WholesaleRequest is a B2B inquiry submitted through the storefront.
type WholesaleRequest struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"companyName"`
	ContactName string    `json:"contactName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Message     string    `json:"message,omitempty"`
	ProductKeys []string  `json:"productKeys,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
