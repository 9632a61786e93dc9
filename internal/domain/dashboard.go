package domain

import "github.com/shopspring/decimal"

// DashboardStats is what a repository can answer in one round trip.
type DashboardStats struct {
	DonorCount      int64           `json:"donorCount"`
	AvailableBlood  decimal.Decimal `json:"availableBlood"`
	PendingRequests int64           `json:"pendingRequests"`
	Inventory       *Inventory      `json:"inventory"`
}

// WeeklyStats counts donations collected within one ISO week.
type WeeklyStats struct {
	DonationCount int64           `json:"donationCount"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
}
