package domain

// Branch is a blood bank collection site.
type Branch struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	PostalCode string `json:"postalCode"`
}

// Staff is a member of staff who records donations or raises requests.
type Staff struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	BranchID int64  `json:"branchId"`
}
