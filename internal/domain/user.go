package domain

import "time"

// User aggregates the canonical user node data. Email, phone, and address
// may be empty or shared across users; shared values are the fraud signal.
type User struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   string
	Country   string
	KYCStatus string
	RiskScore float64
	CreatedAt time.Time
	UpdatedAt time.Time
}
