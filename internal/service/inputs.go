package service

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/priyag/fraudgraph/backend/internal/domain"
)

// UserInput is an ingestion payload for a user entity.
type UserInput struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Address   string  `json:"address"`
	Country   string  `json:"country"`
	KYCStatus string  `json:"kycStatus"`
	RiskScore float64 `json:"riskScore"`
}

// TransactionInput is an ingestion payload for a transaction entity.
// Amount accepts a JSON number or a numeric string; provider exports mix
// both.
type TransactionInput struct {
	ID                string         `json:"id"`
	OriginUserID      string         `json:"originUserId"`
	DestinationUserID string         `json:"destinationUserId"`
	Amount            any            `json:"amount"`
	Currency          string         `json:"currency"`
	Type              string         `json:"type"`
	Status            string         `json:"status"`
	IPAddress         string         `json:"ipAddress"`
	DeviceID          string         `json:"deviceId"`
	RiskScore         float64        `json:"riskScore"`
	RiskLevel         string         `json:"riskLevel"`
	Timestamp         string         `json:"timestamp"`
	Metadata          map[string]any `json:"metadata"`
}

// Validate normalizes the payload and reports the first malformed field.
func (in *UserInput) Validate() error {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		return domain.NewValidationError("id", "required")
	}
	if in.Name == "" {
		return domain.NewValidationError("name", "required")
	}
	if in.RiskScore < 0 {
		return domain.NewValidationError("riskScore", "must not be negative")
	}
	return nil
}

// ToUser converts the validated payload into a store entity.
func (in UserInput) ToUser(now time.Time) domain.User {
	return domain.User{
		ID:        in.ID,
		Name:      in.Name,
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		Country:   in.Country,
		KYCStatus: in.KYCStatus,
		RiskScore: in.RiskScore,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate normalizes the payload and reports the first malformed field.
// A missing id is generated; a missing timestamp defaults to now.
func (in *TransactionInput) Validate() error {
	in.ID = strings.TrimSpace(in.ID)
	if in.ID == "" {
		in.ID = "txn-" + uuid.NewString()
	}
	in.OriginUserID = strings.TrimSpace(in.OriginUserID)
	if in.OriginUserID == "" {
		return domain.NewValidationError("originUserId", "required")
	}
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return err
	}
	in.Amount = amount

	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if !domain.ValidTransactionType(in.Type) {
		return domain.NewValidationError("type", "unknown transaction type")
	}
	in.Status = strings.ToLower(strings.TrimSpace(in.Status))
	if in.Status == "" {
		in.Status = domain.TxStatusCompleted
	}
	if !domain.ValidTransactionStatus(in.Status) {
		return domain.NewValidationError("status", "unknown transaction status")
	}
	if in.Timestamp != "" {
		if _, err := time.Parse(time.RFC3339, in.Timestamp); err != nil {
			return domain.NewValidationError("timestamp", "must be RFC 3339")
		}
	}
	return nil
}

// ToTransaction converts the validated payload into a store entity.
func (in TransactionInput) ToTransaction(now time.Time) domain.Transaction {
	amount, _ := in.Amount.(float64)
	ts := now
	if in.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, in.Timestamp); err == nil {
			ts = parsed
		}
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}
	return domain.Transaction{
		ID:                in.ID,
		OriginUserID:      in.OriginUserID,
		DestinationUserID: strings.TrimSpace(in.DestinationUserID),
		Amount:            amount,
		Currency:          currency,
		Type:              in.Type,
		Status:            in.Status,
		IPAddress:         strings.TrimSpace(in.IPAddress),
		DeviceID:          strings.TrimSpace(in.DeviceID),
		RiskScore:         in.RiskScore,
		RiskLevel:         in.RiskLevel,
		Timestamp:         ts,
		Metadata:          in.Metadata,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func parseAmount(raw any) (float64, error) {
	var (
		amount float64
		err    error
	)
	switch v := raw.(type) {
	case float64:
		amount = v
	case int:
		amount = float64(v)
	case int64:
		amount = float64(v)
	case json.Number:
		amount, err = v.Float64()
	case string:
		amount, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	case nil:
		return 0, domain.NewValidationError("amount", "required")
	default:
		return 0, domain.NewValidationError("amount", "must be numeric")
	}
	if err != nil {
		return 0, domain.NewValidationError("amount", "must be numeric")
	}
	if amount < 0 {
		return 0, domain.NewValidationError("amount", "must not be negative")
	}
	return amount, nil
}
