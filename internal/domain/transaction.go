package domain

import "time"

// Transaction models a transaction node in the graph. DestinationUserID is
// empty for transactions without a resolvable recipient.
type Transaction struct {
	ID                string
	OriginUserID      string
	DestinationUserID string
	Amount            float64
	Currency          string
	Type              string
	Status            string
	IPAddress         string
	DeviceID          string
	RiskScore         float64
	RiskLevel         string
	Timestamp         time.Time
	Metadata          map[string]any
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Transaction type values accepted by ingestion.
const (
	TxTypeWithdrawal = "withdrawal"
	TxTypePurchase   = "purchase"
	TxTypeDeposit    = "deposit"
	TxTypePayment    = "payment"
	TxTypeTransfer   = "transfer"
)

// Transaction status values accepted by ingestion.
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"
	TxStatusCancelled = "cancelled"
)

// TransactionTypes lists every accepted transaction type.
var TransactionTypes = []string{
	TxTypeWithdrawal,
	TxTypePurchase,
	TxTypeDeposit,
	TxTypePayment,
	TxTypeTransfer,
}

// TransactionStatuses lists every accepted transaction status.
var TransactionStatuses = []string{
	TxStatusPending,
	TxStatusCompleted,
	TxStatusFailed,
	TxStatusCancelled,
}

// ValidTransactionType reports whether t is one of the accepted types.
func ValidTransactionType(t string) bool {
	for _, known := range TransactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ValidTransactionStatus reports whether s is one of the accepted statuses.
func ValidTransactionStatus(s string) bool {
	for _, known := range TransactionStatuses {
		if s == known {
			return true
		}
	}
	return false
}
