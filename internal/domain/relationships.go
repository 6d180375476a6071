package domain

import "time"

// MoneyLink represents a user-to-user money movement edge. Via is the id of
// the intermediate peer for second-degree links and empty for direct links.
type MoneyLink struct {
	Peer          User
	Type          EdgeType
	Amount        float64
	Currency      string
	TransactionID string
	Timestamp     *time.Time
	Via           string
}

// SharedLink represents a user connected through a shared identity attribute.
type SharedLink struct {
	Peer        User
	Type        EdgeType
	SharedValue string
}

// NetworkLink represents a user connected through transaction-level network
// proximity (same IP or device).
type NetworkLink struct {
	Peer        User
	Type        EdgeType
	SharedValue string
}

// UserNeighborhood is the raw bounded traversal result for a user subject.
type UserNeighborhood struct {
	User         User
	Transactions []Transaction
	MoneyLinks   []MoneyLink
	SharedLinks  []SharedLink
	NetworkLinks []NetworkLink
}

// LinkedTransaction captures a transaction-to-transaction proximity edge.
type LinkedTransaction struct {
	Transaction Transaction
	Type        EdgeType
	SharedValue string
	Confidence  float64
}

// TransactionNeighborhood is the raw traversal result for a transaction
// subject.
type TransactionNeighborhood struct {
	Transaction Transaction
	Origin      *User
	Destination *User
	Linked      []LinkedTransaction
}
