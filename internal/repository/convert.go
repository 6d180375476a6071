package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/priyag/fraudgraph/backend/internal/domain"
	"github.com/priyag/fraudgraph/backend/internal/graph"
)

// The store may hand back driver-specific numeric and temporal wrappers.
// All normalization to canonical Go types happens here, once, at the
// read boundary; nothing downstream unwraps stored values again.

func userFromRecord(record graph.Record) domain.User {
	u := domain.User{
		ID:        toString(record["id"]),
		Name:      toString(record["name"]),
		Email:     toString(record["email"]),
		Phone:     toString(record["phone"]),
		Address:   toString(record["address"]),
		Country:   toString(record["country"]),
		KYCStatus: toString(record["kycStatus"]),
		RiskScore: toFloat64(record["riskScore"]),
	}
	if created := toTimePtr(record["createdAt"]); created != nil {
		u.CreatedAt = *created
	}
	if updated := toTimePtr(record["updatedAt"]); updated != nil {
		u.UpdatedAt = *updated
	}
	return u
}

func transactionFromRecord(record graph.Record) domain.Transaction {
	tx := domain.Transaction{
		ID:                toString(record["id"]),
		OriginUserID:      toString(record["originUserId"]),
		DestinationUserID: toString(record["destinationUserId"]),
		Amount:            toFloat64(record["amount"]),
		Currency:          toString(record["currency"]),
		Type:              toString(record["type"]),
		Status:            toString(record["status"]),
		IPAddress:         toString(record["ipAddress"]),
		DeviceID:          toString(record["deviceId"]),
		RiskScore:         toFloat64(record["riskScore"]),
		RiskLevel:         toString(record["riskLevel"]),
	}
	if ts := toTimePtr(record["timestamp"]); ts != nil {
		tx.Timestamp = *ts
	}
	if created := toTimePtr(record["createdAt"]); created != nil {
		tx.CreatedAt = *created
	}
	if updated := toTimePtr(record["updatedAt"]); updated != nil {
		tx.UpdatedAt = *updated
	}
	if raw := toString(record["metadataJson"]); raw != "" {
		var metadata map[string]any
		if err := json.Unmarshal([]byte(raw), &metadata); err == nil {
			tx.Metadata = metadata
		}
	}
	return tx
}

func serializeMetadata(metadata map[string]any) (string, error) {
	bytes, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, domain.ErrStoreUnavailable, err)
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func toInt(val any) int {
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func toTimePtr(val any) *time.Time {
	switch v := val.(type) {
	case time.Time:
		return &v
	case string:
		if v == "" {
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &parsed
		}
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return &parsed
		}
	}
	return nil
}
