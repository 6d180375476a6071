package query

import (
	"fmt"
	"time"

	"github.com/priyag/fraudgraph/backend/internal/domain"
)

// Traversal queries return nested map projections rather than flat
// columns, so coercion happens against property maps here instead of at
// the flat record boundary the entity store uses.

func userFromProps(props map[string]any) domain.User {
	u := domain.User{
		ID:        toString(props["id"]),
		Name:      toString(props["name"]),
		Email:     toString(props["email"]),
		Phone:     toString(props["phone"]),
		Address:   toString(props["address"]),
		Country:   toString(props["country"]),
		KYCStatus: toString(props["kycStatus"]),
		RiskScore: toFloat64(props["riskScore"]),
	}
	if created := toTimePtr(props["createdAt"]); created != nil {
		u.CreatedAt = *created
	}
	if updated := toTimePtr(props["updatedAt"]); updated != nil {
		u.UpdatedAt = *updated
	}
	return u
}

func transactionFromProps(props map[string]any) domain.Transaction {
	tx := domain.Transaction{
		ID:                toString(props["id"]),
		OriginUserID:      toString(props["originUserId"]),
		DestinationUserID: toString(props["destinationUserId"]),
		Amount:            toFloat64(props["amount"]),
		Currency:          toString(props["currency"]),
		Type:              toString(props["type"]),
		Status:            toString(props["status"]),
		IPAddress:         toString(props["ipAddress"]),
		DeviceID:          toString(props["deviceId"]),
		RiskScore:         toFloat64(props["riskScore"]),
		RiskLevel:         toString(props["riskLevel"]),
	}
	if ts := toTimePtr(props["timestamp"]); ts != nil {
		tx.Timestamp = *ts
	}
	return tx
}

func asMap(val any) map[string]any {
	if m, ok := val.(map[string]any); ok {
		return m
	}
	return nil
}

func asSlice(val any) []any {
	if s, ok := val.([]any); ok {
		return s
	}
	return nil
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
