package domain

import "strings"

// EdgeType enumerates every relationship the engine is allowed to write.
// External payloads naming a type outside this set are rejected before any
// write reaches the store.
type EdgeType string

const (
	EdgeMadeTransaction     EdgeType = "MADE_TRANSACTION"
	EdgeReceivedTransaction EdgeType = "RECEIVED_TRANSACTION"
	EdgeSentMoneyTo         EdgeType = "SENT_MONEY_TO"
	EdgeReceivedMoneyFrom   EdgeType = "RECEIVED_MONEY_FROM"
	EdgeSharesEmail         EdgeType = "SHARES_EMAIL"
	EdgeSharesPhone         EdgeType = "SHARES_PHONE"
	EdgeSharesAddress       EdgeType = "SHARES_ADDRESS"
	EdgeSameIP              EdgeType = "SAME_IP"
	EdgeSameDevice          EdgeType = "SAME_DEVICE"
	EdgeTemporalLink        EdgeType = "TEMPORAL_LINK"
	EdgeAmountPattern       EdgeType = "AMOUNT_PATTERN"
	EdgeFamilyMember        EdgeType = "FAMILY_MEMBER"
	EdgeBusinessPartner     EdgeType = "BUSINESS_PARTNER"
	EdgeHasEmail            EdgeType = "HAS_EMAIL"
	EdgeHasPhone            EdgeType = "HAS_PHONE"
	EdgeHasAddress          EdgeType = "HAS_ADDRESS"
	EdgeUsesDevice          EdgeType = "USES_DEVICE"
	EdgeUsesIP              EdgeType = "USES_IP"
	EdgeUsedIP              EdgeType = "USED_IP"
	EdgeUsedDevice          EdgeType = "USED_DEVICE"
)

var edgeTypes = map[EdgeType]struct{}{
	EdgeMadeTransaction:     {},
	EdgeReceivedTransaction: {},
	EdgeSentMoneyTo:         {},
	EdgeReceivedMoneyFrom:   {},
	EdgeSharesEmail:         {},
	EdgeSharesPhone:         {},
	EdgeSharesAddress:       {},
	EdgeSameIP:              {},
	EdgeSameDevice:          {},
	EdgeTemporalLink:        {},
	EdgeAmountPattern:       {},
	EdgeFamilyMember:        {},
	EdgeBusinessPartner:     {},
	EdgeHasEmail:            {},
	EdgeHasPhone:            {},
	EdgeHasAddress:          {},
	EdgeUsesDevice:          {},
	EdgeUsesIP:              {},
	EdgeUsedIP:              {},
	EdgeUsedDevice:          {},
}

// ParseEdgeType validates a relationship type string against the closed set.
func ParseEdgeType(raw string) (EdgeType, bool) {
	et := EdgeType(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := edgeTypes[et]
	return et, ok
}

// Symmetric reports whether the edge type links an unordered entity pair.
// Symmetric edges are deduplicated by unordered pair key; at most one
// instance exists regardless of detection order.
func (t EdgeType) Symmetric() bool {
	switch t {
	case EdgeSharesEmail, EdgeSharesPhone, EdgeSharesAddress,
		EdgeSameIP, EdgeSameDevice, EdgeTemporalLink, EdgeAmountPattern,
		EdgeFamilyMember, EdgeBusinessPartner:
		return true
	default:
		return false
	}
}

// String returns the wire representation of the edge type.
func (t EdgeType) String() string { return string(t) }
