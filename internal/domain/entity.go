package domain

import "strings"

// EntityKind identifies the kind of node an identifier refers to.
type EntityKind string

// Primary and derived entity kinds. The derived kinds (device, ip,
// email-domain, phone-prefix, address) are materialized lazily by the
// detector from observed user/transaction attributes.
const (
	KindUser        EntityKind = "user"
	KindTransaction EntityKind = "transaction"
	KindDevice      EntityKind = "device"
	KindIPAddress   EntityKind = "ip_address"
	KindEmailDomain EntityKind = "email_domain"
	KindPhonePrefix EntityKind = "phone_prefix"
	KindAddress     EntityKind = "address"
)

// ParseEntityKind maps an external kind string onto the closed kind set.
func ParseEntityKind(raw string) (EntityKind, bool) {
	switch EntityKind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindUser:
		return KindUser, true
	case KindTransaction:
		return KindTransaction, true
	case KindDevice:
		return KindDevice, true
	case KindIPAddress:
		return KindIPAddress, true
	case KindEmailDomain:
		return KindEmailDomain, true
	case KindPhonePrefix:
		return KindPhonePrefix, true
	case KindAddress:
		return KindAddress, true
	default:
		return "", false
	}
}

// Label returns the graph node label used to store entities of this kind.
func (k EntityKind) Label() string {
	switch k {
	case KindUser:
		return "User"
	case KindTransaction:
		return "Transaction"
	case KindDevice:
		return "Device"
	case KindIPAddress:
		return "IPAddress"
	case KindEmailDomain:
		return "EmailDomain"
	case KindPhonePrefix:
		return "PhonePrefix"
	case KindAddress:
		return "Address"
	default:
		return ""
	}
}
