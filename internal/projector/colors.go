package projector

import "github.com/priyag/fraudgraph/backend/internal/domain"

// defaultEdgeColor is applied to any relationship type without an
// explicit mapping.
const defaultEdgeColor = "#999999"

var edgeColors = map[domain.EdgeType]string{
	domain.EdgeMadeTransaction:     "#0066ff",
	domain.EdgeReceivedTransaction: "#00cc66",
	domain.EdgeSentMoneyTo:         "#00ff00",
	domain.EdgeReceivedMoneyFrom:   "#ff4500",
	domain.EdgeSharesEmail:         "#ff0000",
	domain.EdgeSharesPhone:         "#ffa500",
	domain.EdgeSharesAddress:       "#800080",
	domain.EdgeSameIP:              "#ff6600",
	domain.EdgeSameDevice:          "#cc0066",
	domain.EdgeFamilyMember:        "#9932cc",
	domain.EdgeBusinessPartner:     "#32cd32",
	domain.EdgeTemporalLink:        "#ff69b4",
	domain.EdgeAmountPattern:       "#dda0dd",
}

// EdgeColor maps a relationship type to its render color. The mapping is
// a pure function of the type, so repeated renders of the same subgraph
// are visually identical.
func EdgeColor(t domain.EdgeType) string {
	if color, ok := edgeColors[t]; ok {
		return color
	}
	return defaultEdgeColor
}
