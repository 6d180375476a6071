package query

// Limits bounds a neighborhood traversal. Bounds scale with the subject's
// activity so low-volume accounts stay readable and high-volume hubs still
// surface their strongest connections without returning the whole graph.
type Limits struct {
	Transactions int
	RelatedUsers int
	Depth        int
}

// CalculateLimits derives traversal bounds from a user's transaction count
// and aggregate transaction value. Count tiers set the base, value tiers
// then escalate the caps; depth 2 is reached only through the count tier.
func CalculateLimits(txCount int, totalValue float64) Limits {
	limits := Limits{
		Transactions: 10,
		RelatedUsers: 5,
		Depth:        1,
	}

	if txCount > 50 {
		limits.Transactions = 20
		limits.RelatedUsers = 10
		limits.Depth = 2
	} else if txCount > 20 {
		limits.Transactions = 15
		limits.RelatedUsers = 8
	}

	if totalValue > 50000 {
		limits.Transactions = 25
		limits.RelatedUsers = 12
	} else if totalValue > 20000 {
		limits.Transactions = 18
		limits.RelatedUsers = 8
	}

	return limits
}
