package generator

// Config drives the synthetic data generator. Collision chances control
// how often a new user or transaction reuses an already issued value,
// which is what manufactures detectable rings in the output.
type Config struct {
	NumUsers              int
	NumTransactions       int
	SharedAttributeChance float64
	IPShareChance         float64
	DeviceShareChance     float64
	RingCount             int
	RingSize              int
	Seed                  int64
}

// DefaultConfig returns baseline settings that yield a graph dense
// enough for every detection rule to fire.
func DefaultConfig() Config {
	return Config{
		NumUsers:              5000,
		NumTransactions:       50000,
		SharedAttributeChance: 0.3,
		IPShareChance:         0.25,
		DeviceShareChance:     0.3,
		RingCount:             10,
		RingSize:              6,
		Seed:                  42,
	}
}
