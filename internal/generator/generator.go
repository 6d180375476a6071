package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/priyag/fraudgraph/backend/internal/service"
)

// Generator produces synthetic graph data aligned with the relationship
// engine schema. Output from the same seed is identical across runs.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
	pools         attributePools
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumUsers <= 0 {
		cfg.NumUsers = defaults.NumUsers
	}
	if cfg.NumTransactions <= 0 {
		cfg.NumTransactions = defaults.NumTransactions
	}
	if cfg.SharedAttributeChance <= 0 {
		cfg.SharedAttributeChance = defaults.SharedAttributeChance
	}
	if cfg.IPShareChance <= 0 {
		cfg.IPShareChance = defaults.IPShareChance
	}
	if cfg.DeviceShareChance <= 0 {
		cfg.DeviceShareChance = defaults.DeviceShareChance
	}
	if cfg.RingCount < 0 {
		cfg.RingCount = 0
	}
	if cfg.RingSize <= 1 {
		cfg.RingSize = defaults.RingSize
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		nameFragments: defaultNameFragments(),
		pools:         attributePools{},
	}
}

// ring groups user indexes that share an address, a device and an IP.
type ring struct {
	members []int
	device  string
	ip      string
	address string
}

// Generate synthesises users and transactions. It respects context
// cancellation.
func (g *Generator) Generate(ctx context.Context) (service.Dataset, error) {
	users := make([]service.UserInput, g.cfg.NumUsers)
	rings := g.planRings()
	ringByUser := make(map[int]*ring)
	for i := range rings {
		for _, idx := range rings[i].members {
			ringByUser[idx] = &rings[i]
		}
	}

	now := time.Now().UTC()

	for i := 0; i < g.cfg.NumUsers; i++ {
		if err := ctx.Err(); err != nil {
			return service.Dataset{}, err
		}

		userID := fmt.Sprintf("USR-%06d", i+1)
		email := g.maybeSharedString(&g.pools.emails, g.cfg.SharedAttributeChance, g.randomEmail)
		phone := g.maybeSharedString(&g.pools.phones, g.cfg.SharedAttributeChance, g.randomPhone)
		address := g.maybeSharedString(&g.pools.addresses, g.cfg.SharedAttributeChance, g.randomAddress)
		name := g.randomFullName()

		if rg, ok := ringByUser[i]; ok {
			// Ring members live at one address and, for half of them,
			// carry a shared family surname so name-overlap rules fire.
			address = rg.address
			if g.rand.Float64() < 0.5 {
				name = g.nameFragments.first[g.rand.Intn(len(g.nameFragments.first))] + " " +
					ringSurname(rg)
			}
		}

		users[i] = service.UserInput{
			ID:        userID,
			Name:      name,
			Email:     email,
			Phone:     phone,
			Address:   address,
			Country:   g.randomCountry(),
			KYCStatus: g.randomKYCStatus(),
			RiskScore: g.rand.Float64(),
		}
	}

	transactions := make([]service.TransactionInput, g.cfg.NumTransactions)
	categories := []string{"remittance", "payroll", "e_commerce", "crypto", "gambling", "donation"}

	for i := 0; i < g.cfg.NumTransactions; i++ {
		if err := ctx.Err(); err != nil {
			return service.Dataset{}, err
		}

		txID := fmt.Sprintf("TXN-%07d", i+1)
		var originIdx, destIdx int
		var rg *ring

		// A slice of the volume is routed through rings so the ring
		// members accumulate SAME_DEVICE, SAME_IP and money-flow edges.
		if len(rings) > 0 && g.rand.Float64() < 0.2 {
			rg = &rings[g.rand.Intn(len(rings))]
			originIdx = rg.members[g.rand.Intn(len(rg.members))]
			destIdx = rg.members[g.rand.Intn(len(rg.members))]
		} else {
			originIdx = g.rand.Intn(len(users))
			destIdx = g.rand.Intn(len(users))
		}
		if originIdx == destIdx {
			destIdx = (destIdx + 1) % len(users)
		}

		amount := g.rand.Float64()*4900 + 100
		ip := g.maybeSharedString(&g.pools.ips, g.cfg.IPShareChance, g.randomIP)
		device := g.maybeSharedString(&g.pools.devices, g.cfg.DeviceShareChance, g.randomDeviceID)
		timestamp := now.Add(-time.Duration(g.rand.Intn(60*24*30)) * time.Minute)

		if rg != nil {
			ip = rg.ip
			device = rg.device
			// Round structuring amounts keep pairs inside the
			// similarity threshold the pattern rule looks for.
			amount = 1000 + float64(g.rand.Intn(10))*50
		}

		riskScore := g.rand.Float64()
		transactions[i] = service.TransactionInput{
			ID:                txID,
			OriginUserID:      users[originIdx].ID,
			DestinationUserID: users[destIdx].ID,
			Amount:            amount,
			Currency:          "USD",
			Type:              g.randomTransactionType(),
			Status:            g.randomStatus(),
			IPAddress:         ip,
			DeviceID:          device,
			RiskScore:         riskScore,
			RiskLevel:         riskLevel(riskScore),
			Timestamp:         timestamp.Format(time.RFC3339),
			Metadata: map[string]any{
				"merchantCategory": categories[g.rand.Intn(len(categories))],
				"note":             g.randomNote(),
			},
		}
	}

	return service.Dataset{Users: users, Transactions: transactions}, nil
}

func (g *Generator) planRings() []ring {
	if g.cfg.RingCount == 0 || g.cfg.NumUsers < g.cfg.RingSize {
		return nil
	}
	rings := make([]ring, 0, g.cfg.RingCount)
	taken := make(map[int]struct{})
	for r := 0; r < g.cfg.RingCount; r++ {
		members := make([]int, 0, g.cfg.RingSize)
		for len(members) < g.cfg.RingSize {
			idx := g.rand.Intn(g.cfg.NumUsers)
			if _, dup := taken[idx]; dup {
				continue
			}
			taken[idx] = struct{}{}
			members = append(members, idx)
		}
		rings = append(rings, ring{
			members: members,
			device:  g.randomDeviceID(),
			ip:      g.randomIP(),
			address: g.randomAddress(),
		})
	}
	return rings
}

func ringSurname(rg *ring) string {
	surnames := []string{"Moretti", "Okafor", "Lindqvist", "Vasquez", "Duran"}
	return surnames[rg.members[0]%len(surnames)]
}

func riskLevel(score float64) string {
	switch {
	case score >= 0.7:
		return "high"
	case score >= 0.4:
		return "medium"
	default:
		return "low"
	}
}

type attributePools struct {
	emails    []string
	phones    []string
	addresses []string
	ips       []string
	devices   []string
}

func (g *Generator) maybeSharedString(pool *[]string, chance float64, newValue func() string) string {
	if len(*pool) > 0 && g.rand.Float64() < chance {
		return (*pool)[g.rand.Intn(len(*pool))]
	}
	val := newValue()
	*pool = append(*pool, val)
	return val
}

func (g *Generator) randomFullName() string {
	return fmt.Sprintf("%s %s", g.nameFragments.first[g.rand.Intn(len(g.nameFragments.first))],
		g.nameFragments.last[g.rand.Intn(len(g.nameFragments.last))])
}

func (g *Generator) randomEmail() string {
	domain := g.nameFragments.domains[g.rand.Intn(len(g.nameFragments.domains))]
	return fmt.Sprintf("%s.%s%d@%s",
		g.nameFragments.first[g.rand.Intn(len(g.nameFragments.first))],
		g.nameFragments.last[g.rand.Intn(len(g.nameFragments.last))],
		g.rand.Intn(100), domain)
}

func (g *Generator) randomPhone() string {
	return fmt.Sprintf("+1%03d%03d%04d", g.rand.Intn(900)+100, g.rand.Intn(900)+100, g.rand.Intn(10000))
}

func (g *Generator) randomAddress() string {
	return fmt.Sprintf("%d %s %s, %s",
		g.rand.Intn(9999)+1,
		g.nameFragments.streetNames[g.rand.Intn(len(g.nameFragments.streetNames))],
		g.nameFragments.streetSuffix[g.rand.Intn(len(g.nameFragments.streetSuffix))],
		g.nameFragments.cities[g.rand.Intn(len(g.nameFragments.cities))])
}

func (g *Generator) randomCountry() string {
	countries := []string{"US", "GB", "IN", "BR", "NG", "DE"}
	return countries[g.rand.Intn(len(countries))]
}

func (g *Generator) randomKYCStatus() string {
	options := []string{"pending", "verified", "review"}
	return options[g.rand.Intn(len(options))]
}

func (g *Generator) randomIP() string {
	return fmt.Sprintf("%d.%d.%d.%d", g.rand.Intn(223)+1, g.rand.Intn(256), g.rand.Intn(256), g.rand.Intn(256))
}

func (g *Generator) randomDeviceID() string {
	kinds := []string{"mobile", "desktop", "tablet"}
	return fmt.Sprintf("%s-%06d", kinds[g.rand.Intn(len(kinds))], g.rand.Intn(999999))
}

func (g *Generator) randomTransactionType() string {
	types := []string{"transfer", "payment", "withdrawal", "deposit"}
	return types[g.rand.Intn(len(types))]
}

func (g *Generator) randomStatus() string {
	// Completed dominates so money-flow rules see enough volume.
	if g.rand.Float64() < 0.85 {
		return "completed"
	}
	statuses := []string{"pending", "failed", "cancelled"}
	return statuses[g.rand.Intn(len(statuses))]
}

func (g *Generator) randomNote() string {
	notes := []string{"Invoice settlement", "Freelance payout", "Peer transfer", "Market purchase", "Crypto off-ramp"}
	return notes[g.rand.Intn(len(notes))]
}

type nameFragments struct {
	first        []string
	last         []string
	domains      []string
	streetNames  []string
	streetSuffix []string
	cities       []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:        []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:         []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
		domains:      []string{"example.com", "mail.com", "gmail.com", "payments.net", "securepay.org"},
		streetNames:  []string{"Market", "Mission", "Broadway", "Fifth", "Sunset", "Park", "Cedar", "Oak", "Pine", "Ash"},
		streetSuffix: []string{"St", "Ave", "Blvd", "Ln", "Rd", "Way"},
		cities:       []string{"San Francisco", "New York", "Seattle", "Austin", "Chicago", "Miami", "Denver", "Boston", "Los Angeles"},
	}
}
