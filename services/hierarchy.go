package services

import (
	"log"
	"wabiz/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxCommissionDepth caps the upward walk regardless of how deep the
// dealer tree actually is.
const MaxCommissionDepth = 4

var oneHundred = decimal.NewFromInt(100)

// DealerHop is one resolved ancestor in a customer's dealer chain. Rate is
// a fraction (0.10 = 10%); a zero rate keeps the dealer in the chain but
// earns nothing.
type DealerHop struct {
	Dealer models.User
	Level  int
	Rate   decimal.Decimal
}

// ResolveDealerChain walks parent links from the customer upward, at most
// MaxCommissionDepth dealers. A dangling parent reference ends the chain
// silently; the partial result is final.
func ResolveDealerChain(db *gorm.DB, customer *models.User) []DealerHop {
	hops := make([]DealerHop, 0, MaxCommissionDepth)

	parentID := customer.ParentID
	for parentID != nil && len(hops) < MaxCommissionDepth {
		var dealer models.User
		if err := db.First(&dealer, *parentID).Error; err != nil {
			log.Printf("hierarchy: dealer %d unresolvable (%v), chain truncated at %d hop(s)", *parentID, err, len(hops))
			break
		}

		hops = append(hops, DealerHop{
			Dealer: dealer,
			Level:  len(hops) + 1,
			Rate:   EffectiveRate(&dealer),
		})
		parentID = dealer.ParentID
	}

	return hops
}

// EffectiveRate prefers the per-dealer percent override when it is set and
// positive, else the role default.
func EffectiveRate(dealer *models.User) decimal.Decimal {
	if dealer.CommissionRate != nil && dealer.CommissionRate.IsPositive() {
		return dealer.CommissionRate.Div(oneHundred)
	}
	return dealer.Role.DefaultCommissionPercent().Div(oneHundred)
}
