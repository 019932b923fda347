package services

import (
	"testing"
	"wabiz/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestResolveDealerChainDefaultRates(t *testing.T) {
	db := setupDB(t)

	owner := newUser(t, db, "owner", models.RoleOwner, nil)
	admin := newUser(t, db, "admin", models.RoleAdmin, &owner.ID)
	employee := newUser(t, db, "employee", models.RoleEmployee, &admin.ID)
	sub := newUser(t, db, "sub", models.RoleSubdealer, &employee.ID)
	customer := newUser(t, db, "cust", models.RoleCustomer, &sub.ID)

	chain := ResolveDealerChain(db, &customer)
	require.Len(t, chain, 4)

	require.Equal(t, sub.ID, chain[0].Dealer.ID)
	require.Equal(t, "0.1", chain[0].Rate.String())
	require.Equal(t, employee.ID, chain[1].Dealer.ID)
	require.Equal(t, "0.03", chain[1].Rate.String())
	require.Equal(t, admin.ID, chain[2].Dealer.ID)
	require.Equal(t, "0.02", chain[2].Rate.String())
	require.Equal(t, owner.ID, chain[3].Dealer.ID)
	require.Equal(t, "0.01", chain[3].Rate.String())

	for i, hop := range chain {
		require.Equal(t, i+1, hop.Level)
	}
}

func TestResolveDealerChainCustomRateOverride(t *testing.T) {
	db := setupDB(t)

	rate := decimal.NewFromInt(7)
	owner := newUser(t, db, "owner", models.RoleOwner, nil)
	sub := models.User{
		Name: "sub", Email: "sub@test.local", Role: models.RoleSubdealer,
		ParentID: &owner.ID, CommissionRate: &rate, IsActive: true,
	}
	require.NoError(t, db.Create(&sub).Error)
	customer := newUser(t, db, "cust", models.RoleCustomer, &sub.ID)

	chain := ResolveDealerChain(db, &customer)
	require.Len(t, chain, 2)
	require.Equal(t, "0.07", chain[0].Rate.String())
}

func TestResolveDealerChainCapsAtFourHops(t *testing.T) {
	db := setupDB(t)

	// Six dealers stacked above the customer; only the nearest four resolve.
	top := newUser(t, db, "d6", models.RoleOwner, nil)
	prev := top.ID
	var nearest models.User
	for i := 5; i >= 1; i-- {
		nearest = newUser(t, db, "d"+string(rune('0'+i)), models.RoleSubdealer, &prev)
		prev = nearest.ID
	}
	customer := newUser(t, db, "cust", models.RoleCustomer, &nearest.ID)

	chain := ResolveDealerChain(db, &customer)
	require.Len(t, chain, MaxCommissionDepth)
	require.Equal(t, nearest.ID, chain[0].Dealer.ID)
}

func TestResolveDealerChainDanglingParentTruncates(t *testing.T) {
	db := setupDB(t)

	owner := newUser(t, db, "owner", models.RoleOwner, nil)
	sub := newUser(t, db, "sub", models.RoleSubdealer, &owner.ID)
	missing := uint(99999)
	require.NoError(t, db.Model(&sub).Update("parent_id", missing).Error)
	customer := newUser(t, db, "cust", models.RoleCustomer, &sub.ID)

	chain := ResolveDealerChain(db, &customer)
	require.Len(t, chain, 1)
	require.Equal(t, sub.ID, chain[0].Dealer.ID)
}

func TestResolveDealerChainZeroRateNodeDoesNotStopWalk(t *testing.T) {
	db := setupDB(t)

	owner := newUser(t, db, "owner", models.RoleOwner, nil)
	// A non-dealer node in the middle resolves to rate zero but the walk
	// continues past it.
	middle := newUser(t, db, "middle", models.RoleCustomer, &owner.ID)
	customer := newUser(t, db, "cust", models.RoleCustomer, &middle.ID)

	chain := ResolveDealerChain(db, &customer)
	require.Len(t, chain, 2)
	require.True(t, chain[0].Rate.IsZero())
	require.Equal(t, owner.ID, chain[1].Dealer.ID)
	require.Equal(t, "0.01", chain[1].Rate.String())
}

func TestEffectiveRateIgnoresNonPositiveOverride(t *testing.T) {
	zero := decimal.Zero
	dealer := models.User{Role: models.RoleSubdealer, CommissionRate: &zero}
	require.Equal(t, "0.1", EffectiveRate(&dealer).String())
}
