package rules

import (
	"testing"

	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-testutil"
)

func TestRules_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate func(r *Rules)
		expErr string
	}{
		"defaults are valid": {
			mutate: func(r *Rules) {},
		},
		"fee out of range": {
			mutate: func(r *Rules) { r.DepositFeePercent = 120 },
			expErr: "deposit_fee_percent must be between 0 and 100",
		},
		"role share above max": {
			mutate: func(r *Rules) { r.GuildRoles[2].ShareExpPercent = 50 },
			expErr: "guild role 2: share_exp_percent exceeds max_share_exp_percent",
		},
		"too few roles": {
			mutate: func(r *Rules) { r.GuildRoles = r.GuildRoles[:1] },
			expErr: "guild_roles needs a leader role",
		},
		"duplicate shop item": {
			mutate: func(r *Rules) {
				r.CashShop = []CashShopItem{{Id: "a", ItemId: "x"}, {Id: "a", ItemId: "y"}}
			},
			expErr: `duplicate id "a"`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r := Default()
			tt.mutate(r)

			err := r.Validate()
			if tt.expErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestRules_Fees(t *testing.T) {
	r := Default()
	r.DepositFeePercent = 5
	r.WithdrawFeePercent = 3

	testutil.AssertEqual(t, "deposit fee", r.DepositFee(100), int64(5))
	testutil.AssertEqual(t, "deposit fee rounds down", r.DepositFee(19), int64(0))
	testutil.AssertEqual(t, "withdraw fee", r.WithdrawFee(200), int64(6))
}

func TestRules_Lookups(t *testing.T) {
	r := Default()

	testutil.AssertEqual(t, "guild slots", r.Limits(game.StorageKindGuild).SlotLimit, 60)
	testutil.AssertEqual(t, "member role", r.MemberRole(), 2)

	_, ok := r.Role(5)
	testutil.AssertEqual(t, "role out of range", ok, false)
}
