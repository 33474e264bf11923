package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// UserAccount is the per-user reward record. It is created lazily on the
// first qualifying event and never deleted.
type UserAccount struct {
	Address      common.Address
	StreakCount  uint64
	LastActivity uint64
	Referrer     *common.Address
	EventCount   uint64
	TotalEarned  *uint256.Int
	JackpotWins  uint64
}

func NewUserAccount(addr common.Address) *UserAccount {
	return &UserAccount{
		Address:     addr,
		TotalEarned: new(uint256.Int),
	}
}

func (a *UserAccount) HasReferrer() bool {
	return a != nil && a.Referrer != nil && *a.Referrer != (common.Address{})
}

func (a *UserAccount) Clone() *UserAccount {
	if a == nil {
		return nil
	}
	out := *a
	if a.Referrer != nil {
		ref := *a.Referrer
		out.Referrer = &ref
	}
	if a.TotalEarned != nil {
		out.TotalEarned = new(uint256.Int).Set(a.TotalEarned)
	} else {
		out.TotalEarned = new(uint256.Int)
	}
	return &out
}

// UserSummary is the read model served by the query API.
type UserSummary struct {
	Account      *UserAccount
	BonusPercent uint64
	Balance      *uint256.Int
	Referrals    int
}

type UserReferral struct {
	Address     common.Address
	Balance     *uint256.Int
	EventCount  uint64
	TotalEarned *uint256.Int
}

type LeaderboardEntry struct {
	Rank    int
	Address common.Address
	Balance *uint256.Int
}
