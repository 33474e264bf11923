package engine

import (
	"bytes"
	"encoding/binary"
	"sort"

	"UD_loyalty_hook/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// State owns every user account and the jackpot singleton. It is not safe for
// concurrent use; callers serialise transitions.
type State struct {
	accounts map[common.Address]*model.UserAccount
	jackpot  *model.JackpotPool

	journal      []journalEntry
	dirty        map[common.Address]struct{}
	jackpotDirty bool
}

// journalEntry holds the pre-image of one mutation.
type journalEntry struct {
	addr       common.Address
	account    *model.UserAccount
	wasDirty   bool
	isJackpot  bool
	jackpot    *model.JackpotPool
	jackpotWas bool
}

func NewState() *State {
	return &State{
		accounts: make(map[common.Address]*model.UserAccount),
		jackpot:  model.NewJackpotPool(),
		dirty:    make(map[common.Address]struct{}),
	}
}

// Load replaces the state contents, typically with rows read back from
// storage. The journal and dirty set are reset.
func (s *State) Load(accounts []*model.UserAccount, jackpot *model.JackpotPool) {
	s.accounts = make(map[common.Address]*model.UserAccount, len(accounts))
	for _, acc := range accounts {
		s.accounts[acc.Address] = acc.Clone()
	}
	if jackpot != nil {
		s.jackpot = jackpot.Clone()
	} else {
		s.jackpot = model.NewJackpotPool()
	}
	s.ClearDirty()
}

// Account returns a copy of the account, or nil if the user has never had a
// qualifying event.
func (s *State) Account(addr common.Address) *model.UserAccount {
	return s.accounts[addr].Clone()
}

func (s *State) Streak(addr common.Address) uint64 {
	if acc, ok := s.accounts[addr]; ok {
		return acc.StreakCount
	}
	return 0
}

func (s *State) Referrer(addr common.Address) *common.Address {
	acc, ok := s.accounts[addr]
	if !ok || !acc.HasReferrer() {
		return nil
	}
	ref := *acc.Referrer
	return &ref
}

// Referrals lists the users that registered addr as their referrer, in
// address order.
func (s *State) Referrals(addr common.Address) []*model.UserAccount {
	var out []*model.UserAccount
	for _, acc := range s.accounts {
		if acc.HasReferrer() && *acc.Referrer == addr {
			out = append(out, acc.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Address[:], out[j].Address[:]) < 0
	})
	return out
}

func (s *State) Jackpot() *model.JackpotPool {
	return s.jackpot.Clone()
}

func (s *State) JackpotBalance() *uint256.Int {
	return new(uint256.Int).Set(s.jackpot.Balance)
}

func (s *State) Len() int {
	return len(s.accounts)
}

// mutAccount returns the live account for addr, creating it with zero values
// when missing. The pre-image is journaled.
func (s *State) mutAccount(addr common.Address) *model.UserAccount {
	acc, ok := s.accounts[addr]
	_, wasDirty := s.dirty[addr]
	entry := journalEntry{addr: addr, wasDirty: wasDirty}
	if ok {
		entry.account = acc.Clone()
	}
	s.journal = append(s.journal, entry)
	if !ok {
		acc = model.NewUserAccount(addr)
		s.accounts[addr] = acc
	}
	s.dirty[addr] = struct{}{}
	return acc
}

func (s *State) mutJackpot() *model.JackpotPool {
	s.journal = append(s.journal, journalEntry{
		isJackpot:  true,
		jackpot:    s.jackpot.Clone(),
		jackpotWas: s.jackpotDirty,
	})
	s.jackpotDirty = true
	return s.jackpot
}

// Snapshot returns an identifier for the current journal position.
func (s *State) Snapshot() int {
	return len(s.journal)
}

// RevertToSnapshot undoes every mutation made after the snapshot was taken.
func (s *State) RevertToSnapshot(id int) {
	if id < 0 || id > len(s.journal) {
		return
	}
	for i := len(s.journal) - 1; i >= id; i-- {
		entry := s.journal[i]
		if entry.isJackpot {
			s.jackpot = entry.jackpot
			s.jackpotDirty = entry.jackpotWas
			continue
		}
		if entry.account == nil {
			delete(s.accounts, entry.addr)
		} else {
			s.accounts[entry.addr] = entry.account
		}
		if !entry.wasDirty {
			delete(s.dirty, entry.addr)
		}
	}
	s.journal = s.journal[:id]
}

// Dirty reports copies of the accounts touched since the last ClearDirty, in
// address order, and the jackpot if it changed.
func (s *State) Dirty() ([]*model.UserAccount, *model.JackpotPool) {
	accounts := make([]*model.UserAccount, 0, len(s.dirty))
	for addr := range s.dirty {
		if acc, ok := s.accounts[addr]; ok {
			accounts = append(accounts, acc.Clone())
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return bytes.Compare(accounts[i].Address[:], accounts[j].Address[:]) < 0
	})
	var jackpot *model.JackpotPool
	if s.jackpotDirty {
		jackpot = s.jackpot.Clone()
	}
	return accounts, jackpot
}

// ClearDirty forgets the dirty set and the journal. Earlier snapshots become
// invalid.
func (s *State) ClearDirty() {
	s.dirty = make(map[common.Address]struct{})
	s.jackpotDirty = false
	s.journal = s.journal[:0]
}

// Root hashes a canonical encoding of the whole state. Two replicas that
// processed the same events in the same order produce the same root.
func (s *State) Root() common.Hash {
	addrs := make([]common.Address, 0, len(s.accounts))
	for addr := range s.accounts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return bytes.Compare(addrs[i][:], addrs[j][:]) < 0
	})

	var buf bytes.Buffer
	for _, addr := range addrs {
		acc := s.accounts[addr]
		buf.Write(addr[:])
		writeUint64(&buf, acc.StreakCount)
		writeUint64(&buf, acc.LastActivity)
		var ref common.Address
		if acc.Referrer != nil {
			ref = *acc.Referrer
		}
		buf.Write(ref[:])
		writeUint64(&buf, acc.EventCount)
		writeInt(&buf, acc.TotalEarned)
		writeUint64(&buf, acc.JackpotWins)
	}

	j := s.jackpot
	writeInt(&buf, j.Balance)
	var winner common.Address
	if j.LastWinner != nil {
		winner = *j.LastWinner
	}
	buf.Write(winner[:])
	writeInt(&buf, j.LastWinAmount)
	writeUint64(&buf, j.LastWinBlock)
	writeInt(&buf, j.TotalPaidOut)
	writeUint64(&buf, j.Draws)
	writeUint64(&buf, j.Wins)

	return crypto.Keccak256Hash(buf.Bytes())
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeInt(buf *bytes.Buffer, v *uint256.Int) {
	if v == nil {
		v = new(uint256.Int)
	}
	b := v.Bytes32()
	buf.Write(b[:])
}
