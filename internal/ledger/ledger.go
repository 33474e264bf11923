// Package ledger holds the point-balance side of the reward flow. The engine
// only ever sends one-way mint instructions; crediting is the ledger's job.
package ledger

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Ledger accepts mint instructions. Mint is fire-and-forget: the engine does
// not depend on any result.
type Ledger interface {
	Mint(to common.Address, amount *uint256.Int, reason string)
}

const (
	ReasonPoints   = "points"
	ReasonReferral = "referral"
	ReasonJackpot  = "jackpot"
)

type Instruction struct {
	To     common.Address
	Amount *uint256.Int
	Reason string
}

// Recorder collects the instructions of a single transition so they can be
// persisted atomically with the state change.
type Recorder struct {
	instructions []Instruction
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Mint(to common.Address, amount *uint256.Int, reason string) {
	r.instructions = append(r.instructions, Instruction{
		To:     to,
		Amount: new(uint256.Int).Set(amount),
		Reason: reason,
	})
}

func (r *Recorder) Instructions() []Instruction {
	return r.instructions
}

// Memory is an in-process balance ledger used by the replay tool and tests.
type Memory struct {
	balances map[common.Address]*uint256.Int
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[common.Address]*uint256.Int)}
}

func (m *Memory) Mint(to common.Address, amount *uint256.Int, _ string) {
	bal, ok := m.balances[to]
	if !ok {
		bal = new(uint256.Int)
		m.balances[to] = bal
	}
	bal.Add(bal, amount)
}

func (m *Memory) BalanceOf(addr common.Address) *uint256.Int {
	if bal, ok := m.balances[addr]; ok {
		return new(uint256.Int).Set(bal)
	}
	return new(uint256.Int)
}

// Apply replays recorded instructions onto the balances.
func (m *Memory) Apply(instructions []Instruction) {
	for _, in := range instructions {
		m.Mint(in.To, in.Amount, in.Reason)
	}
}

// Top returns up to limit holders ordered by balance, ties broken by address.
func (m *Memory) Top(limit int) []Instruction {
	out := make([]Instruction, 0, len(m.balances))
	for addr, bal := range m.balances {
		out = append(out, Instruction{To: addr, Amount: new(uint256.Int).Set(bal)})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return bytes.Compare(out[i].To[:], out[j].To[:]) < 0
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
