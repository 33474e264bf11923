package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"UD_loyalty_hook/internal/engine"
	"UD_loyalty_hook/internal/hook"
	"UD_loyalty_hook/internal/ledger"
	"UD_loyalty_hook/internal/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
)

const maxLineSize = 1 << 20

type Result struct {
	Events  int
	Applied int
	Skipped map[string]int
	Root    common.Hash
	Jackpot *model.JackpotPool
	Top     []ledger.Instruction
}

type replayer struct {
	adapter *hook.Adapter
	state   *engine.State
	ledger  *ledger.Memory
}

func newReplayer(e *engine.Engine, native common.Address) *replayer {
	return &replayer{
		adapter: hook.NewAdapter(e, native),
		state:   engine.NewState(),
		ledger:  ledger.NewMemory(),
	}
}

// run applies every line of r in order. onOutcome, when set, sees each
// outcome as it is produced.
func (p *replayer) run(r io.Reader, top int, onOutcome func(line int, out *model.Outcome)) (*Result, error) {
	res := &Result{Skipped: make(map[string]int)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		out, err := p.apply([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		res.Events++
		if out.Skipped != "" {
			res.Skipped[out.Skipped]++
		} else {
			res.Applied++
		}
		if onOutcome != nil {
			onOutcome(line, out)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	res.Root = p.state.Root()
	res.Jackpot = p.state.Jackpot()
	res.Top = p.ledger.Top(top)
	return res, nil
}

func (p *replayer) apply(data []byte) (*model.Outcome, error) {
	var req model.EventRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}

	switch req.Kind {
	case model.EventSwap:
		ev, err := req.SwapEvent()
		if err != nil {
			return nil, err
		}
		return p.adapter.OnSwap(p.state, p.ledger, ev), nil

	case model.EventLiquidityAdded:
		ev, err := req.LiquidityEvent()
		if err != nil {
			return nil, err
		}
		return p.adapter.OnLiquidityAdded(p.state, p.ledger, ev), nil
	}

	return nil, fmt.Errorf("unknown event kind %q", req.Kind)
}
