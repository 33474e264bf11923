package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"UD_loyalty_hook/internal/engine"
	"UD_loyalty_hook/internal/model"
	"UD_loyalty_hook/pkg/units"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

const (
	fileFlagName   = "file"
	nativeFlagName = "native"
	rollFlagName   = "roll"
	topFlagName    = "top"
	traceFlagName  = "trace"

	outputFlagName     = "output"
	outputFlagValJSON  = "json"
	outputFlagValHuman = "human"
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP(fileFlagName, "f", "-", "JSON-lines event log, - for stdin")
	runCmd.Flags().String(nativeFlagName, common.Address{}.Hex(), "Address standing for the native currency")
	runCmd.Flags().Int(rollFlagName, -1, "Force every jackpot draw to this roll (0-99); -1 uses the keccak mix")
	runCmd.Flags().Int(topFlagName, 10, "Number of point balances to print")
	runCmd.Flags().Bool(traceFlagName, false, "Print every outcome")
	runCmd.Flags().String(outputFlagName, outputFlagValHuman, "Specify the output format: json,human")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay an event log and print the state root",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		file, _ := flags.GetString(fileFlagName)
		nativeHex, _ := flags.GetString(nativeFlagName)
		roll, _ := flags.GetInt(rollFlagName)
		top, _ := flags.GetInt(topFlagName)
		trace, _ := flags.GetBool(traceFlagName)
		output, _ := flags.GetString(outputFlagName)

		if output != outputFlagValHuman && output != outputFlagValJSON {
			return fmt.Errorf("%s flag must be either %q or %q", outputFlagName, outputFlagValHuman, outputFlagValJSON)
		}
		if !common.IsHexAddress(nativeHex) {
			return fmt.Errorf("invalid native currency %q", nativeHex)
		}

		var entropy engine.Entropy = engine.KeccakEntropy{}
		if roll >= 0 {
			entropy = engine.FixedEntropy(roll)
		}

		in := io.Reader(os.Stdin)
		if file != "-" {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		w := cmd.OutOrStdout()
		var onOutcome func(int, *model.Outcome)
		if trace {
			onOutcome = func(line int, out *model.Outcome) {
				data, err := json.Marshal(out.View())
				if err == nil {
					fmt.Fprintf(w, "%d\t%s\n", line, data)
				}
			}
		}

		p := newReplayer(engine.New(engine.DefaultParams(), entropy), common.HexToAddress(nativeHex))
		res, err := p.run(in, top, onOutcome)
		if err != nil {
			return err
		}

		if output == outputFlagValJSON {
			return json.NewEncoder(w).Encode(res.view())
		}
		printHuman(w, res)
		return nil
	},
}

func printHuman(w io.Writer, res *Result) {
	fmt.Fprintf(w, "events:  %d (applied %d)\n", res.Events, res.Applied)
	reasons := make([]string, 0, len(res.Skipped))
	for reason := range res.Skipped {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "skipped: %s=%d\n", reason, res.Skipped[reason])
	}
	fmt.Fprintf(w, "jackpot: %s (draws %d, wins %d, paid out %s)\n",
		units.FormatWei(res.Jackpot.Balance), res.Jackpot.Draws, res.Jackpot.Wins, units.FormatWei(res.Jackpot.TotalPaidOut))
	for i, b := range res.Top {
		fmt.Fprintf(w, "%3d. %s %s\n", i+1, b.To.Hex(), units.FormatWei(b.Amount))
	}
	fmt.Fprintf(w, "root:    %s\n", res.Root.Hex())
}

type balanceView struct {
	Address common.Address `json:"address"`
	Points  string         `json:"points"`
}

type resultView struct {
	Events         int            `json:"events"`
	Applied        int            `json:"applied"`
	Skipped        map[string]int `json:"skipped"`
	Root           common.Hash    `json:"root"`
	JackpotBalance string         `json:"jackpot_balance"`
	JackpotDraws   uint64         `json:"jackpot_draws"`
	JackpotWins    uint64         `json:"jackpot_wins"`
	Top            []balanceView  `json:"top"`
}

func (r *Result) view() resultView {
	v := resultView{
		Events:         r.Events,
		Applied:        r.Applied,
		Skipped:        r.Skipped,
		Root:           r.Root,
		JackpotBalance: r.Jackpot.Balance.Dec(),
		JackpotDraws:   r.Jackpot.Draws,
		JackpotWins:    r.Jackpot.Wins,
		Top:            make([]balanceView, 0, len(r.Top)),
	}
	for _, b := range r.Top {
		v.Top = append(v.Top, balanceView{Address: b.To, Points: b.Amount.Dec()})
	}
	return v
}
