package cmd

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/R-Song/conflux-go/foundation/blockchain/pow"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
)

var (
	epochs   uint64
	hashrate float64
	referees float64
	growth   float64
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation and print the difficulty per epoch.",
	Run: func(cmd *cobra.Command, args []string) {
		if hashrate <= 0 {
			log.Fatal("hashrate must be positive")
		}

		cfg := pow.NewConfig(testMode, false, initialDifficulty, "", 0, nil)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "EPOCH\tDIFFICULTY\tBLOCK TIME\tHASHRATE")

		difficulty := uint256.NewInt(cfg.InitialDifficulty)
		for epoch := uint64(1); epoch <= epochs; epoch++ {
			blockTime := blockTimeMicros(difficulty, hashrate)
			fmt.Fprintf(w, "%d\t%v\t%.3fs\t%.0f\n", epoch, difficulty, float64(blockTime)/1e6, hashrate)

			// The adjustment sees one pivot block per walk step plus the
			// referee blocks the epochs pulled in alongside it.
			blockCount := uint64(float64(cfg.DifficultyAdjustmentEpochPeriod) * (1 + referees))

			// Timestamps carry second resolution, so the observed span
			// over an epoch walk does too.
			timespan := blockTime * (cfg.DifficultyAdjustmentEpochPeriod - 1) / 1_000_000

			target := cfg.TargetDifficulty(blockCount, timespan, difficulty)

			minDiff, maxDiff := cfg.GetAdjustmentBound(difficulty)
			if target.Lt(minDiff) {
				target = minDiff
			}
			if target.Gt(maxDiff) {
				target = maxDiff
			}
			difficulty = target

			hashrate *= 1 + growth/100
		}

		w.Flush()
	},
}

// blockTimeMicros returns the expected microseconds between blocks for a
// network hashing at the given rate against the given difficulty.
func blockTimeMicros(difficulty *uint256.Int, hashrate float64) uint64 {
	seconds := difficulty.Float64() / hashrate
	return uint64(seconds * 1e6)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Uint64VarP(&epochs, "epochs", "e", 20, "Number of epochs to simulate.")
	runCmd.Flags().Float64VarP(&hashrate, "hashrate", "r", 40_000_000, "Network hashrate in hashes per second.")
	runCmd.Flags().Float64Var(&referees, "referees", 0, "Average referee blocks admitted per pivot block.")
	runCmd.Flags().Float64Var(&growth, "growth", 0, "Hashrate growth per epoch in percent.")
}
