// Standalone banner odds analysis for the summon selector.
// Draws many rarities from each configured banner with the same selector the
// ledger uses and compares the observed rates with the configured odds.
package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"menagerie/gamedata"
	"menagerie/models"
	"menagerie/rules"

	"github.com/spf13/pflag"
)

// observed rate may drift this far from the configured probability
const tolerance = 0.01

func main() {
	var (
		dataPath string
		trials   int
		seed     int64
		banner   string
	)
	pflag.StringVarP(&dataPath, "data", "d", "", "game data file (built-in tables when empty)")
	pflag.IntVarP(&trials, "trials", "n", 100000, "draws per banner")
	pflag.Int64Var(&seed, "seed", 0, "random seed (clock when zero)")
	pflag.StringVarP(&banner, "banner", "b", "", "analyse only this banner")
	pflag.Parse()

	data, err := gamedata.Load(dataPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	kinds := make([]string, 0, len(data.Economy.Banners))
	for kind := range data.Economy.Banners {
		if banner == "" || banner == kind {
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) == 0 {
		fmt.Fprintf(os.Stderr, "unknown banner %q\n", banner)
		os.Exit(1)
	}
	sort.Strings(kinds)

	fmt.Printf("=== Banner Odds Analysis (seed %d) ===\n", seed)
	allPass := true
	for _, kind := range kinds {
		pass, err := analyzeBanner(os.Stdout, data.Economy.Banners[kind], trials, rules.NewRandom(seed))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		allPass = allPass && pass
	}
	if !allPass {
		os.Exit(2)
	}
}

// analyzeBanner draws trials rarities from banner and reports observed
// against expected rates with a chi-squared statistic
func analyzeBanner(w io.Writer, banner rules.Banner, trials int, rng rules.Random) (bool, error) {
	if trials <= 0 {
		return false, fmt.Errorf("trials must be positive: %d", trials)
	}
	tiers, err := rules.Probabilities(banner.Weights, banner.Luck)
	if err != nil {
		return false, err
	}

	selector := rules.NewSelector(rng)
	counts := make(map[models.Rarity]int, len(tiers))
	for i := 0; i < trials; i++ {
		r, err := selector.Select(banner.Weights, banner.Luck)
		if err != nil {
			return false, err
		}
		counts[r]++
	}

	fmt.Fprintf(w, "\n%s: %d %s per draw, luck %.2f, %d draws\n", banner.Kind, banner.Cost, banner.Currency, banner.Luck, trials)

	pass := true
	chiSquared := 0.0
	for _, t := range tiers {
		expected := float64(trials) * t.Probability
		actual := float64(counts[t.Rarity]) / float64(trials)
		deviation := actual - t.Probability
		if expected > 0 {
			chiSquared += math.Pow(float64(counts[t.Rarity])-expected, 2) / expected
		}

		mark := "✓"
		if math.Abs(deviation) > tolerance {
			mark = "✗"
			pass = false
		}
		fmt.Fprintf(w, "  %-10s expected %8.4f%% | actual %8.4f%% | deviation %+.4f%% %s\n",
			t.Rarity, t.Probability*100, actual*100, deviation*100, mark)
	}
	fmt.Fprintf(w, "  χ²: %.2f with %d df\n", chiSquared, len(tiers)-1)
	return pass, nil
}
