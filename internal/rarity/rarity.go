// Package rarity holds the pure math behind drop rates: conversions between
// the "percent chance" and "1-in-N" representations, drop probability over
// repeated runs, luck metrics, and achievement flavor text.
package rarity

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zanvidmar/dropquest/internal/model"
)

// Validation messages surfaced verbatim to the user.
const (
	ErrDropRateRequired = "Drop rate is required"
	ErrChanceRange      = "Chance must be greater than 0 and up to 100"
	ErrOneOverRange     = "1 Over must be between 1 and 100,000,000,000"
)

const maxOneOver = 100_000_000_000

// ChanceToOneOver converts a percent chance in (0, 100] to its "1 in N"
// form. Invalid input, including NaN, yields the 0 sentinel.
func ChanceToOneOver(chance float64) int {
	if math.IsNaN(chance) || chance <= 0 || chance > 100 {
		return 0
	}
	return int(math.Round(100 / chance))
}

// OneOverToChance renders a "1 in N" rarity as a percentage string with two
// decimals. Chances below 0.01% switch to exponential notation so they don't
// round to "0.00". Invalid input yields the empty string.
func OneOverToChance(oneOver float64) string {
	if math.IsNaN(oneOver) || oneOver <= 0 {
		return ""
	}
	chance := 100 / oneOver
	if chance < 0.01 {
		return formatExponential(chance)
	}
	return strconv.FormatFloat(chance, 'f', 2, 64)
}

// formatExponential matches the display convention of two significant
// decimals with an unpadded exponent ("1.00e-4", not "1.00e-04").
func formatExponential(v float64) string {
	s := strconv.FormatFloat(v, 'e', 2, 64)
	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign := ""
	if exp[0] == '+' || exp[0] == '-' {
		sign = string(exp[0])
		exp = exp[1:]
	}
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + "e" + sign + exp
}

// parseNumber mirrors lenient form-field parsing: leading whitespace is
// ignored and NaN signals "did not parse".
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// ValidateInputs checks the two synchronized rarity form fields. Both fields
// describe the same quantity, so blank-both is "required" while each
// non-blank field is range-checked independently. Returns the empty string
// when the inputs are acceptable.
func ValidateInputs(chanceValue, oneOverValue string) string {
	chanceBlank := strings.TrimSpace(chanceValue) == ""
	oneOverBlank := strings.TrimSpace(oneOverValue) == ""

	if chanceBlank && oneOverBlank {
		return ErrDropRateRequired
	}

	if !chanceBlank {
		chance := parseNumber(chanceValue)
		if math.IsNaN(chance) || chance <= 0 || chance > 100 {
			return ErrChanceRange
		}
	}

	if !oneOverBlank {
		oneOver := parseNumber(oneOverValue)
		if math.IsNaN(oneOver) || oneOver <= 0 || oneOver > maxOneOver {
			return ErrOneOverRange
		}
	}

	return ""
}

// ForSubmission resolves the two rarity fields into the stored integer N.
// The "1 in N" field wins when both are usable; otherwise N is derived from
// the chance field; 0 when neither parses.
func ForSubmission(chanceValue, oneOverValue string) int {
	oneOver := parseNumber(oneOverValue)
	if !math.IsNaN(oneOver) && oneOver > 0 {
		return int(math.Round(oneOver))
	}
	return ChanceToOneOver(parseNumber(chanceValue))
}

// ProgressProbability returns the percent probability of at least one drop
// in runs attempts at a 1-in-rarity drop rate, capped at 100.
func ProgressProbability(runs, rarity int) float64 {
	if rarity <= 0 {
		return 0
	}
	probability := 1 - math.Pow(float64(rarity-1)/float64(rarity), float64(runs))
	return math.Min(100, probability*100)
}

// RunsForProbability returns the minimum run count needed to reach the target
// probability (0..1). Infinite when rarity <= 1: a guaranteed drop needs no
// model, and rarity 1 makes the log base degenerate.
func RunsForProbability(rarity int, probability float64) float64 {
	if rarity <= 1 {
		return math.Inf(1)
	}
	return math.Ceil(math.Log(1-probability) / math.Log(float64(rarity-1)/float64(rarity)))
}

// achievementTiers map decreasing runs/rarity ratio thresholds to flavor
// text. Evaluated highest first; at most one tier applies.
var achievementTiers = []struct {
	threshold float64
	text      string
}{
	{8, "the balance of the universe is at stake, you truly earned it by now, we have nothing more to say..."},
	{7, "the mightiest out of thousands of grinds is truly yours..."},
	{6, "... goru mesork darma zurgu larach..."},
	{5, "eternity does no longer frighten you..."},
	{4.5, "truly for some nothing is written unless they writ it themselves..."},
	{4, "acolyte of drop, whisper of hope, thunder of fury, unstoppable..."},
	{3, "you thought you earned that message we skipped too? The persistance is admirable..."},
	{2, "whispers... grumbling.... sounds distant, far and close, oh you better be prepared...."},
	{1.5, "The people talk, the songs where made..."},
	{1, "Most believe they have earned it by now..."},
	{0.2, "It feels like the mechanics aren't that hard..."},
	{0.1, "Trying things, I see..."},
}

// AchievementText returns the flavor text tier for the current runs/rarity
// ratio, or the empty string below the lowest threshold.
func AchievementText(runs, rarity int) string {
	if rarity == 0 {
		return ""
	}
	ratio := float64(runs) / float64(rarity)
	for _, tier := range achievementTiers {
		if ratio >= tier.threshold {
			return tier.text
		}
	}
	return ""
}

// ItemLuck is rarity/runs for a single grind; lower means the drop came
// sooner than expected. Zero when either input is zero.
func ItemLuck(runs, rarity int) float64 {
	if runs == 0 || rarity == 0 {
		return 0
	}
	return float64(rarity) / float64(runs)
}

// PlayerLuck is the rarity-weighted average of per-item luck across items
// with both a rarity and at least one run. Items missing either are excluded
// from numerator and denominator alike.
func PlayerLuck(items []model.Item) float64 {
	var weighted, totalWeight float64
	for _, item := range items {
		if item.Rarity <= 0 || item.NumberOfRuns <= 0 {
			continue
		}
		weighted += ItemLuck(item.NumberOfRuns, item.Rarity) * float64(item.Rarity)
		totalWeight += float64(item.Rarity)
	}
	if totalWeight == 0 {
		return 0
	}
	return weighted / totalWeight
}

// TotalGrindTime renders the accumulated farming time for an item as
// "Xh Ym", based on its minutes-per-run estimate.
func TotalGrindTime(runs int, minutesPerRun float64) string {
	totalMinutes := float64(runs) * minutesPerRun
	hours := int(totalMinutes) / 60
	minutes := int(math.Round(math.Mod(totalMinutes, 60)))
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
