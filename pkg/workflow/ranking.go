package workflow

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// rankingSectionPrefix marks the start of the structured ranking section
// an evaluator is instructed to emit. Matching is case-sensitive.
const rankingSectionPrefix = "FINAL RANKING"

var (
	// numberedLabelPattern matches one numbered ranking line, e.g. "1. Response B".
	numberedLabelPattern = regexp.MustCompile(`^\s*\d+\.\s*(Response [A-Z])\s*$`)

	// anyLabelPattern finds response labels anywhere in free-form text.
	anyLabelPattern = regexp.MustCompile(`Response [A-Z]`)
)

// ParseRanking extracts an ordered list of response labels from free-form
// evaluator text. Strategy, in order:
//
//  1. Find the first line beginning with "FINAL RANKING".
//  2. Collect subsequent numbered lines ("1. Response B"), skipping blank
//     lines, stopping at the first non-empty non-matching line.
//  3. If the section exists but yields no numbered lines, collect every
//     label occurring in the section, in order.
//  4. With no section at all, collect every label in the whole text.
//
// Duplicate labels within one ranking are preserved. An empty result means
// the evaluator produced nothing parseable.
func ParseRanking(text string) []string {
	lines := strings.Split(text, "\n")

	sectionStart := -1
	for i, line := range lines {
		if strings.HasPrefix(line, rankingSectionPrefix) {
			sectionStart = i
			break
		}
	}

	if sectionStart < 0 {
		return anyLabelPattern.FindAllString(text, -1)
	}

	var ranked []string
	for _, line := range lines[sectionStart+1:] {
		if m := numberedLabelPattern.FindStringSubmatch(line); m != nil {
			ranked = append(ranked, m[1])
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		break
	}
	if len(ranked) > 0 {
		return ranked
	}

	section := strings.Join(lines[sectionStart:], "\n")
	return anyLabelPattern.FindAllString(section, -1)
}

// FormatRanking renders labels as the canonical ranking section. It is the
// inverse of ParseRanking for any list of labels.
func FormatRanking(labels []string) string {
	var b strings.Builder
	b.WriteString(rankingSectionPrefix + ":\n")
	for i, label := range labels {
		fmt.Fprintf(&b, "%d. %s\n", i+1, label)
	}
	return b.String()
}

// AggregateRanking is one model's summary across all evaluators that
// ranked it. Lower AverageRank is better.
type AggregateRanking struct {
	Model         string  `json:"model"`
	AverageRank   float64 `json:"averageRank"`
	RankingsCount int     `json:"rankingsCount"`
}

// AggregateRankings combines per-evaluator parsed rankings into one
// summary per model. A label at zero-based index i contributes position
// i+1 to the model it maps to; labels missing from labelToModel are
// skipped. Averages are rounded to two decimals. The result is sorted
// ascending by average rank; ties keep first-appearance order.
func AggregateRankings(rankings []ModelRanking, labelToModel map[string]string) []AggregateRanking {
	type accumulator struct {
		sum   int
		count int
	}

	var order []string
	byModel := map[string]*accumulator{}
	for _, ranking := range rankings {
		for i, label := range ranking.ParsedRanking {
			model, ok := labelToModel[label]
			if !ok {
				continue
			}
			acc, exists := byModel[model]
			if !exists {
				acc = &accumulator{}
				byModel[model] = acc
				order = append(order, model)
			}
			acc.sum += i + 1
			acc.count++
		}
	}

	out := make([]AggregateRanking, 0, len(order))
	for _, model := range order {
		acc := byModel[model]
		avg := math.Round(float64(acc.sum)/float64(acc.count)*100) / 100
		out = append(out, AggregateRanking{
			Model:         model,
			AverageRank:   avg,
			RankingsCount: acc.count,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AverageRank < out[j].AverageRank
	})
	return out
}

// labelForIndex returns the anonymized label for the i-th successful
// response: "Response A", "Response B", ...
func labelForIndex(i int) string {
	return fmt.Sprintf("Response %c", rune('A'+i))
}
