package sentiment

import "github.com/rocksoncodes/market-scout/internal/model"

// Classification thresholds. Fixed constants, not configuration: a compound
// exactly on a boundary is Neutral.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// Classify maps a compound score to its label.
func Classify(compound float64) model.Label {
	switch {
	case compound > positiveThreshold:
		return model.LabelPositive
	case compound < negativeThreshold:
		return model.LabelNegative
	default:
		return model.LabelNeutral
	}
}

// Summarize rolls a post's comment scores into its summary: dominant label by
// majority vote and the arithmetic mean of compounds. Ties break to the label
// encountered first, which keeps the rollup deterministic for a fixed input
// sequence. Zero scores yield {Neutral, 0.0, empty counts} — a post without
// comments still gets a summary row.
func Summarize(scores []model.CommentScore) model.Summary {
	counts := make(map[model.Label]int, 3)
	if len(scores) == 0 {
		return model.Summary{Dominant: model.LabelNeutral, AvgCompound: 0.0, Counts: counts}
	}

	var firstSeen []model.Label
	var sum float64
	for _, sc := range scores {
		if counts[sc.Label] == 0 {
			firstSeen = append(firstSeen, sc.Label)
		}
		counts[sc.Label]++
		sum += sc.Compound
	}

	dominant := firstSeen[0]
	for _, label := range firstSeen[1:] {
		if counts[label] > counts[dominant] {
			dominant = label
		}
	}

	return model.Summary{
		Dominant:    dominant,
		AvgCompound: sum / float64(len(scores)),
		Counts:      counts,
	}
}
