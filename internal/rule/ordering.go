package rule

import (
	"sort"

	"github.com/rxtech-lab/argo-signals/internal/types"
)

// ApplicationOrder returns a copy of the rules sorted for evaluation:
// priority ascending (1 first), name as the tie-break. The ordering is total
// so repeated runs over the same rule set are reproducible.
func ApplicationOrder(rules []types.Rule) []types.Rule {
	ordered := make([]types.Rule, len(rules))
	copy(ordered, rules)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}

		return ordered[i].Name < ordered[j].Name
	})

	return ordered
}

// PresentationOrder returns a copy of the signals sorted best-first for
// display: priority ascending, then confidence descending, name as the
// tie-break.
func PresentationOrder(signals []types.Signal) []types.Signal {
	ordered := make([]types.Signal, len(signals))
	copy(ordered, signals)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}

		if ordered[i].Confidence != ordered[j].Confidence {
			return ordered[i].Confidence > ordered[j].Confidence
		}

		return ordered[i].RuleName < ordered[j].RuleName
	})

	return ordered
}
