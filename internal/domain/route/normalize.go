package route

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/EcoCommute/service-planner/internal/domain"
)

// signature identifies a real-world route for deduplication. Two candidates
// with the same folded title, cost and duration are the same route even when
// the generator emitted them under different category labels.
type signature struct {
	title    string
	cost     float64
	duration float64
}

var titleFolder = cases.Fold()

// Normalize collapses signature-equal candidates into a single ordered list
// of options. The first occurrence of a signature keeps its position and all
// of its fields; later duplicates contribute only their tags, merged as a
// union with the existing tags first. Candidates are not mutated.
//
// A candidate with an empty title or a missing cost or duration makes its
// signature ill-defined; Normalize rejects the whole batch with a validation
// error naming the entry rather than silently grouping unrelated routes.
func Normalize(candidates []Candidate) ([]Option, error) {
	out := make([]Option, 0, len(candidates))
	bySignature := make(map[signature]int, len(candidates))

	for i, c := range candidates {
		title := strings.TrimSpace(c.Title)
		if title == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("route at position %d has no title", i))
		}
		if c.TotalCostCurrency == nil {
			return nil, domain.NewValidationError(fmt.Sprintf("route %q at position %d has no total cost", c.Title, i))
		}
		if c.TotalDurationMinutes == nil {
			return nil, domain.NewValidationError(fmt.Sprintf("route %q at position %d has no total duration", c.Title, i))
		}

		sig := signature{
			title:    titleFolder.String(title),
			cost:     *c.TotalCostCurrency,
			duration: *c.TotalDurationMinutes,
		}

		if at, seen := bySignature[sig]; seen {
			out[at].Tags = mergeTags(out[at].Tags, c.Tags)
			continue
		}

		bySignature[sig] = len(out)
		out = append(out, c.option())
	}

	return out, nil
}

// dedupTags removes duplicate tags (case-sensitive), keeping first-seen order.
func dedupTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// mergeTags unions two tag lists: existing tags first, then incoming tags not
// already present, in their own order.
func mergeTags(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	out := make([]string, 0, len(existing)+len(incoming))
	for _, t := range existing {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range incoming {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
