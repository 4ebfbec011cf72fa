// Package service evaluates skill rule documents against caller queries and
// renders the results into text safe to hand to a third party: never the
// rule content itself, only the scalars and author-chosen tokens it derived.
package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/allisson/secrets/internal/ruleengine/domain"
)

const freeformPreviewLimit = 100

// TryParseRules decodes doc as a structured rule document. The second return
// value is false (not an error) when doc is not a JSON array, is empty, or
// any element is missing a required field — callers fall back to free-form
// handling in that case.
func TryParseRules(doc []byte) ([]domain.Rule, bool) {
	var raw []json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(doc))
	if err := dec.Decode(&raw); err != nil {
		return nil, false
	}
	if len(raw) == 0 {
		return nil, false
	}

	rules := make([]domain.Rule, 0, len(raw))
	for _, item := range raw {
		var r domain.Rule
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, false
		}
		if r.ID == "" || r.Dimension == "" || r.Conclusion == "" {
			return nil, false
		}
		if r.Weight < 0 || r.Weight > 1 {
			return nil, false
		}
		rules = append(rules, r)
	}
	return rules, true
}

// Evaluate scores rules against query. Matching is case-insensitive
// substring on query's raw UTF-8; a rule with no keywords always fires.
func Evaluate(rules []domain.Rule, query string) domain.Evaluation {
	if len(rules) == 0 {
		return domain.Evaluation{OverallScore: 5.0, Verdict: domain.VerdictNeutral}
	}

	foldedQuery := strings.ToLower(query)

	type accumulator struct {
		sumFired, sumAll float64
		triggered        []string
		bestWeight       float64
		bestConclusion   string
		haveBest         bool
	}

	order := make([]string, 0)
	byDimension := make(map[string]*accumulator)
	anyFired := false

	for _, r := range rules {
		acc, ok := byDimension[r.Dimension]
		if !ok {
			acc = &accumulator{}
			byDimension[r.Dimension] = acc
			order = append(order, r.Dimension)
		}
		acc.sumAll += r.Weight

		fired := len(r.Condition.Keywords) == 0
		for _, kw := range r.Condition.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(foldedQuery, strings.ToLower(kw)) {
				fired = true
				break
			}
		}

		if !fired {
			continue
		}
		anyFired = true
		acc.sumFired += r.Weight
		acc.triggered = append(acc.triggered, r.ID)
		if !acc.haveBest || r.Weight > acc.bestWeight {
			acc.haveBest = true
			acc.bestWeight = r.Weight
			acc.bestConclusion = r.Conclusion
		}
	}

	results := make([]domain.DimensionResult, 0, len(order))
	var scoreSum float64
	var contributing int

	for _, dim := range order {
		acc := byDimension[dim]
		result := domain.DimensionResult{
			Dimension:      dim,
			TriggeredRules: acc.triggered,
			ConclusionKey:  acc.bestConclusion,
		}
		if acc.sumAll == 0 {
			// The dimension's weights sum to zero: it contributes nothing to
			// the overall score, but it still reports what fired.
			results = append(results, result)
			continue
		}
		result.Score = roundTo1(10 * acc.sumFired / acc.sumAll)
		results = append(results, result)
		scoreSum += result.Score
		contributing++
	}

	overall := 5.0
	if contributing > 0 {
		overall = roundTo1(scoreSum / float64(contributing))
	}

	verdict := domain.VerdictNeutral
	switch {
	case overall >= 7:
		verdict = domain.VerdictRecommend
	case overall < 4:
		verdict = domain.VerdictCaution
	}
	if !anyFired {
		verdict = domain.VerdictCaution
	}

	return domain.Evaluation{Dimensions: results, OverallScore: overall, Verdict: verdict}
}

// ToSafePrompt renders evaluation and the literal query into a report fit to
// send to an external collaborator: dimension names, scores, conclusion
// tokens, overall score, and verdict only — never a rule id, keyword, or
// weight.
func ToSafePrompt(evaluation domain.Evaluation, query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", query)
	for _, d := range evaluation.Dimensions {
		fmt.Fprintf(&b, "Dimension %s: score=%.1f conclusion=%s\n", d.Dimension, d.Score, d.ConclusionKey)
	}
	fmt.Fprintf(&b, "Overall score: %.1f\n", evaluation.OverallScore)
	fmt.Fprintf(&b, "Verdict: %s\n", evaluation.Verdict)
	return b.String()
}

// MockFreeformResponse stands in for local evaluation of a free-form rule
// document: it never reads the document at all, so it cannot leak it.
func MockFreeformResponse(query string) string {
	runes := []rune(query)
	preview := string(runes)
	truncated := false
	if len(runes) > freeformPreviewLimit {
		preview = string(runes[:freeformPreviewLimit])
		truncated = true
	}
	msg := "No structured rule set is configured for this skill; generic read of the query: " + preview
	if truncated {
		msg += "..."
	}
	return msg
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
