package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/secrets/internal/ruleengine/domain"
)

const scenarioADocument = `[
	{"id":"r1","dimension":"market_fit","condition":{"keywords":["B2B","SaaS"]},"conclusion":"strong","weight":0.9},
	{"id":"r2","dimension":"market_fit","condition":{"keywords":["niche"]},"conclusion":"weak","weight":0.4},
	{"id":"r3","dimension":"team","condition":{},"conclusion":"unknown","weight":0.5}
]`

func TestTryParseRules_StructuredDocument(t *testing.T) {
	rules, ok := TryParseRules([]byte(scenarioADocument))
	require.True(t, ok)
	require.Len(t, rules, 3)
	assert.Equal(t, "r1", rules[0].ID)
	assert.Equal(t, []string{"B2B", "SaaS"}, rules[0].Condition.Keywords)
}

func TestTryParseRules_FreeForm(t *testing.T) {
	_, ok := TryParseRules([]byte("# markdown"))
	assert.False(t, ok)
}

func TestTryParseRules_EmptyArray(t *testing.T) {
	_, ok := TryParseRules([]byte("[]"))
	assert.False(t, ok)
}

func TestTryParseRules_MissingRequiredField(t *testing.T) {
	_, ok := TryParseRules([]byte(`[{"id":"r1","condition":{},"conclusion":"x","weight":0.1}]`))
	assert.False(t, ok, "missing dimension should fall back to free-form")
}

func TestTryParseRules_WeightOutOfRange(t *testing.T) {
	_, ok := TryParseRules([]byte(`[{"id":"r1","dimension":"d","condition":{},"conclusion":"c","weight":1.5}]`))
	assert.False(t, ok)
}

// TestEvaluate_ScenarioA reproduces the literal example from the testable
// properties: two market_fit rules plus one always-firing team rule.
func TestEvaluate_ScenarioA(t *testing.T) {
	rules, ok := TryParseRules([]byte(scenarioADocument))
	require.True(t, ok)

	eval := Evaluate(rules, "This is a B2B SaaS startup.")

	require.Len(t, eval.Dimensions, 2)

	marketFit := eval.Dimensions[0]
	assert.Equal(t, "market_fit", marketFit.Dimension)
	assert.InDelta(t, 6.9, marketFit.Score, 0.05)
	assert.Equal(t, "strong", marketFit.ConclusionKey)
	assert.Equal(t, []string{"r1"}, marketFit.TriggeredRules)

	team := eval.Dimensions[1]
	assert.Equal(t, "team", team.Dimension)
	assert.Equal(t, 10.0, team.Score)
	assert.Equal(t, "unknown", team.ConclusionKey)

	assert.InDelta(t, 8.5, eval.OverallScore, 0.05)
	assert.Equal(t, domain.VerdictRecommend, eval.Verdict)
}

func TestEvaluate_EmptyRules(t *testing.T) {
	eval := Evaluate(nil, "anything")
	assert.Empty(t, eval.Dimensions)
	assert.Equal(t, 5.0, eval.OverallScore)
	assert.Equal(t, domain.VerdictNeutral, eval.Verdict)
}

func TestEvaluate_NothingFiredIsCaution(t *testing.T) {
	rules := []domain.Rule{
		{ID: "r1", Dimension: "d1", Condition: domain.Condition{Keywords: []string{"unrelated"}}, Conclusion: "c1", Weight: 0.8},
	}
	eval := Evaluate(rules, "no match here")
	assert.Equal(t, domain.VerdictCaution, eval.Verdict)
}

func TestToSafePrompt_ScenarioA_ContainsNoRuleContent(t *testing.T) {
	rules, ok := TryParseRules([]byte(scenarioADocument))
	require.True(t, ok)

	query := "This is a B2B SaaS startup."
	eval := Evaluate(rules, query)
	prompt := ToSafePrompt(eval, query)

	assert.Contains(t, prompt, query)
	for _, forbidden := range []string{"B2B", "SaaS", "niche", "r1", "r2", "r3", "weight", "condition"} {
		assert.NotContains(t, strings.ToLower(prompt), strings.ToLower(forbidden), "leaked %q", forbidden)
	}
}

// TestToSafePrompt_NoKeywordLeakage is a lightweight property check: for a
// rule set whose keywords never appear in the query, none of those keywords
// may appear in the safe prompt.
func TestToSafePrompt_NoKeywordLeakage(t *testing.T) {
	rules := []domain.Rule{
		{ID: "r1", Dimension: "risk", Condition: domain.Condition{Keywords: []string{"fraud", "chargeback"}}, Conclusion: "elevated", Weight: 0.7},
		{ID: "r2", Dimension: "risk", Condition: domain.Condition{}, Conclusion: "baseline", Weight: 0.3},
	}
	query := "Generic onboarding request with no sensitive terms."
	eval := Evaluate(rules, query)
	prompt := ToSafePrompt(eval, query)

	assert.NotContains(t, prompt, "fraud")
	assert.NotContains(t, prompt, "chargeback")
	assert.NotContains(t, prompt, "r1")
	assert.NotContains(t, prompt, "r2")
}

// TestMockFreeformResponse_ScenarioB reproduces the free-form fallback
// example: a 250-character query truncated to its first 100 code points.
func TestMockFreeformResponse_ScenarioB(t *testing.T) {
	query := strings.Repeat("x", 250)
	response := MockFreeformResponse(query)

	assert.Contains(t, response, strings.Repeat("x", 100)+"...")
	assert.NotContains(t, response, strings.Repeat("x", 101))
}

func TestMockFreeformResponse_ShortQueryNotTruncated(t *testing.T) {
	response := MockFreeformResponse("short query")
	assert.Contains(t, response, "short query")
	assert.NotContains(t, response, "...")
}

func TestMockFreeformResponse_CodePointsNotBytes(t *testing.T) {
	query := strings.Repeat("é", 150) // multi-byte rune, should still count as 150 code points
	response := MockFreeformResponse(query)
	assert.Contains(t, response, strings.Repeat("é", 100)+"...")
}
