// Package domain defines the rule document and evaluation models for local,
// in-process scoring of a skill's rule set against a caller query. No field
// of a Rule, and no aggregate containing one, ever crosses a component
// boundary except the rule's id (embedded in a dimension's TriggeredRules)
// and the dimension/conclusion tokens the rule author chose.
package domain

// Rule is one entry of a structured rule document.
type Rule struct {
	ID         string    `json:"id"`
	Dimension  string    `json:"dimension"`
	Condition  Condition `json:"condition"`
	Conclusion string    `json:"conclusion"`
	Weight     float64   `json:"weight"`
}

// Condition gates whether a Rule fires. An absent or empty Keywords list
// means the rule always fires.
type Condition struct {
	Keywords []string `json:"keywords"`
}

// DimensionResult is the per-dimension outcome of evaluating a rule set
// against a query.
type DimensionResult struct {
	Dimension      string
	Score          float64
	TriggeredRules []string
	ConclusionKey  string
}

// Evaluation is the full result of scoring a structured rule document
// against a query.
type Evaluation struct {
	Dimensions   []DimensionResult
	OverallScore float64
	Verdict      string
}

const (
	VerdictRecommend = "recommend"
	VerdictCaution   = "caution"
	VerdictNeutral   = "neutral"
)
