package models

import "strings"

// Phase is the lifecycle stage an article was written in
type Phase string

const (
	PhaseConsidering Phase = "considering"
	PhaseLaunching   Phase = "launching"
	PhaseEarlyStage  Phase = "early_stage"
	PhaseGrowthStage Phase = "growth_stage"
)

// Phases lists every phase in lifecycle order
var Phases = []Phase{PhaseConsidering, PhaseLaunching, PhaseEarlyStage, PhaseGrowthStage}

var phaseLabels = map[Phase]string{
	PhaseConsidering: "起業検討期",
	PhaseLaunching:   "直前・直後",
	PhaseEarlyStage:  "開始期",
	PhaseGrowthStage: "成長期",
}

// Label returns the display label
func (p Phase) Label() string {
	return phaseLabels[p]
}

// Order returns the position of the phase in the lifecycle, or -1 if unknown
func (p Phase) Order() int {
	for i, v := range Phases {
		if v == p {
			return i
		}
	}
	return -1
}

// Valid reports whether p is one of the known phases
func (p Phase) Valid() bool {
	return p.Order() >= 0
}

// ParsePhase accepts a stored value or a display label
func ParsePhase(s string) (Phase, bool) {
	s = strings.TrimSpace(s)
	for _, p := range Phases {
		if string(p) == s || phaseLabels[p] == s {
			return p, true
		}
	}
	return "", false
}

// Outcome classifies what the author took away from the event
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeOther   Outcome = "other"
)

// Outcomes lists every outcome
var Outcomes = []Outcome{OutcomeSuccess, OutcomeFailure, OutcomeOther}

var outcomeLabels = map[Outcome]string{
	OutcomeSuccess: "成功体験",
	OutcomeFailure: "失敗体験",
	OutcomeOther:   "その他",
}

// Label returns the display label
func (o Outcome) Label() string {
	return outcomeLabels[o]
}

// Valid reports whether o is one of the known outcomes
func (o Outcome) Valid() bool {
	_, ok := outcomeLabels[o]
	return ok
}

// ParseOutcome accepts a stored value or a display label
func ParseOutcome(s string) (Outcome, bool) {
	s = strings.TrimSpace(s)
	for _, o := range Outcomes {
		if string(o) == s || outcomeLabels[o] == s {
			return o, true
		}
	}
	return "", false
}

// Category is a business-function tag; an article may carry several
type Category string

const (
	CategorySales            Category = "sales"
	CategoryMarketing        Category = "marketing"
	CategoryBusinessPlanning Category = "business_planning"
	CategoryAccounting       Category = "accounting"
	CategoryDevelopment      Category = "development"
	CategoryMisc             Category = "misc"
)

// Categories lists every category
var Categories = []Category{
	CategorySales,
	CategoryMarketing,
	CategoryBusinessPlanning,
	CategoryAccounting,
	CategoryDevelopment,
	CategoryMisc,
}

var categoryLabels = map[Category]string{
	CategorySales:            "営業",
	CategoryMarketing:        "マーケティング",
	CategoryBusinessPlanning: "事業計画",
	CategoryAccounting:       "経理",
	CategoryDevelopment:      "開発",
	CategoryMisc:             "雑務",
}

// Label returns the display label
func (c Category) Label() string {
	return categoryLabels[c]
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory accepts a stored value or a display label
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if string(c) == s || categoryLabels[c] == s {
			return c, true
		}
	}
	return "", false
}
