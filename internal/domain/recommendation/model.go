package recommendation

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// Urgent reports whether the priority should surface as a weak area.
func (p Priority) Urgent() bool {
	return p == PriorityHigh || p == PriorityCritical
}

// Document is the coaching output for one opponent profile.
type Document struct {
	FormationChanges    FormationAdvice    `json:"formation_changes"`
	PressingAdjustments PressingAdvice     `json:"pressing_adjustments"`
	PlayerRoleChanges   []RoleChange       `json:"player_role_changes"`
	TargetZones         TargetZoneAdvice   `json:"target_zones"`
	SubstitutionTiming  SubstitutionAdvice `json:"substitution_timing"`
	InGameSwitches      []Switch           `json:"in_game_switches"`
	ExploitWeaknesses   []Weakness         `json:"exploit_weaknesses"`
	KeyAdjustments      []string           `json:"key_adjustments"`
	AIConfidence        Confidence         `json:"ai_confidence"`
}

type FormationAdvice struct {
	Recommendations  []FormationChange `json:"recommendations"`
	CurrentFormation string            `json:"current_formation"`
}

type FormationChange struct {
	Formation string   `json:"formation"`
	Reason    string   `json:"reason"`
	Priority  Priority `json:"priority"`
}

type PressingAdvice struct {
	Recommendations []PressingChange `json:"pressing_recommendations"`
}

type PressingChange struct {
	Adjustment string   `json:"adjustment"`
	TargetLine string   `json:"target_line"`
	Reason     string   `json:"reason"`
	Priority   Priority `json:"priority"`
}

type RoleChange struct {
	Position   string `json:"position"`
	RoleChange string `json:"role_change"`
	Reason     string `json:"reason"`
}

type TargetZoneAdvice struct {
	PriorityZones []TargetZone `json:"priority_zones"`
	Heatmap       string       `json:"zone_heatmap_recommendation"`
}

type TargetZone struct {
	Zone            string   `json:"zone"`
	AttackMethod    string   `json:"attack_method"`
	Priority        Priority `json:"priority"`
	ExpectedOutcome string   `json:"expected_outcome"`
}

type SubstitutionAdvice struct {
	Recommendations []Substitution `json:"substitution_recommendations"`
}

type Substitution struct {
	Timing string `json:"timing"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type Switch struct {
	Trigger string `json:"trigger"`
	Switch  string `json:"switch"`
	Timing  string `json:"timing"`
	Reason  string `json:"reason"`
}

type Weakness struct {
	Weakness       string   `json:"weakness"`
	Severity       Priority `json:"severity"`
	Exploitation   string   `json:"exploitation"`
	ExpectedImpact string   `json:"expected_impact"`
}

type Confidence struct {
	OverallConfidence         int    `json:"overall_confidence"`
	RecommendationReliability string `json:"recommendation_reliability"`
	DataQuality               string `json:"data_quality"`
}
