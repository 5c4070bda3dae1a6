package recommendation

import (
	"fmt"

	"github.com/riskibarqy/tactical-intel/internal/domain/matchstats"
)

// Rule maps a predicate over a derived profile to a payload.
type Rule[T any] struct {
	Name string
	When func(matchstats.Document) bool
	Then func(matchstats.Document) T
}

func static[T any](v T) func(matchstats.Document) T {
	return func(matchstats.Document) T { return v }
}

// firstMatch returns the payload of the first satisfied rule in declared order.
func firstMatch[T any](rules []Rule[T], doc matchstats.Document, fallback T) T {
	for _, rule := range rules {
		if rule.When(doc) {
			return rule.Then(doc)
		}
	}
	return fallback
}

// collectAll returns every satisfied rule's payload in declared order, or
// the fallback alone when none fired.
func collectAll[T any](rules []Rule[T], doc matchstats.Document, fallback T) []T {
	out := matching(rules, doc)
	if len(out) == 0 {
		out = append(out, fallback)
	}
	return out
}

func matching[T any](rules []Rule[T], doc matchstats.Document) []T {
	out := make([]T, 0, len(rules))
	for _, rule := range rules {
		if rule.When(doc) {
			out = append(out, rule.Then(doc))
		}
	}
	return out
}

func ppda(d matchstats.Document) float64 { return d.PressingStructure.PPDA }

func setPieceWeak(d matchstats.Document) bool {
	return d.SetPieces.Defensive.SetPieceWeakness == "High"
}

func highLine(d matchstats.Document) bool {
	return d.TeamShape.DefensiveLineHeight > 48
}

const currentFormation = "4-2-3-1"

var formationRules = []Rule[FormationChange]{
	{
		Name: "high_press_go_direct",
		When: func(d matchstats.Document) bool { return ppda(d) < 10 },
		Then: static(FormationChange{
			Formation: "4-4-2 Diamond",
			Reason:    "Opponent presses high - bypass with direct play through diamond",
			Priority:  PriorityHigh,
		}),
	},
	{
		Name: "weak_defense_attack",
		When: func(d matchstats.Document) bool { return d.DefensiveActions.DefensiveRating == "Vulnerable" },
		Then: static(FormationChange{
			Formation: "4-3-3 Attack",
			Reason:    "Weak defense detected - use width and pace to overload",
			Priority:  PriorityCritical,
		}),
	},
	{
		Name: "narrow_shape_go_wide",
		When: func(d matchstats.Document) bool { return d.TeamShape.TeamCompactness == "Narrow" },
		Then: static(FormationChange{
			Formation: "3-5-2 Wide",
			Reason:    "Opponent plays narrow - exploit flanks with wingbacks",
			Priority:  PriorityMedium,
		}),
	},
}

var defaultFormation = FormationChange{
	Formation: currentFormation,
	Reason:    "Balanced approach",
	Priority:  PriorityMedium,
}

var pressingRules = []Rule[PressingChange]{
	{
		Name: "press_high_on_sloppy_passing",
		When: func(d matchstats.Document) bool { return d.PossessionControl.PassAccuracy < 75 },
		Then: func(d matchstats.Document) PressingChange {
			return PressingChange{
				Adjustment: "HIGH PRESS",
				TargetLine: "50-60m from own goal",
				Reason:     fmt.Sprintf("Low pass accuracy (%s) - press high to force errors", matchstats.FormatPercent(d.PossessionControl.PassAccuracy)),
				Priority:   PriorityCritical,
			}
		},
	},
	{
		Name: "mid_block_on_passive_press",
		When: func(d matchstats.Document) bool { return ppda(d) > 14 },
		Then: static(PressingChange{
			Adjustment: "MID-BLOCK",
			TargetLine: "35-45m from own goal",
			Reason:     "Opponent doesn't press - control midfield and counter",
			Priority:   PriorityMedium,
		}),
	},
}

var defaultPressing = PressingChange{
	Adjustment: "STANDARD",
	TargetLine: "40-50m",
	Reason:     "Balanced approach",
	Priority:   PriorityLow,
}

var fullbackRules = []Rule[RoleChange]{
	{
		Name: "inverted_fullbacks_against_width",
		When: func(d matchstats.Document) bool { return d.TeamShape.WidthUsage == "Wide flanks exploited" },
		Then: static(RoleChange{
			Position:   "Fullbacks",
			RoleChange: "Inverted Fullbacks → Tuck inside to block central penetration",
			Reason:     "Opponent exploits flanks - need central cover",
		}),
	},
}

var overlappingFullbacks = RoleChange{
	Position:   "Fullbacks",
	RoleChange: "Overlapping Fullbacks → Push high and wide",
	Reason:     "Opponent doesn't use width - exploit space",
}

var strikerRules = []Rule[RoleChange]{
	{
		Name: "false_nine_against_high_line",
		When: highLine,
		Then: static(RoleChange{
			Position:   "Striker",
			RoleChange: "False 9 → Drop deep to drag defenders",
			Reason:     "High defensive line - create space for runners",
		}),
	},
	{
		Name: "target_man_for_set_pieces",
		When: setPieceWeak,
		Then: static(RoleChange{
			Position:   "Striker",
			RoleChange: "Target Man → Dominant aerial presence for set pieces",
			Reason:     "Opponent weak on set pieces - exploit aerially",
		}),
	},
}

var targetZoneRules = []Rule[TargetZone]{
	{
		Name: "half_spaces_against_narrow_block",
		When: func(d matchstats.Document) bool { return d.TeamShape.TeamCompactness == "Narrow" },
		Then: static(TargetZone{
			Zone:            "Half-Spaces (channels between center and flanks)",
			AttackMethod:    "Inverted wingers cutting inside",
			Priority:        PriorityCritical,
			ExpectedOutcome: "1v1 situations in dangerous areas",
		}),
	},
	{
		Name: "flanks_against_central_focus",
		When: func(d matchstats.Document) bool { return d.TeamShape.WidthUsage == "Central focus" },
		Then: static(TargetZone{
			Zone:            "Wide Flanks",
			AttackMethod:    "Overlap with fullbacks and wingers",
			Priority:        PriorityHigh,
			ExpectedOutcome: "Cross opportunities and cutbacks",
		}),
	},
	{
		Name: "in_behind_against_high_line",
		When: highLine,
		Then: static(TargetZone{
			Zone:            "Space Behind Defensive Line",
			AttackMethod:    "Through balls and runs in behind",
			Priority:        PriorityCritical,
			ExpectedOutcome: "1v1 with goalkeeper",
		}),
	},
	{
		Name: "counter_spaces_against_slow_recovery",
		When: func(d matchstats.Document) bool {
			return d.Transitions.Defensive.RecoveryTimeAfterLoss == "Slow (>5s)"
		},
		Then: static(TargetZone{
			Zone:            "Counter-Attack Spaces",
			AttackMethod:    "Quick transitions after recovery",
			Priority:        PriorityHigh,
			ExpectedOutcome: "Numerical superiority in attack",
		}),
	},
}

var defaultTargetZone = TargetZone{
	Zone:            "Central Channels",
	AttackMethod:    "Patient combination play between the lines",
	Priority:        PriorityMedium,
	ExpectedOutcome: "Gradual territorial control",
}

var substitutionRules = []Rule[Substitution]{
	{
		Name: "fresh_legs_against_tiring_side",
		When: func(d matchstats.Document) bool { return d.Context.FatigueIndicators == "High" },
		Then: static(Substitution{
			Timing: "60-65 minutes",
			Type:   "Fresh attackers",
			Reason: "Opponent shows fatigue - exploit with pace in final third",
		}),
	},
	{
		Name: "holding_midfielder_against_high_press",
		When: func(d matchstats.Document) bool { return d.PressingStructure.PressingIntensity == "High" },
		Then: static(Substitution{
			Timing: "70-75 minutes",
			Type:   "Defensive midfielder",
			Reason: "High press fatigues them - control midfield late",
		}),
	},
}

var defaultSubstitution = Substitution{
	Timing: "70 minutes",
	Type:   "Standard rotation",
	Reason: "Maintain freshness",
}

var switchRules = []Rule[Switch]{
	{
		Name: "extra_centre_back_when_starved",
		When: func(d matchstats.Document) bool { return d.PossessionControl.PossessionPercent < 40 },
		Then: static(Switch{
			Trigger: "If possession < 40%",
			Switch:  "Shift from 4-3-3 → 5-3-2",
			Timing:  "Immediately",
			Reason:  "Stabilize possession with extra center-back",
		}),
	},
	{
		Name: "long_balls_against_aggressive_press",
		When: func(d matchstats.Document) bool { return ppda(d) < 9 },
		Then: static(Switch{
			Trigger: "If opponent presses aggressively",
			Switch:  "Direct long balls → Target striker",
			Timing:  "When pressed",
			Reason:  "Bypass press with aerial route",
		}),
	},
}

var defaultSwitch = Switch{
	Trigger: "Standard",
	Switch:  "No immediate changes",
	Timing:  "Monitor",
	Reason:  "Maintain current approach",
}

var weaknessRules = []Rule[Weakness]{
	{
		Name: "no_pressing_structure",
		When: func(d matchstats.Document) bool { return ppda(d) > 15 },
		Then: static(Weakness{
			Weakness:       "No Pressing Structure",
			Severity:       PriorityCritical,
			Exploitation:   "Build from back → Control possession → Patient build-up",
			ExpectedImpact: "70%+ possession, control tempo",
		}),
	},
	{
		Name: "slow_defensive_transitions",
		When: func(d matchstats.Document) bool { return d.Transitions.Defensive.RestDefenseQuality == "Poor" },
		Then: static(Weakness{
			Weakness:       "Slow Defensive Transitions",
			Severity:       PriorityHigh,
			Exploitation:   "Win ball → Immediate vertical pass → Exploit space",
			ExpectedImpact: "2-3 clear counter-attack chances",
		}),
	},
	{
		Name: "set_piece_defending",
		When: setPieceWeak,
		Then: static(Weakness{
			Weakness:       "Set Piece Defending",
			Severity:       PriorityCritical,
			Exploitation:   "Target tall players → Practice corner routines",
			ExpectedImpact: "1+ goal from set pieces",
		}),
	},
	{
		Name: "poor_tackling",
		When: func(d matchstats.Document) bool { return d.DefensiveActions.TackleSuccessRate < 60 },
		Then: static(Weakness{
			Weakness:       "Poor Tackling",
			Severity:       PriorityMedium,
			Exploitation:   "Dribble at defenders → Draw fouls in dangerous areas",
			ExpectedImpact: "Free-kicks near box, potential penalties",
		}),
	},
}

var defaultWeakness = Weakness{
	Weakness:       "No Clear Weakness",
	Severity:       PriorityLow,
	Exploitation:   "Stick to the game plan → Probe with balanced possession",
	ExpectedImpact: "Marginal gains through structure",
}

var adjustmentRules = []Rule[string]{
	{
		Name: "press_high_against_passive_block",
		When: func(d matchstats.Document) bool { return ppda(d) > 15 },
		Then: static("CRITICAL: Opponent allows 15+ passes before pressure - PRESS HIGH"),
	},
	{
		Name: "transition_quality_against_possession_side",
		When: func(d matchstats.Document) bool { return d.PossessionControl.PossessionPercent < 40 },
		Then: static("Opponent dominates possession - focus on transition quality"),
	},
	{
		Name: "stay_compact_against_high_possession",
		When: func(d matchstats.Document) bool { return d.PossessionControl.PossessionPercent > 60 },
		Then: static("Opponent high possession - stay compact, counter efficiently"),
	},
	{
		Name: "attack_weak_duels",
		When: func(d matchstats.Document) bool { return d.DefensiveActions.DefensiveDuelsWonPercent < 60 },
		Then: func(d matchstats.Document) string {
			return fmt.Sprintf("TARGET: Weak defensive duels (%s) - attack 1v1 situations", matchstats.FormatPercent(d.DefensiveActions.DefensiveDuelsWonPercent))
		},
	},
	{
		Name: "set_piece_weapon",
		When: setPieceWeak,
		Then: static("SET PIECE WEAPON: Opponent weak - prioritize corner routines"),
	},
}

const defaultAdjustment = "No critical adjustments - maintain the game plan"
