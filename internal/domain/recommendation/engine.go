package recommendation

import (
	"strings"

	"github.com/riskibarqy/tactical-intel/internal/domain/matchstats"
)

const (
	baseConfidence = 75
	maxConfidence  = 95

	qualityLastMatch = "Good - based on last match analysis"
	qualityNeutral   = "Limited - no recent match data, neutral assumptions applied"
)

// Recommend maps a derived opponent profile to coaching actions. An empty
// profile is evaluated against neutral assumptions instead of zero values.
func Recommend(stats matchstats.Document) Document {
	quality := qualityLastMatch
	if stats.Empty() {
		stats = matchstats.Neutral(stats.TeamName)
		quality = qualityNeutral
	}

	zones := collectAll(targetZoneRules, stats, defaultTargetZone)

	return Document{
		FormationChanges: FormationAdvice{
			Recommendations:  []FormationChange{firstMatch(formationRules, stats, defaultFormation)},
			CurrentFormation: currentFormation,
		},
		PressingAdjustments: PressingAdvice{
			Recommendations: collectAll(pressingRules, stats, defaultPressing),
		},
		PlayerRoleChanges: append(
			[]RoleChange{firstMatch(fullbackRules, stats, overlappingFullbacks)},
			matching(strikerRules, stats)...,
		),
		TargetZones: TargetZoneAdvice{
			PriorityZones: zones,
			Heatmap:       heatmap(zones),
		},
		SubstitutionTiming: SubstitutionAdvice{
			Recommendations: collectAll(substitutionRules, stats, defaultSubstitution),
		},
		InGameSwitches:    collectAll(switchRules, stats, defaultSwitch),
		ExploitWeaknesses: collectAll(weaknessRules, stats, defaultWeakness),
		KeyAdjustments:    collectAll(adjustmentRules, stats, defaultAdjustment),
		AIConfidence:      confidence(stats, quality),
	}
}

// UrgentWeaknesses returns the HIGH and CRITICAL weaknesses in rule order.
func UrgentWeaknesses(doc Document) []Weakness {
	out := make([]Weakness, 0, len(doc.ExploitWeaknesses))
	for _, w := range doc.ExploitWeaknesses {
		if w.Severity.Urgent() {
			out = append(out, w)
		}
	}
	return out
}

func heatmap(zones []TargetZone) string {
	names := make([]string, 0, 2)
	for i := 0; i < len(zones) && i < 2; i++ {
		names = append(names, zones[i].Zone)
	}
	return "Focus on: " + strings.Join(names, ", ")
}

func confidence(stats matchstats.Document, quality string) Confidence {
	score := baseConfidence
	if p := stats.PressingStructure.PPDA; p > 15 || p < 9 {
		score += 10
	}
	switch stats.DefensiveActions.DefensiveRating {
	case "Vulnerable", "Solid":
		score += 10
	}
	if score > maxConfidence {
		score = maxConfidence
	}

	reliability := string(PriorityMedium)
	if score > 80 {
		reliability = string(PriorityHigh)
	}

	return Confidence{
		OverallConfidence:         score,
		RecommendationReliability: reliability,
		DataQuality:               quality,
	}
}
