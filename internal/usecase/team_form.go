package usecase

import (
	"fmt"
	"strconv"

	"github.com/riskibarqy/tactical-intel/internal/domain/match"
	"github.com/riskibarqy/tactical-intel/internal/domain/matchstats"
)

type TeamForm struct {
	TeamID        string        `json:"team_id"`
	TeamName      string        `json:"team_name"`
	RecentMatches []match.Match `json:"recent_matches"`
	Summary       FormSummary   `json:"form_summary"`
}

type FormSummary struct {
	FormString       string  `json:"form_string"`
	Wins             int     `json:"wins"`
	Draws            int     `json:"draws"`
	Losses           int     `json:"losses"`
	GoalsScored      int     `json:"goals_scored"`
	GoalsConceded    int     `json:"goals_conceded"`
	GoalDifference   int     `json:"goal_difference"`
	Points           int     `json:"points"`
	GamesPlayed      int     `json:"games_played"`
	AvgGoalsScored   float64 `json:"avg_goals_scored"`
	AvgGoalsConceded float64 `json:"avg_goals_conceded"`
}

type DefensiveVulnerabilities struct {
	ConcedingRate       float64 `json:"conceding_rate"`
	CleanSheets         int     `json:"clean_sheets"`
	VulnerabilityRating string  `json:"vulnerability_rating"`
}

type AttackingAnalysis struct {
	ScoringRate  float64 `json:"scoring_rate"`
	RecentForm   string  `json:"recent_form"`
	AttackRating string  `json:"attack_rating"`
}

type GamePlan struct {
	RecommendedApproach string `json:"recommended_approach"`
	SuggestedFormation  string `json:"suggested_formation"`
	KeyFocus            string `json:"key_focus"`
}

// recentForm keeps the finished fixtures involving teamID, newest first.
func recentForm(matches []match.Match, teamID, teamName string, limit int) TeamForm {
	played := make([]match.Match, 0, len(matches))
	for _, m := range matches {
		if m.Status.Finished && m.Involves(teamID) {
			played = append(played, m)
		}
	}

	recent := matchstats.SortByKickoffDesc(played)
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}

	return TeamForm{
		TeamID:        teamID,
		TeamName:      teamName,
		RecentMatches: recent,
		Summary:       summarizeForm(recent, teamID),
	}
}

func summarizeForm(matches []match.Match, teamID string) FormSummary {
	var s FormSummary
	for _, m := range matches {
		scored, conceded := m.Goals(m.Home.ID.String() == teamID)
		s.GoalsScored += scored
		s.GoalsConceded += conceded

		switch {
		case scored > conceded:
			s.Wins++
		case scored < conceded:
			s.Losses++
		default:
			s.Draws++
		}
	}

	s.GamesPlayed = len(matches)
	s.FormString = fmt.Sprintf("%dW-%dD-%dL", s.Wins, s.Draws, s.Losses)
	s.GoalDifference = s.GoalsScored - s.GoalsConceded
	s.Points = s.Wins*3 + s.Draws
	if s.GamesPlayed > 0 {
		s.AvgGoalsScored = round2(float64(s.GoalsScored) / float64(s.GamesPlayed))
		s.AvgGoalsConceded = round2(float64(s.GoalsConceded) / float64(s.GamesPlayed))
	}
	return s
}

func defensiveVulnerabilities(form TeamForm) DefensiveVulnerabilities {
	cleanSheets := 0
	for _, m := range form.RecentMatches {
		if _, conceded := m.Goals(m.Home.ID.String() == form.TeamID); conceded == 0 {
			cleanSheets++
		}
	}

	rate := form.Summary.AvgGoalsConceded
	rating := "Low"
	switch {
	case rate > 1.5:
		rating = "High"
	case rate > 1:
		rating = "Medium"
	}

	return DefensiveVulnerabilities{
		ConcedingRate:       rate,
		CleanSheets:         cleanSheets,
		VulnerabilityRating: rating,
	}
}

func attackingAnalysis(form TeamForm) AttackingAnalysis {
	rate := form.Summary.AvgGoalsScored
	rating := "Weak"
	switch {
	case rate >= 1.5:
		rating = "Strong"
	case rate >= 1:
		rating = "Average"
	}

	return AttackingAnalysis{
		ScoringRate:  rate,
		RecentForm:   form.Summary.FormString,
		AttackRating: rating,
	}
}

func gamePlan(primary, opponent TeamForm) GamePlan {
	attack := primary.Summary.AvgGoalsScored
	defense := opponent.Summary.AvgGoalsConceded

	plan := GamePlan{KeyFocus: "Maintain defensive solidity"}
	switch {
	case defense > 1.5:
		plan.RecommendedApproach = "Aggressive - Opponent is defensively weak"
		plan.SuggestedFormation = "4-3-3 or 4-2-4"
		plan.KeyFocus = "Exploit defensive vulnerabilities"
	case attack >= 1.5:
		plan.RecommendedApproach = "Balanced - Capitalize on good form"
		plan.SuggestedFormation = "4-2-3-1"
	default:
		plan.RecommendedApproach = "Cautious - Build confidence"
		plan.SuggestedFormation = "4-4-2 or 4-5-1"
	}
	return plan
}

// round2 rounds half-to-even on the exact decimal value.
func round2(v float64) float64 {
	out, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return out
}
