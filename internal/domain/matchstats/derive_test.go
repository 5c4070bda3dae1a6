package matchstats

import (
	"reflect"
	"testing"

	"github.com/riskibarqy/tactical-intel/internal/domain/match"
)

func fixture(id int64, kickoff, home, away string, homeGoals, awayGoals int) match.Match {
	return match.Match{
		ID:     id,
		Home:   match.Side{ID: match.TeamID("1"), Name: home, Score: match.NewScore(homeGoals)},
		Away:   match.Side{ID: match.TeamID("2"), Name: away, Score: match.NewScore(awayGoals)},
		Status: match.Status{UTCTime: kickoff, Finished: true},
	}
}

func TestDerive_HomeWinProfile(t *testing.T) {
	doc := Derive(fixture(1, "2025-01-10T18:00:00Z", "A", "B", 3, 0), "A")

	if !doc.Estimated {
		t.Fatalf("expected estimated flag on derived document")
	}
	if doc.Empty() {
		t.Fatalf("expected populated document, got error %q", doc.Error)
	}
	info := doc.MatchInfo
	if info.Opponent != "B" || info.Score != "3-0" || info.Result != "W" || info.Location != "Home" || info.Perspective != "home" {
		t.Fatalf("unexpected match info: %+v", info)
	}
	if doc.PossessionControl.PossessionPercent != 65 {
		t.Fatalf("expected possession 65, got %d", doc.PossessionControl.PossessionPercent)
	}
	if doc.PossessionControl.PassAccuracy != 79.5 {
		t.Fatalf("expected pass accuracy 79.5, got %v", doc.PossessionControl.PassAccuracy)
	}
	if doc.PossessionControl.TempoRating != "High" {
		t.Fatalf("expected high tempo, got %s", doc.PossessionControl.TempoRating)
	}
	if doc.ShootingFinishing.TotalShots != 18 || doc.ShootingFinishing.ShotsOnTarget != 7 {
		t.Fatalf("unexpected shots: %+v", doc.ShootingFinishing)
	}
	if doc.ShootingFinishing.ShotConversionRate != 16.7 {
		t.Fatalf("expected conversion 16.7, got %v", doc.ShootingFinishing.ShotConversionRate)
	}
	if doc.ShootingFinishing.ShotsInsideBox != 12 || doc.ShootingFinishing.ShotsOutsideBox != 6 {
		t.Fatalf("unexpected shot split: %+v", doc.ShootingFinishing)
	}
	if doc.ExpectedMetrics.XG != 3.3 {
		t.Fatalf("expected xG 3.3, got %v", doc.ExpectedMetrics.XG)
	}
	if doc.PressingStructure.PPDA != 8.0 || doc.PressingStructure.PressingIntensity != "High" {
		t.Fatalf("unexpected pressing: %+v", doc.PressingStructure)
	}
	if doc.PressingStructure.TacticalInsight != "Aggressive press working effectively" {
		t.Fatalf("unexpected pressing insight: %s", doc.PressingStructure.TacticalInsight)
	}
	if !reflect.DeepEqual(doc.PressingStructure.PressingZones, []string{"High third", "Mid third"}) {
		t.Fatalf("unexpected pressing zones: %v", doc.PressingStructure.PressingZones)
	}
	if doc.DefensiveActions.TackleSuccessRate != 75.0 || doc.DefensiveActions.DefensiveRating != "Solid" {
		t.Fatalf("unexpected defensive actions: %+v", doc.DefensiveActions)
	}
	if doc.SetPieces.Attacking.FirstContactSuccess != "30.0%" {
		t.Fatalf("expected first contact 30.0%%, got %s", doc.SetPieces.Attacking.FirstContactSuccess)
	}
	if doc.SetPieces.Attacking.SetPieceGoals != 1 {
		t.Fatalf("expected one set piece goal, got %d", doc.SetPieces.Attacking.SetPieceGoals)
	}
	if doc.TeamShape.FormationDetected != "4-2-3-1" || doc.TeamShape.TeamCompactness != "Narrow" {
		t.Fatalf("unexpected home shape: %+v", doc.TeamShape)
	}
	if doc.Context.ScorelineState != "Winning" || doc.Context.PressureHandling != "Poor" {
		t.Fatalf("unexpected context: %+v", doc.Context)
	}
}

func TestDerive_AwayLossProfile(t *testing.T) {
	doc := Derive(fixture(2, "2025-01-10T18:00:00Z", "B", "A", 3, 1), "A")

	if doc.MatchInfo.Perspective != "away" || doc.MatchInfo.Score != "1-3" || doc.MatchInfo.Result != "L" {
		t.Fatalf("unexpected match info: %+v", doc.MatchInfo)
	}
	if doc.PossessionControl.PossessionPercent != 40 {
		t.Fatalf("expected possession 40, got %d", doc.PossessionControl.PossessionPercent)
	}
	if doc.PossessionControl.LongBallsAttempted != 20 || doc.PossessionControl.LongBallsCompleted != 11 {
		t.Fatalf("unexpected long balls: %+v", doc.PossessionControl)
	}
	if doc.DefensiveActions.DefensiveRating != "Vulnerable" {
		t.Fatalf("expected vulnerable rating, got %s", doc.DefensiveActions.DefensiveRating)
	}
	if doc.Transitions.Defensive.RestDefenseQuality != "Poor" || doc.Transitions.Defensive.RecoveryTimeAfterLoss != "Slow (>5s)" {
		t.Fatalf("unexpected defensive transition: %+v", doc.Transitions.Defensive)
	}
	if doc.SetPieces.Defensive.SetPieceWeakness != "High" || doc.SetPieces.Defensive.MarkingType != "Man-marking" {
		t.Fatalf("unexpected defensive set pieces: %+v", doc.SetPieces.Defensive)
	}
	if doc.TeamShape.FormationDetected != "4-4-2" || doc.TeamShape.WidthUsage != "Central focus" {
		t.Fatalf("unexpected away shape: %+v", doc.TeamShape)
	}
	if doc.ExpectedMetrics.XG != 0.8 {
		t.Fatalf("expected xG 0.8, got %v", doc.ExpectedMetrics.XG)
	}
}

func TestDerive_ExtremeScoresStayInBounds(t *testing.T) {
	rout := Derive(fixture(3, "2025-01-10T18:00:00Z", "A", "B", 10, 0), "A")
	if rout.PressingStructure.PPDA != 6.0 {
		t.Fatalf("expected PPDA floor 6, got %v", rout.PressingStructure.PPDA)
	}
	if rout.PossessionControl.PossessionPercent != 65 {
		t.Fatalf("expected possession 65, got %d", rout.PossessionControl.PossessionPercent)
	}

	thrashed := Derive(fixture(4, "2025-01-10T18:00:00Z", "B", "A", 10, 0), "A")
	if thrashed.PressingStructure.PPDA != 18.0 {
		t.Fatalf("expected PPDA ceiling 18, got %v", thrashed.PressingStructure.PPDA)
	}
	if thrashed.PossessionControl.PossessionPercent != 40 {
		t.Fatalf("expected possession 40, got %d", thrashed.PossessionControl.PossessionPercent)
	}
	if thrashed.ExpectedMetrics.XG != 0.2 {
		t.Fatalf("expected xG floor 0.2, got %v", thrashed.ExpectedMetrics.XG)
	}
	if thrashed.PressingStructure.HighTurnoversWon < 3 || thrashed.PressingStructure.CounterPressRecoveries < 2 {
		t.Fatalf("expected turnover floors, got %+v", thrashed.PressingStructure)
	}
}

func TestDerive_IsDeterministic(t *testing.T) {
	m := fixture(5, "2025-01-10T18:00:00Z", "A", "B", 2, 2)
	first := Derive(m, "A")
	second := Derive(m, "A")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical documents for identical input")
	}
}

func TestDerive_PerspectiveFallbacks(t *testing.T) {
	unnamed := fixture(6, "2025-01-10T18:00:00Z", "", "", 2, 1)
	doc := Derive(unnamed, "A")
	if doc.MatchInfo.Perspective != string(match.PerspectiveAssumedHome) || doc.MatchInfo.Location != "Home" {
		t.Fatalf("expected assumed home perspective, got %+v", doc.MatchInfo)
	}
	if doc.MatchInfo.Score != "2-1" {
		t.Fatalf("expected home scoreline, got %s", doc.MatchInfo.Score)
	}

	stranger := fixture(7, "2025-01-10T18:00:00Z", "B", "C", 2, 1)
	doc = Derive(stranger, "A")
	if doc.MatchInfo.Perspective != string(match.PerspectiveInferredAway) || doc.MatchInfo.Location != "Away" {
		t.Fatalf("expected inferred away perspective, got %+v", doc.MatchInfo)
	}
	if doc.MatchInfo.Score != "1-2" || doc.MatchInfo.Opponent != "B" {
		t.Fatalf("unexpected inferred away info: %+v", doc.MatchInfo)
	}
}

func TestDerive_MissingScoresCountAsZero(t *testing.T) {
	m := match.Match{
		ID:     8,
		Home:   match.Side{Name: "A"},
		Away:   match.Side{Name: "B"},
		Status: match.Status{UTCTime: "2025-01-10T18:00:00Z"},
	}
	doc := Derive(m, "A")
	if doc.MatchInfo.Score != "0-0" || doc.MatchInfo.Result != "D" {
		t.Fatalf("expected goalless draw, got %+v", doc.MatchInfo)
	}
}

func TestDerive_ZeroMatchReturnsEmptyDocument(t *testing.T) {
	doc := Derive(match.Match{}, "A")
	if !doc.Empty() {
		t.Fatalf("expected empty document")
	}
	if doc.Error != noDataMessage || doc.TeamName != "A" {
		t.Fatalf("unexpected empty document: %+v", doc)
	}
}

func TestDeriveRecent_OrdersNewestFirstAndLimits(t *testing.T) {
	matches := []match.Match{
		fixture(1, "2025-01-01T18:00:00Z", "A", "B", 1, 0),
		fixture(2, "2025-01-15T18:00:00Z", "A", "C", 2, 0),
		fixture(3, "2025-01-08T18:00:00Z", "A", "D", 0, 1),
		fixture(4, "2025-01-15T18:00:00Z", "A", "E", 0, 0),
	}

	docs := DeriveRecent(matches, "A", 3)
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	got := []string{docs[0].MatchInfo.Opponent, docs[1].MatchInfo.Opponent, docs[2].MatchInfo.Opponent}
	want := []string{"C", "E", "D"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}
	if matches[0].ID != 1 {
		t.Fatalf("expected input slice to stay untouched")
	}
}

func TestDeriveRecent_EmptyInput(t *testing.T) {
	if docs := DeriveRecent(nil, "A", 5); len(docs) != 0 {
		t.Fatalf("expected no documents, got %d", len(docs))
	}
	if docs := DeriveRecent([]match.Match{fixture(1, "x", "A", "B", 1, 0)}, "A", 0); len(docs) != 0 {
		t.Fatalf("expected no documents for zero limit, got %d", len(docs))
	}
}

func TestDeriveLatest(t *testing.T) {
	latest := DeriveLatest([]match.Match{
		fixture(1, "2025-01-01T18:00:00Z", "A", "B", 1, 0),
		fixture(2, "2025-02-01T18:00:00Z", "A", "C", 2, 0),
	}, "A")
	if latest.MatchInfo.Opponent != "C" {
		t.Fatalf("expected latest opponent C, got %s", latest.MatchInfo.Opponent)
	}

	// Input order does not matter; the newest kickoff wins, not the last element.
	latest = DeriveLatest([]match.Match{
		fixture(3, "2025-03-01T18:00:00Z", "A", "D", 0, 0),
		fixture(1, "2025-01-01T18:00:00Z", "A", "B", 1, 0),
		fixture(2, "2025-02-01T18:00:00Z", "A", "C", 2, 0),
	}, "A")
	if latest.MatchInfo.Opponent != "D" {
		t.Fatalf("expected newest opponent D, got %s", latest.MatchInfo.Opponent)
	}

	empty := DeriveLatest(nil, "A")
	if empty.Error != noDataMessage {
		t.Fatalf("expected no-data error, got %q", empty.Error)
	}
}

func TestRoundMatchesHalfEvenOnBinaryValue(t *testing.T) {
	cases := []struct {
		in     float64
		places int
		want   float64
	}{
		{2.675, 2, 2.67},
		{0.125, 2, 0.12},
		{16.666666, 1, 16.7},
		{11.7, 0, 12},
		{2.5, 0, 2},
	}
	for _, tc := range cases {
		if got := round(tc.in, tc.places); got != tc.want {
			t.Fatalf("round(%v, %d): expected %v, got %v", tc.in, tc.places, tc.want, got)
		}
	}
	if got := FormatPercent(25); got != "25.0%" {
		t.Fatalf("expected 25.0%%, got %s", got)
	}
	if got := FormatPercent(16.7); got != "16.7%" {
		t.Fatalf("expected 16.7%%, got %s", got)
	}
}
