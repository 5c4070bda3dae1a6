package matchstats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/riskibarqy/tactical-intel/internal/domain/match"
)

const noDataMessage = "No recent match data available"

// facts is the only signal the upstream provides per match.
type facts struct {
	goalsFor     int
	goalsAgainst int
	home         bool
}

func (f facts) won() bool  { return f.goalsFor > f.goalsAgainst }
func (f facts) lost() bool { return f.goalsFor < f.goalsAgainst }

// Derive expands one fixture into the estimated tactical profile of subject.
// It never fails: a zero match yields an error-shaped document.
func Derive(m match.Match, subject string) Document {
	if m.IsZero() {
		return emptyDocument(subject)
	}

	perspective := m.Perspective(subject)
	home := perspective.IsHome()
	goalsFor, goalsAgainst := m.Goals(home)
	f := facts{goalsFor: goalsFor, goalsAgainst: goalsAgainst, home: home}

	return Document{
		Estimated: true,
		MatchInfo: MatchInfo{
			Opponent:    m.Opponent(home),
			Score:       fmt.Sprintf("%d-%d", goalsFor, goalsAgainst),
			Result:      resultLetter(f),
			Location:    location(home),
			Date:        m.Status.UTCTime,
			Perspective: string(perspective),
		},
		PossessionControl: derivePossession(f),
		ShootingFinishing: deriveShooting(f),
		ExpectedMetrics:   deriveExpected(f),
		ChanceCreation:    deriveChanceCreation(f),
		DefensiveActions:  deriveDefensiveActions(f),
		PressingStructure: derivePressing(f),
		TeamShape:         deriveTeamShape(f),
		Transitions:       deriveTransitions(f),
		SetPieces:         deriveSetPieces(f),
		Context:           deriveContext(f),
	}
}

// DeriveRecent derives up to limit documents, most recent kickoff first.
// Fixtures sharing a kickoff keep their input order.
func DeriveRecent(matches []match.Match, subject string, limit int) []Document {
	if len(matches) == 0 || limit <= 0 {
		return []Document{}
	}

	sorted := SortByKickoffDesc(matches)
	if limit > len(sorted) {
		limit = len(sorted)
	}

	out := make([]Document, 0, limit)
	for _, m := range sorted[:limit] {
		out = append(out, Derive(m, subject))
	}
	return out
}

// DeriveLatest derives the most recent fixture, or an empty document.
func DeriveLatest(matches []match.Match, subject string) Document {
	docs := DeriveRecent(matches, subject, 1)
	if len(docs) == 0 {
		return emptyDocument(subject)
	}
	return docs[0]
}

// SortByKickoffDesc returns a copy ordered by UTC kickoff string, newest first.
func SortByKickoffDesc(matches []match.Match) []match.Match {
	sorted := make([]match.Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Status.UTCTime > sorted[j].Status.UTCTime
	})
	return sorted
}

func emptyDocument(subject string) Document {
	return Document{
		Estimated: true,
		Error:     noDataMessage,
		TeamName:  subject,
	}
}

func derivePossession(f facts) PossessionControl {
	possession := 50
	if f.home {
		possession += 5
	}
	switch {
	case f.won():
		possession += 10
	case f.lost():
		possession -= 10
	}
	possession = clampInt(possession, 30, 70)
	p := float64(possession)

	longBalls, longBallsCompleted := 15, 8
	if possession < 45 {
		longBalls += 5
		longBallsCompleted += 3
	}

	return PossessionControl{
		PossessionPercent:  possession,
		TimeInOpponentHalf: round(p*0.85, 1),
		PassAccuracy:       round(75+(p-50)*0.3, 1),
		PassesPerMinute:    round(8+p/10, 1),
		LongBallsAttempted: longBalls,
		LongBallsCompleted: longBallsCompleted,
		TempoRating:        threeWay(possession > 55, possession > 45, "High", "Medium", "Low"),
		TacticalInsight:    possessionInsight(possession, f.goalsFor),
	}
}

func deriveShooting(f facts) ShootingFinishing {
	venueShots := 4
	if f.home {
		venueShots = 6
	}
	totalShots := maxInt(8, f.goalsFor*4+venueShots)
	total := float64(totalShots)

	bigChancesMissed := 0
	if f.goalsFor < 3 {
		bigChancesMissed = 3 - f.goalsFor
	}

	return ShootingFinishing{
		TotalShots:         totalShots,
		ShotsOnTarget:      maxInt(2, f.goalsFor*2+1),
		ShotConversionRate: round(float64(f.goalsFor)/total*100, 1),
		ShotsInsideBox:     roundInt(total * 0.65),
		ShotsOutsideBox:    roundInt(total * 0.35),
		BigChancesCreated:  maxInt(1, f.goalsFor+1),
		BigChancesMissed:   bigChancesMissed,
		TacticalInsight:    shootingInsight(totalShots, f.goalsFor),
	}
}

func deriveExpected(f facts) ExpectedMetrics {
	adjustment := -0.2
	if f.won() {
		adjustment = 0.3
	}
	xg := round(float64(f.goalsFor)+adjustment, 2)
	if xg < 0.2 {
		xg = 0.2
	}

	goals := float64(f.goalsFor)
	return ExpectedMetrics{
		XG:                xg,
		XGPerShot:         round(xg/float64(maxInt(10, f.goalsFor*4)), 3),
		XGFromOpenPlay:    round(xg*0.75, 2),
		XGFromSetPieces:   round(xg*0.25, 2),
		XA:                round(xg*0.8, 2),
		PerformanceRating: threeWay(goals > xg+0.5, goals < xg-0.5, "Overperforming", "Underperforming", "Expected"),
	}
}

func deriveChanceCreation(f facts) ChanceCreation {
	keyPasses := maxInt(5, f.goalsFor*3+4)

	crosses := 12
	if f.goalsFor < 2 {
		crosses += 4
	}
	accurate := 3
	if f.goalsFor > 1 {
		accurate++
	}

	return ChanceCreation{
		KeyPasses:             keyPasses,
		ProgressivePasses:     25 + f.goalsFor*5,
		PassesIntoFinalThird:  35 + f.goalsFor*8,
		PassesIntoPenaltyArea: 8 + f.goalsFor*3,
		CrossesAttempted:      crosses,
		CrossesAccurate:       accurate,
		Cutbacks:              2 + f.goalsFor,
		CreationQuality:       threeWay(keyPasses > 12, keyPasses > 7, "High", "Medium", "Low"),
	}
}

func deriveDefensiveActions(f facts) DefensiveActions {
	tacklesWon := 12 + f.goalsAgainst*2
	tacklesAttempted := tacklesWon + 4

	interceptions := 8
	duels := 50.0
	if f.goalsAgainst < 2 {
		interceptions += 3
		duels = 60.0
	}

	return DefensiveActions{
		TacklesAttempted:         tacklesAttempted,
		TacklesWon:               tacklesWon,
		TackleSuccessRate:        round(float64(tacklesWon)/float64(tacklesAttempted)*100, 1),
		Interceptions:            interceptions,
		Blocks:                   4 + f.goalsAgainst,
		Clearances:               15 + f.goalsAgainst*3,
		DefensiveDuelsWonPercent: duels,
		DefensiveRating:          threeWay(f.goalsAgainst < 2, f.goalsAgainst <= 2, "Solid", "Average", "Vulnerable"),
	}
}

// PPDA is clamped to [6, 18] whatever the scoreline.
func derivePressing(f facts) PressingStructure {
	ppda := round(12.5-float64(f.goalsFor)*1.5+float64(f.goalsAgainst)*1.5, 1)
	ppda = clampFloat(ppda, 6.0, 18.0)

	zones := []string{"Mid third", "Low third"}
	if ppda < 12 {
		zones = []string{"High third", "Mid third"}
	}

	return PressingStructure{
		PPDA:                   ppda,
		PressingIntensity:      threeWay(ppda < 10, ppda < 14, "High", "Medium", "Low"),
		HighTurnoversWon:       maxInt(3, 8-int(ppda/2)),
		CounterPressRecoveries: maxInt(2, 6-int(ppda/3)),
		PressingZones:          zones,
		TacticalInsight:        pressingInsight(ppda, f.goalsAgainst),
	}
}

func deriveTeamShape(f facts) TeamShape {
	if f.home {
		return TeamShape{
			AvgTeamLineHeight:    "High",
			DefensiveLineHeight:  50,
			DistanceBetweenLines: "Compact (15-20m)",
			TeamCompactness:      "Narrow",
			WidthUsage:           "Wide flanks exploited",
			FormationDetected:    "4-2-3-1",
		}
	}
	return TeamShape{
		AvgTeamLineHeight:    "Medium",
		DefensiveLineHeight:  45,
		DistanceBetweenLines: "Standard (20-25m)",
		TeamCompactness:      "Balanced",
		WidthUsage:           "Central focus",
		FormationDetected:    "4-4-2",
	}
}

func deriveTransitions(f facts) Transitions {
	passesPerCounter := 3
	if f.goalsFor < 2 {
		passesPerCounter += 2
	}
	leaky := f.goalsAgainst > 2

	return Transitions{
		Attacking: AttackingTransition{
			TimeRecoveryToShot: pick(f.goalsFor > 1, "Fast (<10s)", "Medium (10-20s)"),
			PassesPerCounter:   passesPerCounter,
			DirectAttacks:      8 + f.goalsFor*2,
			CounterEfficiency:  pick(f.won(), "High", "Low"),
		},
		Defensive: DefensiveTransition{
			CounterAttacksConceded: 5 + f.goalsAgainst*2,
			RecoveryTimeAfterLoss:  pick(leaky, "Slow (>5s)", "Fast (<5s)"),
			FoulsStoppingCounters:  3 + f.goalsAgainst,
			RestDefenseQuality:     pick(leaky, "Poor", "Good"),
		},
	}
}

func deriveSetPieces(f facts) SetPieces {
	corners := 4 + f.goalsFor*2
	setPieceGoals := 0
	if f.goalsFor > 0 && corners > 5 {
		setPieceGoals = 1
	}

	return SetPieces{
		Attacking: AttackingSetPieces{
			CornersTaken:         corners,
			XGFromCorners:        round(float64(corners)*0.12, 2),
			FirstContactSuccess:  FormatPercent(round(float64(f.goalsFor)/float64(maxInt(1, corners))*100, 1)),
			SecondBallRecoveries: maxInt(1, f.goalsFor),
			SetPieceGoals:        setPieceGoals,
		},
		Defensive: DefensiveSetPieces{
			CornersConceded:             3 + f.goalsAgainst*2,
			MarkingType:                 pick(f.goalsAgainst < 2, "Zonal", "Man-marking"),
			ClearancesUnderPressure:     8 + f.goalsAgainst*2,
			ShotsConcededAfterSetPieces: maxInt(2, f.goalsAgainst),
			SetPieceWeakness:            pick(f.goalsAgainst > 2, "High", "Low"),
		},
	}
}

func deriveContext(f facts) Context {
	margin := f.goalsFor - f.goalsAgainst
	return Context{
		ScorelineState:    threeWay(f.won(), f.lost(), "Winning", "Losing", "Drawing"),
		GameMomentum:      pick(f.won(), "Positive", "Negative"),
		PressureHandling:  pick(margin >= -1 && margin <= 1, "Good", "Poor"),
		FatigueIndicators: pick(f.won(), "Low", "High"),
		MentalStrength:    pick(f.goalsFor > 0, "Strong", "Weak"),
	}
}

func possessionInsight(possession, goals int) string {
	switch {
	case possession > 55 && goals < 2:
		return "High possession + low penetration → needs verticality"
	case possession < 45 && goals > 1:
		return "Low possession + high goals → counter-attacking efficiency"
	default:
		return "Balanced possession and output"
	}
}

func shootingInsight(shots, goals int) string {
	switch {
	case shots > 15 && goals < 2:
		return "Many shots, low conversion → poor shot selection"
	case shots < 10 && goals > 1:
		return "Few shots, good conversion → excellent chance creation"
	default:
		return "Standard shooting efficiency"
	}
}

func pressingInsight(ppda float64, conceded int) string {
	switch {
	case ppda < 10 && conceded > 2:
		return "Low PPDA + high xG conceded → press is disorganized"
	case ppda < 12 && conceded < 2:
		return "Aggressive press working effectively"
	default:
		return "Standard pressing approach"
	}
}

func resultLetter(f facts) string {
	return threeWay(f.won(), f.lost(), "W", "L", "D")
}

func location(home bool) string {
	return pick(home, "Home", "Away")
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

// threeWay returns first if a, else second if b, else third.
func threeWay(a, b bool, first, second, third string) string {
	switch {
	case a:
		return first
	case b:
		return second
	default:
		return third
	}
}

// round rounds half-to-even on the exact binary value, so 2.675 stays 2.67.
func round(v float64, places int) float64 {
	out, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return out
}

func roundInt(v float64) int {
	return int(round(v, 0))
}

// FormatPercent renders v with at least one fractional digit, e.g. "25.0%".
func FormatPercent(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s + "%"
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
