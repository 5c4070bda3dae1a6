package match

import (
	"bytes"
	"math"
	"strconv"
	"strings"
)

// Perspective tells which side of a fixture the subject team played on.
type Perspective string

const (
	PerspectiveHome Perspective = "home"
	PerspectiveAway Perspective = "away"
	// PerspectiveAssumedHome is used when neither side carries a name.
	PerspectiveAssumedHome Perspective = "assumed_home"
	// PerspectiveInferredAway is used when named sides exist but none matches the subject.
	PerspectiveInferredAway Perspective = "inferred_away"
)

// IsHome reports whether the perspective resolves to the home side.
func (p Perspective) IsHome() bool {
	return p == PerspectiveHome || p == PerspectiveAssumedHome
}

// Known reports whether the perspective came from an actual name match.
func (p Perspective) Known() bool {
	return p == PerspectiveHome || p == PerspectiveAway
}

// Match is one fixture as reported by the upstream provider.
type Match struct {
	ID       int64  `json:"id"`
	LeagueID int64  `json:"leagueId"`
	Home     Side   `json:"home"`
	Away     Side   `json:"away"`
	Status   Status `json:"status"`
}

type Side struct {
	ID    TeamID `json:"id"`
	Name  string `json:"name"`
	Score Score  `json:"score"`
}

type Status struct {
	UTCTime   string `json:"utcTime"`
	Finished  bool   `json:"finished"`
	Started   bool   `json:"started"`
	Cancelled bool   `json:"cancelled"`
}

// Phase returns the coarse lifecycle state of the fixture.
func (s Status) Phase() string {
	switch {
	case s.Finished:
		return "finished"
	case s.Started:
		return "live"
	default:
		return "not_started"
	}
}

// IsZero reports whether the record carries nothing at all.
func (m Match) IsZero() bool {
	return m.ID == 0 && m.Home == (Side{}) && m.Away == (Side{}) && m.Status == (Status{})
}

// Perspective resolves the subject's side by team name.
func (m Match) Perspective(subject string) Perspective {
	homeName := strings.TrimSpace(m.Home.Name)
	awayName := strings.TrimSpace(m.Away.Name)
	subject = strings.TrimSpace(subject)

	switch {
	case homeName == "" && awayName == "":
		return PerspectiveAssumedHome
	case homeName != "" && homeName == subject:
		return PerspectiveHome
	case awayName != "" && awayName == subject:
		return PerspectiveAway
	default:
		return PerspectiveInferredAway
	}
}

// Involves reports whether teamID is on either side of the fixture.
func (m Match) Involves(teamID string) bool {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return false
	}
	return m.Home.ID.String() == teamID || m.Away.ID.String() == teamID
}

// Goals returns (for, against) from the given side's point of view.
// Missing or unparsable scores count as zero.
func (m Match) Goals(home bool) (int, int) {
	if home {
		return m.Home.Score.Value(), m.Away.Score.Value()
	}
	return m.Away.Score.Value(), m.Home.Score.Value()
}

// Opponent returns the name of the side facing the subject.
func (m Match) Opponent(home bool) string {
	if home {
		return m.Away.Name
	}
	return m.Home.Name
}

// TeamID accepts both numeric and string ids from the provider.
type TeamID string

func (id *TeamID) UnmarshalJSON(data []byte) error {
	*id = TeamID(strings.Trim(string(bytes.TrimSpace(data)), `"`))
	if *id == "null" {
		*id = ""
	}
	return nil
}

func (id TeamID) String() string {
	return string(id)
}

// Score is a goal count as the provider sent it: a number, a numeric string
// or null depending on the fixture state. Fractional values are truncated
// and negative ones are kept as sent.
type Score struct {
	goals int
	valid bool
}

func NewScore(goals int) Score {
	return Score{goals: goals, valid: true}
}

func (s *Score) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if raw == "" || raw == "null" {
		*s = Score{}
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
		*s = Score{}
		return nil
	}
	*s = Score{goals: int(v), valid: true}
	return nil
}

func (s Score) MarshalJSON() ([]byte, error) {
	if !s.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(s.goals)), nil
}

// Valid reports whether the provider sent a parsable score.
func (s Score) Valid() bool {
	return s.valid
}

// Value returns the goal count, zero when absent or malformed.
func (s Score) Value() int {
	return s.goals
}
