package matchstats

// Document is the estimated tactical profile of one team in one match.
//
// Every figure is a closed-form estimate from the final score and venue.
// Estimated is always true for derived documents and must be carried to
// every consumer; none of these numbers are tracking data.
type Document struct {
	Estimated bool   `json:"estimated"`
	Error     string `json:"error,omitempty"`
	TeamName  string `json:"team_name,omitempty"`

	MatchInfo         MatchInfo         `json:"match_info"`
	PossessionControl PossessionControl `json:"possession_control"`
	ShootingFinishing ShootingFinishing `json:"shooting_finishing"`
	ExpectedMetrics   ExpectedMetrics   `json:"expected_metrics"`
	ChanceCreation    ChanceCreation    `json:"chance_creation"`
	DefensiveActions  DefensiveActions  `json:"defensive_actions"`
	PressingStructure PressingStructure `json:"pressing_structure"`
	TeamShape         TeamShape         `json:"team_shape"`
	Transitions       Transitions       `json:"transitions"`
	SetPieces         SetPieces         `json:"set_pieces"`
	Context           Context           `json:"context"`
}

// Empty reports whether the document carries no derived sections.
func (d Document) Empty() bool {
	return d.Error != "" || d.MatchInfo.Result == ""
}

type MatchInfo struct {
	Opponent    string `json:"opponent"`
	Score       string `json:"score"`
	Result      string `json:"result"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Perspective string `json:"perspective"`
}

type PossessionControl struct {
	PossessionPercent  int     `json:"possession_percent"`
	TimeInOpponentHalf float64 `json:"time_in_opponent_half"`
	PassAccuracy       float64 `json:"pass_accuracy"`
	PassesPerMinute    float64 `json:"passes_per_minute"`
	LongBallsAttempted int     `json:"long_balls_attempted"`
	LongBallsCompleted int     `json:"long_balls_completed"`
	TempoRating        string  `json:"tempo_rating"`
	TacticalInsight    string  `json:"tactical_insight"`
}

type ShootingFinishing struct {
	TotalShots         int     `json:"total_shots"`
	ShotsOnTarget      int     `json:"shots_on_target"`
	ShotConversionRate float64 `json:"shot_conversion_rate"`
	ShotsInsideBox     int     `json:"shots_inside_box"`
	ShotsOutsideBox    int     `json:"shots_outside_box"`
	BigChancesCreated  int     `json:"big_chances_created"`
	BigChancesMissed   int     `json:"big_chances_missed"`
	TacticalInsight    string  `json:"tactical_insight"`
}

type ExpectedMetrics struct {
	XG                float64 `json:"xG"`
	XGPerShot         float64 `json:"xG_per_shot"`
	XGFromOpenPlay    float64 `json:"xG_from_open_play"`
	XGFromSetPieces   float64 `json:"xG_from_set_pieces"`
	XA                float64 `json:"xA"`
	PerformanceRating string  `json:"performance_rating"`
}

type ChanceCreation struct {
	KeyPasses             int    `json:"key_passes"`
	ProgressivePasses     int    `json:"progressive_passes"`
	PassesIntoFinalThird  int    `json:"passes_into_final_third"`
	PassesIntoPenaltyArea int    `json:"passes_into_penalty_area"`
	CrossesAttempted      int    `json:"crosses_attempted"`
	CrossesAccurate       int    `json:"crosses_accurate"`
	Cutbacks              int    `json:"cutbacks"`
	CreationQuality       string `json:"creation_quality"`
}

type DefensiveActions struct {
	TacklesAttempted         int     `json:"tackles_attempted"`
	TacklesWon               int     `json:"tackles_won"`
	TackleSuccessRate        float64 `json:"tackle_success_rate"`
	Interceptions            int     `json:"interceptions"`
	Blocks                   int     `json:"blocks"`
	Clearances               int     `json:"clearances"`
	DefensiveDuelsWonPercent float64 `json:"defensive_duels_won_percent"`
	DefensiveRating          string  `json:"defensive_rating"`
}

type PressingStructure struct {
	PPDA                   float64  `json:"PPDA"`
	PressingIntensity      string   `json:"pressing_intensity"`
	HighTurnoversWon       int      `json:"high_turnovers_won"`
	CounterPressRecoveries int      `json:"counter_press_recoveries"`
	PressingZones          []string `json:"pressing_zones"`
	TacticalInsight        string   `json:"tactical_insight"`
}

type TeamShape struct {
	AvgTeamLineHeight    string `json:"avg_team_line_height"`
	DefensiveLineHeight  int    `json:"defensive_line_height"`
	DistanceBetweenLines string `json:"distance_between_lines"`
	TeamCompactness      string `json:"team_compactness"`
	WidthUsage           string `json:"width_usage"`
	FormationDetected    string `json:"formation_detected"`
}

type Transitions struct {
	Attacking AttackingTransition `json:"attacking_transition"`
	Defensive DefensiveTransition `json:"defensive_transition"`
}

type AttackingTransition struct {
	TimeRecoveryToShot string `json:"time_recovery_to_shot"`
	PassesPerCounter   int    `json:"passes_per_counter"`
	DirectAttacks      int    `json:"direct_attacks"`
	CounterEfficiency  string `json:"counter_efficiency"`
}

type DefensiveTransition struct {
	CounterAttacksConceded int    `json:"counter_attacks_conceded"`
	RecoveryTimeAfterLoss  string `json:"recovery_time_after_loss"`
	FoulsStoppingCounters  int    `json:"fouls_stopping_counters"`
	RestDefenseQuality     string `json:"rest_defense_quality"`
}

type SetPieces struct {
	Attacking AttackingSetPieces `json:"attacking"`
	Defensive DefensiveSetPieces `json:"defensive"`
}

type AttackingSetPieces struct {
	CornersTaken         int     `json:"corners_taken"`
	XGFromCorners        float64 `json:"xG_from_corners"`
	FirstContactSuccess  string  `json:"first_contact_success"`
	SecondBallRecoveries int     `json:"second_ball_recoveries"`
	SetPieceGoals        int     `json:"set_piece_goals"`
}

type DefensiveSetPieces struct {
	CornersConceded             int    `json:"corners_conceded"`
	MarkingType                 string `json:"marking_type"`
	ClearancesUnderPressure     int    `json:"clearances_under_pressure"`
	ShotsConcededAfterSetPieces int    `json:"shots_conceded_after_set_pieces"`
	SetPieceWeakness            string `json:"set_piece_weakness"`
}

type Context struct {
	ScorelineState    string `json:"scoreline_state"`
	GameMomentum      string `json:"game_momentum"`
	PressureHandling  string `json:"pressure_handling"`
	FatigueIndicators string `json:"fatigue_indicators"`
	MentalStrength    string `json:"mental_strength"`
}
