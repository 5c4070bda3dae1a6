package matchstats

// Neutral returns the league-average profile used when no fixture could be
// derived. Categorical labels stay blank so label-driven rules do not fire.
func Neutral(subject string) Document {
	return Document{
		Estimated: true,
		Error:     noDataMessage,
		TeamName:  subject,
		PossessionControl: PossessionControl{
			PossessionPercent: 50,
			PassAccuracy:      75,
		},
		DefensiveActions: DefensiveActions{
			TackleSuccessRate:        70,
			DefensiveDuelsWonPercent: 70,
			DefensiveRating:          "Average",
		},
		PressingStructure: PressingStructure{
			PPDA: 12,
		},
		TeamShape: TeamShape{
			DefensiveLineHeight: 40,
		},
	}
}
