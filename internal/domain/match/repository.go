package match

import "context"

// Source lists fixtures for a league from the upstream provider.
type Source interface {
	ListLeagueMatches(ctx context.Context, leagueID int64) ([]Match, error)
}
