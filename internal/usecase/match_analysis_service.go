package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/tactical-intel/internal/domain/match"
	"github.com/riskibarqy/tactical-intel/internal/domain/matchstats"
	"github.com/riskibarqy/tactical-intel/internal/domain/recommendation"
	"github.com/riskibarqy/tactical-intel/internal/platform/cache"
	"github.com/riskibarqy/tactical-intel/internal/platform/kv"
	"github.com/riskibarqy/tactical-intel/internal/platform/logging"
	"github.com/riskibarqy/tactical-intel/internal/platform/metrics"
)

const (
	DefaultLeagueID        = 61
	DefaultPrimaryTeamID   = "9764"
	DefaultPrimaryTeamName = "Gil Vicente"
	DefaultRecentLimit     = 5

	DataSourceCache = "cache"
	DataSourceAPI   = "api"

	planCachedInfo = "Tactical plan from cache (24h TTL)"
	planFreshInfo  = "Fresh tactical plan from API (cached for 24h)"

	defaultInPossession  = "Build from the back, control tempo"
	defaultOutPossession = "Compact defensive block"
	defaultTransitions   = "Quick counter-attacks"
)

type MatchAnalysisConfig struct {
	Source          match.Source
	Store           kv.Store
	LeagueID        int64
	PrimaryTeamID   string
	PrimaryTeamName string
	RecentLimit     int
	CacheTTL        time.Duration
	SingleFlight    bool
	Logger          *logging.Logger
	Metrics         *metrics.Metrics
	Now             func() time.Time
}

// MatchAnalysis is the combined pre-match report for one opponent.
type MatchAnalysis struct {
	Match                    string                   `json:"match"`
	PrimaryTeamForm          TeamForm                 `json:"primary_team_form"`
	OpponentForm             TeamForm                 `json:"opponent_form"`
	DefensiveVulnerabilities DefensiveVulnerabilities `json:"defensive_vulnerabilities"`
	PrimaryAttacking         AttackingAnalysis        `json:"primary_attacking_analysis"`
	GamePlan                 GamePlan                 `json:"tactical_game_plan"`
	OpponentStats            matchstats.Document      `json:"opponent_advanced_stats"`
	PrimaryTeamStats         matchstats.Document      `json:"primary_team_stats"`
	Recommendations          recommendation.Document  `json:"ai_recommendations"`
	GeneratedAt              time.Time                `json:"generated_at"`
	DataSource               string                   `json:"data_source"`
}

// TacticalPlan groups the recommendations with the derived figures that
// back them.
type TacticalPlan struct {
	Opponent     string                    `json:"opponent"`
	Plan         PlanSections              `json:"tactical_plan"`
	AIConfidence recommendation.Confidence `json:"ai_confidence"`
	GeneratedAt  time.Time                 `json:"generated_at"`
	DataSource   string                    `json:"data_source"`
	CacheInfo    string                    `json:"cache_info"`
}

type PlanSections struct {
	FormationRecommendations FormationSection          `json:"formation_recommendations"`
	PressingStrategy         PressingSection           `json:"pressing_strategy"`
	TargetZones              TargetZoneSection         `json:"target_zones"`
	PlayerRoles              PlayerRoleSection         `json:"player_roles"`
	GamePhases               GamePhases                `json:"game_phases"`
	SubstitutionStrategy     SubstitutionSection       `json:"substitution_strategy"`
	CriticalWeaknesses       []recommendation.Weakness `json:"critical_weaknesses"`
}

type FormationSection struct {
	SuggestedChanges   recommendation.FormationAdvice `json:"suggested_changes"`
	SupportingEvidence struct {
		OpponentShape matchstats.TeamShape `json:"opponent_shape"`
		RecentForm    FormSummary          `json:"recent_form"`
	} `json:"supporting_evidence"`
}

type PressingSection struct {
	Recommendation     recommendation.PressingAdvice `json:"recommendation"`
	SupportingEvidence struct {
		OpponentPressing matchstats.PressingStructure `json:"opponent_pressing"`
		PossessionStats  matchstats.PossessionControl `json:"possession_stats"`
	} `json:"supporting_evidence"`
}

type TargetZoneSection struct {
	PriorityZones      recommendation.TargetZoneAdvice `json:"priority_zones"`
	SupportingEvidence struct {
		DefensiveVulnerabilities matchstats.DefensiveActions `json:"defensive_vulnerabilities"`
		WeakAreas                []recommendation.Weakness   `json:"weak_areas"`
	} `json:"supporting_evidence"`
}

type PlayerRoleSection struct {
	RoleChanges        []recommendation.RoleChange `json:"role_changes"`
	SupportingEvidence struct {
		OpponentWidth   string                 `json:"opponent_width"`
		TransitionSpeed matchstats.Transitions `json:"transition_speed"`
	} `json:"supporting_evidence"`
}

type GamePhases struct {
	InPossession  string                  `json:"in_possession"`
	OutPossession string                  `json:"out_possession"`
	Transitions   string                  `json:"transitions"`
	Switches      []recommendation.Switch `json:"in_game_switches"`
}

type SubstitutionSection struct {
	Recommendations recommendation.SubstitutionAdvice `json:"recommendations"`
	KeyAdjustments  []string                          `json:"key_adjustments"`
}

// RecentStats is the derived profile of an opponent's latest fixtures.
type RecentStats struct {
	TeamID   string                `json:"team_id"`
	TeamName string                `json:"team_name"`
	Matches  []matchstats.Document `json:"matches"`
	Count    int                   `json:"count"`
}

// MatchAnalysisService runs fetch, derive and recommend behind result caches.
type MatchAnalysisService struct {
	source          match.Source
	leagueID        int64
	primaryTeamID   string
	primaryTeamName string
	recentLimit     int
	logger          *logging.Logger
	now             func() time.Time

	plans    *cache.Gate[TacticalPlan]
	analyses *cache.Gate[MatchAnalysis]
	recent   *cache.Gate[RecentStats]
}

func NewMatchAnalysisService(cfg MatchAnalysisConfig) *MatchAnalysisService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	leagueID := cfg.LeagueID
	if leagueID <= 0 {
		leagueID = DefaultLeagueID
	}
	primaryID := strings.TrimSpace(cfg.PrimaryTeamID)
	if primaryID == "" {
		primaryID = DefaultPrimaryTeamID
	}
	primaryName := strings.TrimSpace(cfg.PrimaryTeamName)
	if primaryName == "" {
		primaryName = DefaultPrimaryTeamName
	}
	limit := cfg.RecentLimit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	store := cfg.Store
	if store == nil {
		store = kv.NewMemoryStore()
	}

	gateConfig := func(namespace string) cache.GateConfig {
		return cache.GateConfig{
			Store:        store,
			Namespace:    namespace,
			TTL:          cfg.CacheTTL,
			SingleFlight: cfg.SingleFlight,
			Logger:       logger,
			Metrics:      cfg.Metrics,
			Now:          now,
		}
	}

	return &MatchAnalysisService{
		source:          cfg.Source,
		leagueID:        leagueID,
		primaryTeamID:   primaryID,
		primaryTeamName: primaryName,
		recentLimit:     limit,
		logger:          logger,
		now:             now,
		plans:           cache.NewGate[TacticalPlan](gateConfig("tactical_plan")),
		analyses:        cache.NewGate[MatchAnalysis](gateConfig("match_analysis")),
		recent:          cache.NewGate[RecentStats](gateConfig("recent_stats")),
	}
}

// AnalyzeMatch builds the full report for the primary team against an opponent.
func (s *MatchAnalysisService) AnalyzeMatch(ctx context.Context, opponentID, opponentName string) (MatchAnalysis, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchAnalysisService.AnalyzeMatch")
	defer span.End()

	opponentID, opponentName, err := normalizeOpponent(opponentID, opponentName)
	if err != nil {
		return MatchAnalysis{}, err
	}
	span.SetAttributes(attribute.String("opponent.id", opponentID))

	analysis, fromCache, err := s.analyses.GetOrCompute(ctx, cacheKey(opponentID, opponentName), func(ctx context.Context) (MatchAnalysis, error) {
		return s.buildAnalysis(ctx, opponentID, opponentName)
	})
	if err != nil {
		return MatchAnalysis{}, err
	}

	analysis.DataSource = dataSource(fromCache)
	return analysis, nil
}

// TacticalPlan returns the coaching plan, from cache when a fresh one exists.
func (s *MatchAnalysisService) TacticalPlan(ctx context.Context, opponentID, opponentName string) (TacticalPlan, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchAnalysisService.TacticalPlan")
	defer span.End()

	opponentID, opponentName, err := normalizeOpponent(opponentID, opponentName)
	if err != nil {
		return TacticalPlan{}, err
	}
	span.SetAttributes(attribute.String("opponent.id", opponentID))

	plan, fromCache, err := s.plans.GetOrCompute(ctx, cacheKey(opponentID, opponentName), func(ctx context.Context) (TacticalPlan, error) {
		analysis, err := s.buildAnalysis(ctx, opponentID, opponentName)
		if err != nil {
			return TacticalPlan{}, err
		}
		return buildTacticalPlan(opponentName, analysis), nil
	})
	if err != nil {
		return TacticalPlan{}, err
	}

	plan.DataSource = dataSource(fromCache)
	plan.CacheInfo = planFreshInfo
	if fromCache {
		plan.CacheInfo = planCachedInfo
	}
	span.SetAttributes(attribute.Bool("cache.hit", fromCache))
	return plan, nil
}

// RecentStats derives the opponent's latest finished fixtures, newest first.
func (s *MatchAnalysisService) RecentStats(ctx context.Context, opponentID, opponentName string, limit int) (RecentStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchAnalysisService.RecentStats")
	defer span.End()

	opponentID, opponentName, err := normalizeOpponent(opponentID, opponentName)
	if err != nil {
		return RecentStats{}, err
	}
	if limit <= 0 {
		limit = s.recentLimit
	}

	key := cacheKey(opponentID, opponentName) + "_" + strconv.Itoa(limit)
	stats, _, err := s.recent.GetOrCompute(ctx, key, func(ctx context.Context) (RecentStats, error) {
		matches, err := s.leagueMatches(ctx)
		if err != nil {
			return RecentStats{}, err
		}
		form := recentForm(matches, opponentID, opponentName, limit)
		docs := matchstats.DeriveRecent(form.RecentMatches, opponentName, limit)
		return RecentStats{
			TeamID:   opponentID,
			TeamName: opponentName,
			Matches:  docs,
			Count:    len(docs),
		}, nil
	})
	if err != nil {
		return RecentStats{}, err
	}
	return stats, nil
}

func (s *MatchAnalysisService) buildAnalysis(ctx context.Context, opponentID, opponentName string) (MatchAnalysis, error) {
	matches, err := s.leagueMatches(ctx)
	if err != nil {
		return MatchAnalysis{}, err
	}

	primaryForm := recentForm(matches, s.primaryTeamID, s.primaryTeamName, s.recentLimit)
	opponentForm := recentForm(matches, opponentID, opponentName, s.recentLimit)

	opponentStats := matchstats.DeriveLatest(opponentForm.RecentMatches, opponentName)
	primaryStats := matchstats.DeriveLatest(primaryForm.RecentMatches, s.primaryTeamName)

	s.logger.InfoContext(ctx, "match analysis generated",
		"opponent_id", opponentID,
		"opponent_matches", len(opponentForm.RecentMatches),
		"primary_matches", len(primaryForm.RecentMatches),
	)

	return MatchAnalysis{
		Match:                    fmt.Sprintf("%s vs %s", s.primaryTeamName, opponentName),
		PrimaryTeamForm:          primaryForm,
		OpponentForm:             opponentForm,
		DefensiveVulnerabilities: defensiveVulnerabilities(opponentForm),
		PrimaryAttacking:         attackingAnalysis(primaryForm),
		GamePlan:                 gamePlan(primaryForm, opponentForm),
		OpponentStats:            opponentStats,
		PrimaryTeamStats:         primaryStats,
		Recommendations:          recommendation.Recommend(opponentStats),
		GeneratedAt:              s.now().UTC(),
		DataSource:               DataSourceAPI,
	}, nil
}

func (s *MatchAnalysisService) leagueMatches(ctx context.Context) ([]match.Match, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: match source is not configured", ErrDependencyUnavailable)
	}
	matches, err := s.source.ListLeagueMatches(ctx, s.leagueID)
	if err != nil {
		return nil, fmt.Errorf("list league matches league=%d: %w", s.leagueID, err)
	}
	return matches, nil
}

func buildTacticalPlan(opponentName string, analysis MatchAnalysis) TacticalPlan {
	recs := analysis.Recommendations
	stats := analysis.OpponentStats

	var sections PlanSections
	sections.FormationRecommendations.SuggestedChanges = recs.FormationChanges
	sections.FormationRecommendations.SupportingEvidence.OpponentShape = stats.TeamShape
	sections.FormationRecommendations.SupportingEvidence.RecentForm = analysis.OpponentForm.Summary

	sections.PressingStrategy.Recommendation = recs.PressingAdjustments
	sections.PressingStrategy.SupportingEvidence.OpponentPressing = stats.PressingStructure
	sections.PressingStrategy.SupportingEvidence.PossessionStats = stats.PossessionControl

	sections.TargetZones.PriorityZones = recs.TargetZones
	sections.TargetZones.SupportingEvidence.DefensiveVulnerabilities = stats.DefensiveActions
	sections.TargetZones.SupportingEvidence.WeakAreas = recommendation.UrgentWeaknesses(recs)

	sections.PlayerRoles.RoleChanges = recs.PlayerRoleChanges
	sections.PlayerRoles.SupportingEvidence.OpponentWidth = stats.TeamShape.WidthUsage
	sections.PlayerRoles.SupportingEvidence.TransitionSpeed = stats.Transitions

	sections.GamePhases = GamePhases{
		InPossession:  defaultInPossession,
		OutPossession: defaultOutPossession,
		Transitions:   defaultTransitions,
		Switches:      recs.InGameSwitches,
	}
	sections.SubstitutionStrategy = SubstitutionSection{
		Recommendations: recs.SubstitutionTiming,
		KeyAdjustments:  recs.KeyAdjustments,
	}
	sections.CriticalWeaknesses = recs.ExploitWeaknesses

	return TacticalPlan{
		Opponent:     opponentName,
		Plan:         sections,
		AIConfidence: recs.AIConfidence,
		GeneratedAt:  analysis.GeneratedAt,
	}
}

func normalizeOpponent(opponentID, opponentName string) (string, string, error) {
	opponentID = strings.TrimSpace(opponentID)
	opponentName = strings.TrimSpace(opponentName)
	if opponentID == "" {
		return "", "", fmt.Errorf("%w: opponent id is required", ErrInvalidInput)
	}
	if opponentName == "" {
		return "", "", fmt.Errorf("%w: opponent name is required", ErrInvalidInput)
	}
	return opponentID, opponentName, nil
}

func cacheKey(opponentID, opponentName string) string {
	return opponentID + "_" + opponentName
}

func dataSource(fromCache bool) string {
	if fromCache {
		return DataSourceCache
	}
	return DataSourceAPI
}
