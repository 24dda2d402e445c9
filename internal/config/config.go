package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"locum-match/internal/domain/matching"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Matching MatchingConfig
	Digest   DigestConfig
	Report   ReportConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

// MatchingConfig is the externally adjustable business-rule surface of the
// matching engine. Every threshold and weight lives here rather than in the
// scoring code, so product can retune without a logic change.
type MatchingConfig struct {
	CheckLooking   bool
	CheckConflicts bool

	// Reservation statuses that make a physician unavailable for a job's
	// dates. Distinct from DigestConfig.ActiveReservationStatuses, which
	// decides whether a job is still worth digesting at all.
	ConflictReservationStatuses []string

	Weights map[string]float64

	LocationMidpointKm   float64
	DurationBucketBonus  float64
	EMRPartialScore      float64
	ProvinceLicenseScore float64

	// Partial-credit pairs for related specialities, parsed from
	// "a=b:score" entries. Applied symmetrically.
	RelatedSpecialities map[string]map[string]float64

	ShortTermMaxDurationDays float64
	ShortTermKeywords        []string
	ShortTermLeadTimeDays    float64

	// Minimum total score to keep a result at all.
	ScoreThreshold float64
	// Minimum total score to enqueue a notification. Deliberately separate
	// from ScoreThreshold: the two are independent knobs.
	NotifyThreshold float64
}

type DigestConfig struct {
	// Top job matches kept per physician in a weekly digest.
	TopNPerPhysician int
	// Reservation statuses that keep a job "active" for the digest.
	ActiveReservationStatuses []string
	// Cron spec for the recurring digest trigger, e.g. "@weekly".
	CronSpec string
	// Bounded fan-out for per-job searches inside one digest run.
	SearchWorkers int
}

type ReportConfig struct {
	TopK int
	// "csv" or "json".
	Format string
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:     opt("DB_HOST"),
		DBPort:     opt("DB_PORT"),
		DBName:     opt("DB_NAME"),
		DBUser:     opt("DB_USER"),
		DBPassword: opt("DB_PASSWORD"),
		DBSSLMode:  opt("DB_SSL_MODE"),

		ConnectTimeout:        optDuration("DB_CONNECT_TIMEOUT", 0),
		PoolMaxConns:          int32(optInt("DB_POOL_MAX_CONNS", 0)),
		PoolMinConns:          int32(optInt("DB_POOL_MIN_CONNS", 0)),
		PoolMaxConnLifetime:   optDuration("DB_POOL_MAX_CONN_LIFETIME", 0),
		PoolMaxConnIdleTime:   optDuration("DB_POOL_MAX_CONN_IDLE_TIME", 0),
		PoolHealthCheckPeriod: optDuration("DB_POOL_HEALTH_CHECK_PERIOD", 0),
	}

	defaults := matching.DefaultConfig()
	cfg.Matching = MatchingConfig{
		CheckLooking:   optBool("MATCH_CHECK_LOOKING", true),
		CheckConflicts: optBool("MATCH_CHECK_CONFLICTS", true),

		ConflictReservationStatuses: optList("MATCH_CONFLICT_STATUSES", []string{"Pending", "In Progress", "Ongoing"}),

		Weights: map[string]float64{
			matching.CategorySpeciality: optFloat("MATCH_WEIGHT_SPECIALITY", defaults.Weights[matching.CategorySpeciality]),
			matching.CategoryLocation:   optFloat("MATCH_WEIGHT_LOCATION", defaults.Weights[matching.CategoryLocation]),
			matching.CategoryDuration:   optFloat("MATCH_WEIGHT_DURATION", defaults.Weights[matching.CategoryDuration]),
			matching.CategoryProvince:   optFloat("MATCH_WEIGHT_PROVINCE", defaults.Weights[matching.CategoryProvince]),
			matching.CategoryEMR:        optFloat("MATCH_WEIGHT_EMR", defaults.Weights[matching.CategoryEMR]),
		},

		LocationMidpointKm:   optFloat("MATCH_LOCATION_MIDPOINT_KM", defaults.Scoring.LocationMidpointKm),
		DurationBucketBonus:  optFloat("MATCH_DURATION_BUCKET_BONUS", defaults.Scoring.DurationBucketBonus),
		EMRPartialScore:      optFloat("MATCH_EMR_PARTIAL_SCORE", defaults.Scoring.EMRPartialScore),
		ProvinceLicenseScore: optFloat("MATCH_PROVINCE_LICENSE_SCORE", defaults.Scoring.ProvinceLicenseScore),
		RelatedSpecialities:  optRelatedSpecialities("MATCH_RELATED_SPECIALITIES"),

		ShortTermMaxDurationDays: optFloat("SHORT_TERM_MAX_DURATION_DAYS", 14),
		ShortTermKeywords:        optList("SHORT_TERM_KEYWORDS", []string{"on-call", "short notice"}),
		ShortTermLeadTimeDays:    optFloat("SHORT_TERM_LEAD_TIME_DAYS", 7),

		ScoreThreshold:  optFloat("MATCH_SCORE_THRESHOLD", 0),
		NotifyThreshold: optFloat("MATCH_NOTIFY_THRESHOLD", 0.6),
	}

	cfg.Digest = DigestConfig{
		TopNPerPhysician:          optInt("DIGEST_TOP_N_PER_PHYSICIAN", 5),
		ActiveReservationStatuses: optList("DIGEST_ACTIVE_STATUSES", []string{"Pending"}),
		CronSpec:                  optDefault("DIGEST_CRON_SPEC", "@weekly"),
		SearchWorkers:             optInt("DIGEST_SEARCH_WORKERS", 4),
	}

	cfg.Report = ReportConfig{
		TopK:   optInt("REPORT_TOP_K", 10),
		Format: optDefault("REPORT_FORMAT", "csv"),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

// MatchingEngine assembles the engine config from the flat env surface.
func (c Config) MatchingEngine() matching.Config {
	return matching.Config{
		Eligibility: matching.EligibilityConfig{
			CheckLooking:   c.Matching.CheckLooking,
			CheckConflicts: c.Matching.CheckConflicts,
		},
		Weights: c.Matching.Weights,
		Scoring: matching.ScoringConfig{
			LocationMidpointKm:   c.Matching.LocationMidpointKm,
			DurationBucketBonus:  c.Matching.DurationBucketBonus,
			EMRPartialScore:      c.Matching.EMRPartialScore,
			ProvinceLicenseScore: c.Matching.ProvinceLicenseScore,
			RelatedSpecialities:  c.Matching.RelatedSpecialities,
		},
	}
}

// ShortTerm assembles the short-term job check config.
func (c Config) ShortTerm() matching.ShortTermConfig {
	return matching.ShortTermConfig{
		MaxDurationDays:  c.Matching.ShortTermMaxDurationDays,
		ScheduleKeywords: c.Matching.ShortTermKeywords,
		LeadTimeDays:     c.Matching.ShortTermLeadTimeDays,
	}
}

func optDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func optBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func optInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func optFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func optDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func optList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// optRelatedSpecialities parses comma-separated "a=b:score" entries, e.g.
// "emergency medicine=family medicine:0.7". Each pair is stored in both
// directions. Malformed entries are skipped. Empty means exact-match only.
func optRelatedSpecialities(key string) map[string]map[string]float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	out := map[string]map[string]float64{}
	for _, entry := range strings.Split(v, ",") {
		pair, scoreStr, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok {
			continue
		}
		a, b, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		a = strings.ToLower(strings.TrimSpace(a))
		b = strings.ToLower(strings.TrimSpace(b))
		score, err := strconv.ParseFloat(strings.TrimSpace(scoreStr), 64)
		if err != nil || a == "" || b == "" {
			continue
		}
		if out[a] == nil {
			out[a] = map[string]float64{}
		}
		if out[b] == nil {
			out[b] = map[string]float64{}
		}
		out[a][b] = score
		out[b][a] = score
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
