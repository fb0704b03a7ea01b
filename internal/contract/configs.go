package contract

import (
	"fmt"
	"maps"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/storecheck/schema"
)

// Default values for configuration.
const (
	DefaultMinScore = 70
	DefaultFailOn   = schema.CriticalSeverity
	DefaultAddr     = "127.0.0.1:8080"
	MaxPenalty      = 100
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// RulesRawInput holds rulebook overrides from the YAML config file.
// Scalars are pointers so that an unset value keeps the default; lists extend the defaults.
type RulesRawInput struct {
	NameMinLength        *int     `mapstructure:"name_min_length"`
	NameMaxLength        *int     `mapstructure:"name_max_length"`
	DescriptionMinLength *int     `mapstructure:"description_min_length"`
	DescriptionMaxLength *int     `mapstructure:"description_max_length"`
	VersionPattern       *string  `mapstructure:"version_pattern"`
	MaxIconBytes         *int64   `mapstructure:"max_icon_bytes"`
	MaxPackageBytes      *int64   `mapstructure:"max_package_bytes"`
	MaxPermissions       *int     `mapstructure:"max_permissions"`
	MaxPurposes          *int     `mapstructure:"max_purposes"`
	DangerousPermissions []string `mapstructure:"dangerous_permissions"`
	DataCollection       []string `mapstructure:"data_collection_permissions"`
	ProhibitedKeywords   []string `mapstructure:"prohibited_keywords"`
}

// PenaltiesRawInput holds per-severity score deductions from the YAML config file.
type PenaltiesRawInput struct {
	Critical *int `mapstructure:"critical"`
	High     *int `mapstructure:"high"`
	Medium   *int `mapstructure:"medium"`
	Low      *int `mapstructure:"low"`
}

// Config holds the runtime configuration for validation.
// This struct remains the "final, validated" config.
type Config struct {
	Paths      []string
	Workers    int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	MinScore int
	FailOn   schema.Severity

	Addr string

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext

	// Rulebook is built once from defaults plus overrides and never changes afterwards.
	Rulebook *schema.Rulebook

	UseEmojis bool // Enable emojis in output headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	PathArgs []string

	// --- Fields from rootCmd.PersistentFlags() ---
	OutputFile       string `mapstructure:"output-file"`
	Workers          int    `mapstructure:"workers"`
	Output           string `mapstructure:"output"`
	Width            int    `mapstructure:"width"`
	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
	Emoji            string `mapstructure:"emoji"`
	Color            string `mapstructure:"color"`

	// --- Fields from checkCmd.Flags() ---
	MinScore int    `mapstructure:"min-score"`
	FailOn   string `mapstructure:"fail-on"`

	// --- Fields from serveCmd.Flags() ---
	Addr string `mapstructure:"addr"`

	// --- Rulebook overrides from config file ---
	Rules RulesRawInput `mapstructure:"rules"`

	// --- Severity penalties from config file ---
	Penalties PenaltiesRawInput `mapstructure:"penalties"`
}

// Clone returns a copy of the Config struct. The rulebook is shared since it is immutable.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Paths != nil {
		clone.Paths = slices.Clone(c.Paths)
	}
	return &clone
}

// ConfigParams returns the settings worth recording alongside a validation run.
func (c *Config) ConfigParams() map[string]any {
	params := map[string]any{
		"workers":     c.Workers,
		"min_score":   c.MinScore,
		"fail_on":     string(c.FailOn),
		"output":      string(c.Output),
		"fingerprint": "",
	}
	if c.Rulebook != nil {
		params["fingerprint"] = c.Rulebook.Fingerprint()
		penalties := make(map[string]int, len(c.Rulebook.Penalties))
		for sev, p := range c.Rulebook.Penalties {
			penalties[string(sev)] = p
		}
		params["penalties"] = penalties
	}
	return params
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processCheckGate(cfg, input); err != nil {
		return err
	}
	if err := processRulebook(cfg, input); err != nil {
		return err
	}
	return resolvePaths(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return fmt.Errorf("history-db-connect: %w", err)
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		historyPath := cfg.HistoryDBConnect
		if historyPath == "" {
			historyPath = GetHistoryDBFilePath()
		}
		if cachePath == historyPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}

	return nil
}

// validateSimpleInputs processes and validates the output and backend fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Addr = input.Addr
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return validateBackendConfigs(cfg, input)
}

// processCheckGate validates the thresholds used by the check command.
func processCheckGate(cfg *Config, input *ConfigRawInput) error {
	if input.MinScore < 0 || input.MinScore > 100 {
		return fmt.Errorf("min-score must be between 0 and 100 (received %d)", input.MinScore)
	}
	cfg.MinScore = input.MinScore

	cfg.FailOn = schema.Severity(strings.ToLower(input.FailOn))
	if cfg.FailOn == "" {
		cfg.FailOn = DefaultFailOn
	}
	if _, ok := schema.ValidSeverities[cfg.FailOn]; !ok {
		return fmt.Errorf("invalid fail-on severity '%s'. must be critical, high, medium, low, none", input.FailOn)
	}
	return nil
}

// processRulebook builds the rulebook from defaults and config file overrides.
func processRulebook(cfg *Config, input *ConfigRawInput) error {
	rb, err := BuildRulebook(input.Rules, input.Penalties)
	if err != nil {
		return err
	}
	cfg.Rulebook = rb
	return nil
}

// BuildRulebook applies overrides to the default rulebook and validates the result.
func BuildRulebook(rules RulesRawInput, penalties PenaltiesRawInput) (*schema.Rulebook, error) {
	rb := schema.DefaultRulebook()

	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setInt(&rb.NameMinLength, rules.NameMinLength)
	setInt(&rb.NameMaxLength, rules.NameMaxLength)
	setInt(&rb.DescriptionMinLength, rules.DescriptionMinLength)
	setInt(&rb.DescriptionMaxLength, rules.DescriptionMaxLength)
	setInt(&rb.MaxPermissions, rules.MaxPermissions)
	setInt(&rb.MaxPurposes, rules.MaxPurposes)
	if rules.MaxIconBytes != nil {
		rb.MaxIconBytes = *rules.MaxIconBytes
	}
	if rules.MaxPackageBytes != nil {
		rb.MaxPackageBytes = *rules.MaxPackageBytes
	}
	if rules.VersionPattern != nil {
		rb.VersionPattern = *rules.VersionPattern
	}

	rb.DangerousPermissions = appendUnique(rb.DangerousPermissions, rules.DangerousPermissions)
	rb.DataCollectionPermissions = appendUnique(rb.DataCollectionPermissions, rules.DataCollection)
	rb.ProhibitedKeywords = appendUnique(rb.ProhibitedKeywords, rules.ProhibitedKeywords)

	switch {
	case rb.NameMinLength < 0 || rb.NameMinLength > rb.NameMaxLength:
		return nil, fmt.Errorf("rules: name length bounds %d..%d are invalid", rb.NameMinLength, rb.NameMaxLength)
	case rb.DescriptionMinLength < 0 || rb.DescriptionMinLength > rb.DescriptionMaxLength:
		return nil, fmt.Errorf("rules: description length bounds %d..%d are invalid", rb.DescriptionMinLength, rb.DescriptionMaxLength)
	case rb.MaxIconBytes <= 0 || rb.MaxPackageBytes <= 0:
		return nil, fmt.Errorf("rules: byte limits must be greater than 0")
	case rb.MaxPermissions < 0 || rb.MaxPurposes < 0:
		return nil, fmt.Errorf("rules: permission and purpose thresholds cannot be negative")
	}
	if err := rb.Compile(); err != nil {
		return nil, fmt.Errorf("rules: invalid version_pattern: %w", err)
	}

	overrides := map[schema.Severity]*int{
		schema.CriticalSeverity: penalties.Critical,
		schema.HighSeverity:     penalties.High,
		schema.MediumSeverity:   penalties.Medium,
		schema.LowSeverity:      penalties.Low,
	}
	computed := maps.Clone(rb.Penalties)
	for sev, p := range overrides {
		if p == nil {
			continue
		}
		if *p < 0 || *p > MaxPenalty {
			return nil, fmt.Errorf("penalty for %s must be between 0 and %d (received %d)", sev, MaxPenalty, *p)
		}
		computed[sev] = *p
	}
	rb.Penalties = computed

	return rb, nil
}

func appendUnique(base, extra []string) []string {
	out := slices.Clone(base)
	for _, item := range extra {
		item = strings.TrimSpace(item)
		if item != "" && !slices.Contains(out, item) {
			out = append(out, item)
		}
	}
	return out
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// resolvePaths turns positional arguments into clean absolute paths.
func resolvePaths(cfg *Config, input *ConfigRawInput) error {
	cfg.Paths = make([]string, 0, len(input.PathArgs))
	for _, arg := range input.PathArgs {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return err
		}
		cfg.Paths = append(cfg.Paths, filepath.Clean(abs))
	}
	return nil
}
