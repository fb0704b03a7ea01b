package schema

// Custom string types for type safety.
type (
	// Category groups findings by the part of the submission they concern.
	Category string

	// Kind is the outcome type of a finding.
	Kind string

	// Severity is the weight class of a finding.
	Severity string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and history.
	DatabaseBackend string
)

// All finding categories.
const (
	ManifestCategory    Category = "manifest"
	IconsCategory       Category = "icons"
	PrivacyCategory     Category = "privacy"
	ContentCategory     Category = "content"
	PermissionsCategory Category = "permissions"
	MetadataCategory    Category = "metadata"
)

// All finding kinds.
const (
	ErrorKind   Kind = "error"
	WarningKind Kind = "warning"
	InfoKind    Kind = "info"
	SuccessKind Kind = "success"
)

// All severities, from most to least severe.
const (
	CriticalSeverity Severity = "critical"
	HighSeverity     Severity = "high"
	MediumSeverity   Severity = "medium"
	LowSeverity      Severity = "low"
)

// NoSeverity disables severity based gating in the check command.
const NoSeverity Severity = "none"

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllCategories lists categories in display order.
var AllCategories = []Category{
	ManifestCategory,
	IconsCategory,
	PermissionsCategory,
	PrivacyCategory,
	ContentCategory,
	MetadataCategory,
}

// AllSeverities lists severities from most to least severe.
var AllSeverities = []Severity{CriticalSeverity, HighSeverity, MediumSeverity, LowSeverity}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSeverities lists all valid severities, including NoSeverity for gating.
var ValidSeverities = map[Severity]struct{}{
	CriticalSeverity: {},
	HighSeverity:     {},
	MediumSeverity:   {},
	LowSeverity:      {},
	NoSeverity:       {},
}

// Rank orders severities so that critical > high > medium > low > none.
func (s Severity) Rank() int {
	switch s {
	case CriticalSeverity:
		return 4
	case HighSeverity:
		return 3
	case MediumSeverity:
		return 2
	case LowSeverity:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return other.Rank() > 0 && s.Rank() >= other.Rank()
}
