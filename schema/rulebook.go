package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"slices"
)

// Byte sizes used by the default rulebook.
const (
	MiB = 1024 * 1024

	DefaultMaxIconBytes    = 2 * MiB
	DefaultMaxPackageBytes = 128 * MiB
)

// DefaultVersionPattern accepts one or more dot-separated non-negative integers.
const DefaultVersionPattern = `^\d+(\.\d+)*$`

// Rulebook is the static set of thresholds and lists a validation run checks against.
// It is built once per process and shared by reference; nothing mutates it after construction.
type Rulebook struct {
	NameMinLength        int      `json:"name_min_length"`
	NameMaxLength        int      `json:"name_max_length"`
	DescriptionMinLength int      `json:"description_min_length"`
	DescriptionMaxLength int      `json:"description_max_length"`
	VersionPattern       string   `json:"version_pattern"`
	RequiredIconSizes    []string `json:"required_icon_sizes"`
	RecommendedIconSizes []string `json:"recommended_icon_sizes"`
	MaxIconBytes         int64    `json:"max_icon_bytes"`
	MaxPackageBytes      int64    `json:"max_package_bytes"`

	// MaxPermissions and MaxPurposes are policy choices rather than hard limits
	// from the store documentation; review them when the policy changes.
	MaxPermissions int `json:"max_permissions"`
	MaxPurposes    int `json:"max_purposes"`

	DangerousPermissions      []string `json:"dangerous_permissions"`
	DataCollectionPermissions []string `json:"data_collection_permissions"`
	ProhibitedKeywords        []string `json:"prohibited_keywords"`

	Penalties map[Severity]int `json:"penalties"`

	versionRe *regexp.Regexp
}

// DefaultPenalties returns the score deduction for each severity.
func DefaultPenalties() map[Severity]int {
	return map[Severity]int{
		CriticalSeverity: 25,
		HighSeverity:     15,
		MediumSeverity:   10,
		LowSeverity:      5,
	}
}

// DefaultRulebook returns the rulebook matching the published store policy.
func DefaultRulebook() *Rulebook {
	rb := &Rulebook{
		NameMinLength:        3,
		NameMaxLength:        45,
		DescriptionMinLength: 10,
		DescriptionMaxLength: 132,
		VersionPattern:       DefaultVersionPattern,
		RequiredIconSizes:    []string{"16", "48", "128"},
		RecommendedIconSizes: []string{"19", "38", "32", "64", "96"},
		MaxIconBytes:         DefaultMaxIconBytes,
		MaxPackageBytes:      DefaultMaxPackageBytes,
		MaxPermissions:       10,
		MaxPurposes:          2,
		DangerousPermissions: []string{
			"<all_urls>",
			"tabs",
			"history",
			"bookmarks",
			"webRequest",
			"webRequestBlocking",
			"debugger",
			"management",
			"nativeMessaging",
			"proxy",
			"privacy",
			"downloads",
			"clipboardRead",
		},
		DataCollectionPermissions: []string{
			"tabs",
			"history",
			"bookmarks",
			"cookies",
			"webRequest",
			"identity",
			"identity.email",
			"geolocation",
			"clipboardRead",
			"<all_urls>",
		},
		ProhibitedKeywords: []string{
			"hack",
			"crack",
			"keygen",
			"warez",
			"torrent",
			"cryptocurrency mining",
			"bitcoin miner",
			"casino",
			"gambling",
		},
		Penalties: DefaultPenalties(),
	}
	rb.versionRe = regexp.MustCompile(rb.VersionPattern)
	return rb
}

// Compile finalizes a rulebook after its fields were assigned.
// It must be called before the rulebook is used when it was not built by DefaultRulebook.
func (rb *Rulebook) Compile() error {
	re, err := regexp.Compile(rb.VersionPattern)
	if err != nil {
		return err
	}
	rb.versionRe = re
	return nil
}

// VersionMatches reports whether version satisfies the version pattern.
func (rb *Rulebook) VersionMatches(version string) bool {
	re := rb.versionRe
	if re == nil {
		re = regexp.MustCompile(rb.VersionPattern)
	}
	return re.MatchString(version)
}

// Penalty returns the score deduction for a severity.
func (rb *Rulebook) Penalty(s Severity) int {
	return rb.Penalties[s]
}

// CollectsData reports whether permission implies user data collection.
func (rb *Rulebook) CollectsData(permission string) bool {
	return slices.Contains(rb.DataCollectionPermissions, permission)
}

// Fingerprint returns a stable digest of the rulebook contents.
// Reports cached under one fingerprint are never served for another.
func (rb *Rulebook) Fingerprint() string {
	data, _ := json.Marshal(rb)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
