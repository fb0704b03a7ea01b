// Package policy holds the store policy validator: a typed manifest,
// the package file set, five rule checks and the compliance score.
package policy

import "github.com/huangsam/storecheck/schema"

// check inspects one policy area. Checks are pure and never mutate their inputs.
type check func(m *Manifest, files FileSet, rb *schema.Rulebook) []schema.Finding

// checks run in this order and their findings are concatenated as is.
var checks = []check{
	checkManifest,
	checkIcons,
	checkPermissions,
	checkPrivacy,
	checkContent,
}

// Validate runs every check against a manifest and its files and scores the result.
// The report depends only on its inputs.
func Validate(m *Manifest, files FileSet, rb *schema.Rulebook) schema.Report {
	findings := []schema.Finding{}
	for _, c := range checks {
		findings = append(findings, c(m, files, rb)...)
	}
	return schema.Report{Findings: findings, Score: Score(findings, rb)}
}
