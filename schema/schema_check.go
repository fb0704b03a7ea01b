package schema

// CheckResult holds the results of a policy gate over one or more submissions.
type CheckResult struct {
	Passed   bool
	MinScore int
	FailOn   Severity
	Total    int
	Failures []CheckFailure
	Results  []ValidationResult
}

// CheckFailure describes why a submission failed the gate.
type CheckFailure struct {
	Source string
	Score  int
	Reason string
}
