package workflow

import (
	"fmt"

	"github.com/forgeworks/forge/internal/contract"
	forgeerrors "github.com/forgeworks/forge/internal/errors"
	"github.com/forgeworks/forge/internal/state"
)

// IntegrityReport lists schema violations found in the stored documents,
// keyed by document name. An empty report means the state is clean.
type IntegrityReport struct {
	Issues map[string][]string
}

// Clean reports whether no violations were found.
func (r *IntegrityReport) Clean() bool {
	return len(r.Issues) == 0
}

// Error summarizes the report as a single typed error, or nil when clean.
func (r *IntegrityReport) Error() error {
	if r.Clean() {
		return nil
	}
	return fmt.Errorf("%d document(s) failed schema checks: %w",
		len(r.Issues), forgeerrors.ErrSchemaViolation)
}

// CheckIntegrity validates every present document against its declared
// schema. Absent documents are skipped: presence requirements belong to
// the phase machine's preconditions, not to integrity checking. A dirty
// report is the trigger for state_corruption recovery.
func CheckIntegrity(store *state.Store) *IntegrityReport {
	report := &IntegrityReport{Issues: map[string][]string{}}

	check := func(name, schema string, get func() (map[string]any, error)) {
		doc, err := get()
		if err != nil {
			return
		}
		if res := contract.ValidateAgainstSchema(doc, schema); !res.Valid {
			report.Issues[name] = res.Errors
		}
	}

	check("project_plan", contract.ProjectPlanSchema, store.GetProjectPlan)
	check("api_spec", contract.APISpecSchema, store.GetAPISpec)
	check("backend_report", contract.BackendReportSchema, store.GetBackendReport)
	check("frontend_report", contract.FrontendReportSchema, store.GetFrontendReport)

	return report
}

// DescribeIssues flattens a report into per-line messages for logging and
// error history records.
func (r *IntegrityReport) DescribeIssues() []string {
	out := make([]string, 0, len(r.Issues))
	for _, name := range []string{"project_plan", "api_spec", "backend_report", "frontend_report"} {
		for _, issue := range r.Issues[name] {
			out = append(out, fmt.Sprintf("%s: %s", name, issue))
		}
	}
	return out
}
