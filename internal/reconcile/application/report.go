package application

import (
	"fmt"
	"sort"
	"strings"
	"time"

	exportdomain "weekly/internal/export/domain"
	shareddomain "weekly/internal/shared/domain"
)

// Étapes d'un run, exécutées dans cet ordre
const (
	StageSales     = "sales"
	StageInventory = "inventory"
	StageAMS       = "ams"
)

// AllStages ordre canonique des étapes
var AllStages = []string{StageSales, StageInventory, StageAMS}

// ParseStages valide une liste d'étapes; vide = toutes
func ParseStages(names []string) ([]string, error) {
	if len(names) == 0 {
		return AllStages, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		switch n {
		case StageSales, StageInventory, StageAMS:
			want[n] = true
		default:
			return nil, fmt.Errorf("unknown stage %q (expected sales, inventory or ams)", n)
		}
	}
	out := make([]string, 0, len(want))
	for _, s := range AllStages {
		if want[s] {
			out = append(out, s)
		}
	}
	return out, nil
}

// Status issue globale d'un run
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

// OutputStats bilan d'écriture d'un snapshot
type OutputStats struct {
	Stage    string
	Path     string
	Rows     int
	Added    int
	Skipped  int
	Replaced int
	Dropped  int
}

func newOutputStats[T any](stage, path string, res exportdomain.MergeResult[T], dropped int) OutputStats {
	return OutputStats{
		Stage:    stage,
		Path:     path,
		Rows:     len(res.Rows),
		Added:    len(res.Added),
		Skipped:  len(res.Skipped),
		Replaced: len(res.Replaced),
		Dropped:  dropped,
	}
}

// Report résultat d'un run
type Report struct {
	RunID         string
	StartedAt     time.Time
	FinishedAt    time.Time
	Stages        []string
	Status        Status
	Outputs       []OutputStats
	BrandsSkipped []string
	Issues        []shareddomain.Issue
}

// Duration durée du run
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RowsWritten nombre de lignes par snapshot écrit
func (r *Report) RowsWritten() map[string]int {
	out := make(map[string]int, len(r.Outputs))
	for _, o := range r.Outputs {
		out[o.Path] = o.Rows
	}
	return out
}

// stageResult contribution d'une étape au rapport
type stageResult struct {
	outputs []OutputStats
	skipped []string
}

func (s *stageResult) skip(stage string, week int, brand string) {
	s.skipped = append(s.skipped, fmt.Sprintf("%s:%s:%s", stage, shareddomain.WeekLabel(week), brand))
}

// finalize calcule le statut: une erreur fatale au run donne error, tout fichier ou unité
// écarté donne partial
func (r *Report) finalize(err error) {
	sort.Strings(r.BrandsSkipped)
	switch {
	case err != nil:
		r.Status = StatusError
	case len(r.BrandsSkipped) > 0 || countSeverity(r.Issues, shareddomain.SeverityFatalFile) > 0:
		r.Status = StatusPartial
	default:
		r.Status = StatusSuccess
	}
}

func countSeverity(issues []shareddomain.Issue, sev shareddomain.Severity) int {
	n := 0
	for _, i := range issues {
		if i.Severity == sev {
			n++
		}
	}
	return n
}

func missingInput(stage, path string, week int, brand string) shareddomain.Issue {
	return shareddomain.Issue{
		Severity: shareddomain.SeverityDiagnostic,
		Stage:    stage,
		Path:     path,
		Week:     week,
		Brand:    brand,
		Message:  shareddomain.ErrMissingInput.Error(),
	}
}

func fileFailure(stage, path string, week int, brand string, err error) shareddomain.Issue {
	return shareddomain.Issue{
		Severity: shareddomain.SeverityFatalFile,
		Stage:    stage,
		Path:     path,
		Week:     week,
		Brand:    brand,
		Message:  err.Error(),
	}
}
