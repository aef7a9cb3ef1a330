package application

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"weekly/internal/export/domain"
	"weekly/internal/export/infrastructure"
	reconciledomain "weekly/internal/reconcile/domain"
	sharedinfra "weekly/internal/shared/infrastructure"
)

// ExportService copie un snapshot vers un fichier cible, en CSV ou en Parquet
type ExportService struct {
	sales  *infrastructure.SnapshotStore[reconciledomain.SalesRow]
	weekly *infrastructure.SnapshotStore[*reconciledomain.WeeklyFact]
	logger *zap.Logger
}

// NewExportService crée le service d'export
func NewExportService(
	sales *infrastructure.SnapshotStore[reconciledomain.SalesRow],
	weekly *infrastructure.SnapshotStore[*reconciledomain.WeeklyFact],
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{sales: sales, weekly: weekly, logger: logger}
}

// Export exécute le job et retourne le nombre de lignes écrites
func (s *ExportService) Export(ctx context.Context, job *domain.ExportJob) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var (
		n   int
		err error
	)
	switch job.ExportType() {
	case domain.ExportTypeSales:
		n, err = exportCSV(s.sales, job.Target())
	case domain.ExportTypeWeeklyFact:
		if job.Format() == domain.ExportFormatParquet {
			n, err = s.exportWeeklyParquet(job.Target())
		} else {
			n, err = exportCSV(s.weekly, job.Target())
		}
	default:
		err = fmt.Errorf("unsupported export type %q", job.ExportType())
	}
	if err != nil {
		return 0, err
	}
	s.logger.Info("export written",
		zap.String("type", string(job.ExportType())),
		zap.String("format", string(job.Format())),
		zap.String("target", job.Target()),
		zap.Int("rows", n),
	)
	return n, nil
}

func (s *ExportService) exportWeeklyParquet(target string) (int, error) {
	facts, _, err := s.weekly.Load()
	if err != nil {
		return 0, err
	}
	if err := infrastructure.WriteWeeklyFactParquet(target, facts); err != nil {
		return 0, err
	}
	return len(facts), nil
}

func exportCSV[T any](store *infrastructure.SnapshotStore[T], target string) (int, error) {
	rows, _, err := store.Load()
	if err != nil {
		return 0, err
	}
	err = sharedinfra.WriteFileAtomic(target, func(w io.Writer) error {
		return store.Encode(w, rows)
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
