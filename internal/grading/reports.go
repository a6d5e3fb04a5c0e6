package grading

import (
	"context"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/appello/internal/metrics"
	"github.com/shrimpsizemoose/appello/internal/models"
	"github.com/shrimpsizemoose/appello/internal/store"
)

// ReportCache stores assembled snapshots. Reports never change once written,
// so entries need no invalidation. Get returns nil, nil on a miss.
type ReportCache interface {
	Get(ctx context.Context, reportID int64, order store.Sort) (*models.ReportSnapshot, error)
	Set(ctx context.Context, reportID int64, order store.Sort, snapshot *models.ReportSnapshot) error
}

// GetReportByIDSortedBy assembles a report with its registrations in the
// requested order. Ownership is checked before the cache is consulted.
func (e *Engine) GetReportByIDSortedBy(ctx context.Context, professorID, reportID int64, sortKey, sortDir string) (snapshot *models.ReportSnapshot, err error) {
	const op = "GetReportByIDSortedBy"
	defer func() { observe(op, err) }()

	report, err := e.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, models.NewDomainError(op, models.ErrNotFound, "report not found")
	}
	owns, err := e.store.ProfessorOwnsReport(ctx, professorID, reportID)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, models.NewDomainError(op, models.ErrForbidden, "report belongs to another professor's course")
	}

	order := store.ParseSort(sortKey, sortDir)

	if e.cache != nil {
		cached, err := e.cache.Get(ctx, reportID, order)
		switch {
		case err != nil:
			metrics.ReportCacheTotal.WithLabelValues("error").Inc()
			logger.Error.Printf("Report cache read failed for report %d: %v", reportID, err)
		case cached != nil:
			metrics.ReportCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.ReportCacheTotal.WithLabelValues("miss").Inc()
			logger.Debug.Printf("Report cache miss for report %d (%s)", reportID, order)
		}
	}

	rows, err := e.store.ListRegistrationsForReport(ctx, reportID, order)
	if err != nil {
		return nil, err
	}
	snapshot = &models.ReportSnapshot{
		Report:        *report,
		Registrations: rows,
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, reportID, order, snapshot); err != nil {
			logger.Error.Printf("Report cache write failed for report %d: %v", reportID, err)
		}
	}
	return snapshot, nil
}

// GetReportsForCourse lists the reports of a course, oldest exam call first.
func (e *Engine) GetReportsForCourse(ctx context.Context, professorID, courseID int64) (reports []models.ReportView, err error) {
	const op = "GetReportsForCourse"
	defer func() { observe(op, err) }()

	course, err := e.store.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, models.NewDomainError(op, models.ErrNotFound, "course not found")
	}
	if course.ProfessorID != professorID {
		return nil, models.NewDomainError(op, models.ErrForbidden, "course belongs to another professor")
	}
	return e.store.ListReportsForCourse(ctx, professorID, courseID)
}
