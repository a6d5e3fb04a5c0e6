// Package export writes report snapshots in formats meant for the
// registrar's office.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shrimpsizemoose/appello/internal/models"
)

var csvHeader = []string{"number", "surname", "name", "email", "major", "result", "status"}

// ReportSource assembles report snapshots. *grading.Engine satisfies it.
type ReportSource interface {
	GetReportByIDSortedBy(ctx context.Context, professorID, reportID int64, sortKey, sortDir string) (*models.ReportSnapshot, error)
}

type CSVExporter struct {
	source          ReportSource
	timestampFormat string
}

func NewCSVExporter(source ReportSource, timestampFormat string) *CSVExporter {
	return &CSVExporter{source: source, timestampFormat: timestampFormat}
}

// Export writes the report as CSV: a preamble row with the report metadata,
// the column header, then one row per registration. It returns the number
// of registrations written.
func (e *CSVExporter) Export(ctx context.Context, w io.Writer, professorID, reportID int64, sortKey, sortDir string) (int, error) {
	snapshot, err := e.source.GetReportByIDSortedBy(ctx, professorID, reportID, sortKey, sortDir)
	if err != nil {
		return 0, err
	}
	return len(snapshot.Registrations), WriteCSV(w, snapshot, e.timestampFormat)
}

func WriteCSV(w io.Writer, snapshot *models.ReportSnapshot, timestampFormat string) error {
	cw := csv.NewWriter(w)

	report := snapshot.Report
	// padded to the header width so every record has the same field count
	preamble := make([]string, len(csvHeader))
	copy(preamble, []string{
		"report", strconv.FormatInt(report.ID, 10),
		report.CourseName,
		time.Unix(report.ExamDate, 0).UTC().Format(timestampFormat),
		time.Unix(report.CreatedAt, 0).UTC().Format(timestampFormat),
	})
	if err := cw.Write(preamble); err != nil {
		return fmt.Errorf("failed to write preamble: %w", err)
	}
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, reg := range snapshot.Registrations {
		row := []string{
			strconv.FormatInt(reg.StudentNumber, 10),
			reg.StudentSurname,
			reg.StudentName,
			reg.StudentEmail,
			reg.StudentMajor,
			reg.Result.String(),
			reg.Status.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write registration %d: %w", reg.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
