package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/appello/internal/grading"
	"github.com/shrimpsizemoose/appello/internal/models"
	"github.com/shrimpsizemoose/appello/internal/store/sqlite"
	"github.com/shrimpsizemoose/appello/internal/store/storetest"
)

func TestCSVExport(t *testing.T) {
	s, err := sqlite.NewSQLiteStore(":memory:", "")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	f := storetest.Seed(t, s)
	finalized := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	engine := grading.NewEngine(s, grading.WithClock(func() time.Time { return finalized }))

	var regIDs []int64
	for _, studentID := range f.StudentIDs {
		id, err := engine.RegisterStudentForExam(ctx, studentID, f.ExamID)
		require.NoError(t, err)
		regIDs = append(regIDs, id)
	}
	require.NoError(t, engine.SetResultBulk(ctx, f.ProfessorID, []models.ResultUpdate{
		{RegistrationID: regIDs[0], ResultID: models.Result30CumLaude},
		{RegistrationID: regIDs[1], ResultID: models.Result24},
	}))
	_, err = engine.PublishResults(ctx, f.ProfessorID, f.ExamID)
	require.NoError(t, err)
	require.NoError(t, engine.DeclineExamResult(ctx, f.StudentIDs[1], f.ExamID))
	reportID, err := engine.FinalizeResults(ctx, f.ProfessorID, f.ExamID)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := NewCSVExporter(engine, "2006-01-02 15:04").Export(ctx, &buf, f.ProfessorID, reportID, "student.surname", "asc")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"report", "1", "Databases", "2024-06-20 09:00", "2024-07-01 10:00", "", ""}, rows[0])
	for _, row := range rows {
		assert.Len(t, row, len(csvHeader))
	}
	assert.Equal(t, csvHeader, rows[1])
	assert.Equal(t, []string{"100003", "Bianchi", "Carla", "carla.bianchi@uni.example", "Computer Engineering", "30 cum laude", "recorded"}, rows[2])
	assert.Equal(t, []string{"100001", "Rossi", "Marco", "marco.rossi@uni.example", "Mathematics", "postponed", "recorded"}, rows[3])

	_, err = NewCSVExporter(engine, time.RFC3339).Export(ctx, &buf, f.OtherProfessorID, reportID, "", "")
	assert.ErrorIs(t, err, models.ErrForbidden)
}
