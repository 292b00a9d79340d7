package repository_test

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maeulsoft/programhub/internal/models"
	"github.com/maeulsoft/programhub/internal/repository"
)

// TestApplicationRepository_Create verifies insertion populates the
// database-assigned fields.
func TestApplicationRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	app := &models.Application{
		ProgramID:   7,
		ApplicantID: 42,
		Payload:     map[string]any{"phone": "010-1234-5678"},
		Status:      models.ApplicationSubmitted,
	}

	mock.ExpectQuery(`INSERT INTO applications`).
		WithArgs(app.ProgramID, app.ApplicantID, app.Payload, app.Status).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(11, testTime))

	repo := repository.NewApplicationRepository(mock)
	err = repo.Create(context.Background(), app)

	assert.NoError(t, err)
	assert.Equal(t, 11, app.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestApplicationRepository_ExistsForApplicant covers both sides of the
// duplicate-submission pre-check.
func TestApplicationRepository_ExistsForApplicant(t *testing.T) {
	tests := []struct {
		name   string
		exists bool
	}{
		{"already applied", true},
		{"no prior application", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectQuery(`SELECT EXISTS`).
				WithArgs(7, 42).
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(tt.exists))

			repo := repository.NewApplicationRepository(mock)
			exists, err := repo.ExistsForApplicant(context.Background(), 7, 42)

			assert.NoError(t, err)
			assert.Equal(t, tt.exists, exists)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestApplicationRepository_UpdatePayment verifies both directions of the
// payment flag, including the nil timestamp when a payment is cleared.
func TestApplicationRepository_UpdatePayment(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	receivedAt := testTime
	mock.ExpectExec(`UPDATE applications SET is_payment_received = \$1, payment_received_at = \$2 WHERE id = \$3`).
		WithArgs(true, pgxmock.AnyArg(), 11).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE applications SET is_payment_received = \$1, payment_received_at = \$2 WHERE id = \$3`).
		WithArgs(false, pgxmock.AnyArg(), 11).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := repository.NewApplicationRepository(mock)
	assert.NoError(t, repo.UpdatePayment(context.Background(), 11, true, &receivedAt))
	assert.NoError(t, repo.UpdatePayment(context.Background(), 11, false, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestApplicationRepository_ListByProgram verifies the enriched view
// scan including the joined applicant and program columns.
func TestApplicationRepository_ListByProgram(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{
		"id", "program_id", "applicant_id", "payload", "status",
		"score", "notes", "is_payment_received", "payment_received_at", "created_at",
		"applicant_name", "applicant_email", "program_title",
	}).AddRow(
		11, 7, 42, map[string]any{}, models.ApplicationSubmitted,
		nil, nil, false, nil, testTime,
		"Kim Minsu", "minsu@example.com", "Spring Gardening Class",
	)

	mock.ExpectQuery(`JOIN users u ON u.id = a.applicant_id`).
		WithArgs(7).
		WillReturnRows(rows)

	repo := repository.NewApplicationRepository(mock)
	views, err := repo.ListByProgram(context.Background(), 7)

	assert.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Kim Minsu", views[0].ApplicantName)
	assert.Equal(t, "Spring Gardening Class", views[0].ProgramTitle)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestApplicationRepository_UpdateReview verifies the decision statement
// writes status together with score and notes, and that nil score or
// notes fall back to the stored column values instead of erasing them.
func TestApplicationRepository_UpdateReview(t *testing.T) {
	t.Run("with score and notes", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		score := 87.5
		notes := "strong motivation"
		mock.ExpectExec(`SET status = \$1, score = COALESCE\(\$2, score\), notes = COALESCE\(\$3, notes\)`).
			WithArgs(models.ApplicationSelected, pgxmock.AnyArg(), pgxmock.AnyArg(), 11).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := repository.NewApplicationRepository(mock)
		err = repo.UpdateReview(context.Background(), 11, models.ApplicationSelected, &score, &notes)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bare decision keeps stored values", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`SET status = \$1, score = COALESCE\(\$2, score\), notes = COALESCE\(\$3, notes\)`).
			WithArgs(models.ApplicationRejected, (*float64)(nil), (*string)(nil), 11).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := repository.NewApplicationRepository(mock)
		err = repo.UpdateReview(context.Background(), 11, models.ApplicationRejected, nil, nil)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestApplicationRepository_Update verifies the content statement also
// carries the status column, so a staff transition into under_review
// persists in the same write as the edited fields.
func TestApplicationRepository_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	score := 72.0
	app := &models.Application{
		ID:      11,
		Payload: map[string]any{"phone": "010-1234-5678"},
		Status:  models.ApplicationUnderReview,
		Score:   &score,
	}
	mock.ExpectExec(`UPDATE applications SET payload = \$1, score = \$2, notes = \$3, status = \$4 WHERE id = \$5`).
		WithArgs(app.Payload, pgxmock.AnyArg(), pgxmock.AnyArg(), models.ApplicationUnderReview, 11).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := repository.NewApplicationRepository(mock)
	err = repo.Update(context.Background(), app)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
