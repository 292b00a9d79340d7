package services_test

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maeulsoft/programhub/internal/apperr"
	"github.com/maeulsoft/programhub/internal/logger/loggertest"
	"github.com/maeulsoft/programhub/internal/models"
	"github.com/maeulsoft/programhub/internal/services"
)

func applicationColumns() []string {
	return []string{
		"id", "program_id", "applicant_id", "payload", "status",
		"score", "notes", "is_payment_received", "payment_received_at", "created_at",
	}
}

func addApplicationRow(rows *pgxmock.Rows, id int, st models.ApplicationStatus, paid bool) *pgxmock.Rows {
	return rows.AddRow(
		id, 7, 42, map[string]any{"phone": "010-1234-5678"}, st,
		nil, nil, paid, nil, kst(2026, 3, 2, 10),
	)
}

func userColumns() []string {
	return []string{"id", "email", "name", "role", "password_hash", "is_active", "created_at"}
}

func expectProgramFetch(mock pgxmock.PgxPoolIface, id int, st models.ProgramStatus, fee int) {
	mock.ExpectQuery(`FROM programs WHERE id = \$1 AND is_active = true`).
		WithArgs(id).
		WillReturnRows(addProgramRow(pgxmock.NewRows(programColumns()), id, st, fee))
}

// TestApplicationService_Submit_Success runs the full submission
// transaction: window check, identity snapshot, duplicate pre-check,
// and insert.
func TestApplicationService_Submit_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectProgramFetch(mock, 7, models.ProgramApplicationOpen, 5000)
	mock.ExpectQuery(`FROM users WHERE id = \$1 AND is_active = true`).
		WithArgs(42).
		WillReturnRows(pgxmock.NewRows(userColumns()).
			AddRow(42, "minsu@example.com", "Kim Minsu", models.RoleApplicant, "hash", true, kst(2026, 1, 1, 0)))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(7, 42).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO applications`).
		WithArgs(7, 42, pgxmock.AnyArg(), models.ApplicationSubmitted).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(11, kst(2026, 3, 2, 10)))
	mock.ExpectCommit()

	svc := services.NewApplicationService(mock, loggertest.New(t)).
		WithClock(fixedClock(kst(2026, 3, 2, 10)))

	app, err := svc.Submit(context.Background(), 42, &models.SubmitApplicationRequest{
		ProgramID: 7,
		Payload:   map[string]any{"phone": "010-1234-5678"},
	})

	assert.NoError(t, err)
	assert.Equal(t, 11, app.ID)
	assert.Equal(t, models.ApplicationSubmitted, app.Status)

	snapshot, ok := app.Payload["_applicant"].(map[string]any)
	require.True(t, ok, "payload must carry the applicant identity snapshot")
	assert.Equal(t, "Kim Minsu", snapshot["name"])
	assert.Equal(t, "minsu@example.com", snapshot["email"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestApplicationService_Submit_WindowClosed rejects a submission when
// the derived status says applications are no longer open, regardless of
// the stale stored status.
func TestApplicationService_Submit_WindowClosed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectProgramFetch(mock, 7, models.ProgramApplicationOpen, 5000)

	svc := services.NewApplicationService(mock, loggertest.New(t)).
		WithClock(fixedClock(kst(2026, 3, 9, 12))) // after apply_end

	_, err = svc.Submit(context.Background(), 42, &models.SubmitApplicationRequest{ProgramID: 7})

	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestApplicationService_Submit_Duplicate hits the in-transaction
// duplicate pre-check and rolls back without inserting.
func TestApplicationService_Submit_Duplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	expectProgramFetch(mock, 7, models.ProgramApplicationOpen, 5000)
	mock.ExpectQuery(`FROM users WHERE id = \$1 AND is_active = true`).
		WithArgs(42).
		WillReturnRows(pgxmock.NewRows(userColumns()).
			AddRow(42, "minsu@example.com", "Kim Minsu", models.RoleApplicant, "hash", true, kst(2026, 1, 1, 0)))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(7, 42).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	svc := services.NewApplicationService(mock, loggertest.New(t)).
		WithClock(fixedClock(kst(2026, 3, 2, 10)))

	_, err = svc.Submit(context.Background(), 42, &models.SubmitApplicationRequest{ProgramID: 7})

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestApplicationService_Withdraw_Guards covers ownership and the
// terminal-status guard.
func TestApplicationService_Withdraw_Guards(t *testing.T) {
	tests := []struct {
		name     string
		actor    services.Actor
		stored   models.ApplicationStatus
		wantKind apperr.Kind
	}{
		{"someone else's application", services.Actor{ID: 99, Role: models.RoleApplicant}, models.ApplicationSubmitted, apperr.KindForbidden},
		{"already selected", services.Actor{ID: 42, Role: models.RoleApplicant}, models.ApplicationSelected, apperr.KindForbidden},
		{"already rejected", services.Actor{ID: 42, Role: models.RoleApplicant}, models.ApplicationRejected, apperr.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectQuery(`FROM applications WHERE id = \$1`).
				WithArgs(11).
				WillReturnRows(addApplicationRow(pgxmock.NewRows(applicationColumns()), 11, tt.stored, false))

			svc := services.NewApplicationService(mock, loggertest.New(t))
			_, err = svc.Withdraw(context.Background(), tt.actor, 11)

			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestApplicationService_Withdraw_Success moves a submitted application
// to withdrawn.
func TestApplicationService_Withdraw_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM applications WHERE id = \$1`).
		WithArgs(11).
		WillReturnRows(addApplicationRow(pgxmock.NewRows(applicationColumns()), 11, models.ApplicationSubmitted, false))
	mock.ExpectExec(`UPDATE applications SET status = \$1 WHERE id = \$2`).
		WithArgs(models.ApplicationWithdrawn, 11).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	svc := services.NewApplicationService(mock, loggertest.New(t))
	app, err := svc.Withdraw(context.Background(), services.Actor{ID: 42, Role: models.RoleApplicant}, 11)

	assert.NoError(t, err)
	assert.Equal(t, models.ApplicationWithdrawn, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestApplicationService_Review_TerminalConflict rejects re-reviewing a
// decided application.
func TestApplicationService_Review_TerminalConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM applications WHERE id = \$1`).
		WithArgs(11).
		WillReturnRows(addApplicationRow(pgxmock.NewRows(applicationColumns()), 11, models.ApplicationSelected, false))

	svc := services.NewApplicationService(mock, loggertest.New(t))
	_, err = svc.Review(context.Background(), 11, &models.ReviewRequest{Decision: models.ApplicationRejected})

	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestApplicationService_Review_InvalidDecision rejects decisions other
// than selected and rejected before touching the database.
func TestApplicationService_Review_InvalidDecision(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := services.NewApplicationService(mock, loggertest.New(t))
	_, err = svc.Review(context.Background(), 11, &models.ReviewRequest{Decision: models.ApplicationWithdrawn})

	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestApplicationService_TogglePayment_RoundTrip confirms a payment and
// then clears it, checking the revenue side effect runs inside the same
// transaction in both directions.
func TestApplicationService_TogglePayment_RoundTrip(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// Confirm: fee is added.
	mock.ExpectQuery(`FROM applications WHERE id = \$1`).
		WithArgs(11).
		WillReturnRows(addApplicationRow(pgxmock.NewRows(applicationColumns()), 11, models.ApplicationSelected, false))
	expectProgramFetch(mock, 7, models.ProgramInProgress, 5000)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE applications SET is_payment_received = \$1, payment_received_at = \$2 WHERE id = \$3`).
		WithArgs(true, pgxmock.AnyArg(), 11).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE programs SET revenue = revenue \+ \$1 WHERE id = \$2`).
		WithArgs(5000, 7).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	// Clear: fee is subtracted with the zero floor.
	mock.ExpectQuery(`FROM applications WHERE id = \$1`).
		WithArgs(11).
		WillReturnRows(addApplicationRow(pgxmock.NewRows(applicationColumns()), 11, models.ApplicationSelected, true))
	expectProgramFetch(mock, 7, models.ProgramInProgress, 5000)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE applications SET is_payment_received = \$1, payment_received_at = \$2 WHERE id = \$3`).
		WithArgs(false, pgxmock.AnyArg(), 11).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE programs SET revenue = GREATEST\(revenue - \$1, 0\) WHERE id = \$2`).
		WithArgs(5000, 7).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	svc := services.NewApplicationService(mock, loggertest.New(t)).
		WithClock(fixedClock(kst(2026, 3, 15, 10)))

	app, err := svc.TogglePayment(context.Background(), 11, true)
	assert.NoError(t, err)
	assert.True(t, app.IsPaymentReceived)
	assert.NotNil(t, app.PaymentReceivedAt)

	app, err = svc.TogglePayment(context.Background(), 11, false)
	assert.NoError(t, err)
	assert.False(t, app.IsPaymentReceived)
	assert.Nil(t, app.PaymentReceivedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestApplicationService_TogglePayment_Guards covers the selected-only
// rule and the idempotent no-op.
func TestApplicationService_TogglePayment_Guards(t *testing.T) {
	t.Run("not selected", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM applications WHERE id = \$1`).
			WithArgs(11).
			WillReturnRows(addApplicationRow(pgxmock.NewRows(applicationColumns()), 11, models.ApplicationSubmitted, false))

		svc := services.NewApplicationService(mock, loggertest.New(t))
		_, err = svc.TogglePayment(context.Background(), 11, true)

		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no-op when state unchanged", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM applications WHERE id = \$1`).
			WithArgs(11).
			WillReturnRows(addApplicationRow(pgxmock.NewRows(applicationColumns()), 11, models.ApplicationSelected, true))

		svc := services.NewApplicationService(mock, loggertest.New(t))
		app, err := svc.TogglePayment(context.Background(), 11, true)

		assert.NoError(t, err)
		assert.True(t, app.IsPaymentReceived)
		// No Begin expected: nothing was written.
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestApplicationService_Update_ApplicantGuards verifies the
// applicant-side edit rules.
func TestApplicationService_Update_ApplicantGuards(t *testing.T) {
	t.Run("staff-only fields rejected", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM applications WHERE id = \$1`).
			WithArgs(11).
			WillReturnRows(addApplicationRow(pgxmock.NewRows(applicationColumns()), 11, models.ApplicationSubmitted, false))

		score := 50.0
		svc := services.NewApplicationService(mock, loggertest.New(t))
		_, err = svc.Update(context.Background(), services.Actor{ID: 42, Role: models.RoleApplicant}, 11,
			&models.UpdateApplicationRequest{Score: &score})

		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("locked once under review", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM applications WHERE id = \$1`).
			WithArgs(11).
			WillReturnRows(addApplicationRow(pgxmock.NewRows(applicationColumns()), 11, models.ApplicationUnderReview, false))

		svc := services.NewApplicationService(mock, loggertest.New(t))
		_, err = svc.Update(context.Background(), services.Actor{ID: 42, Role: models.RoleApplicant}, 11,
			&models.UpdateApplicationRequest{Payload: map[string]any{"phone": "010-0000-0000"}})

		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestApplicationService_Update_StaffMovesToUnderReview verifies the
// staff transition from submitted into under_review, and the guards
// around it: applicants cannot touch status, decisions cannot be set
// through updates, and terminal applications stay terminal.
func TestApplicationService_Update_StaffMovesToUnderReview(t *testing.T) {
	underReview := models.ApplicationUnderReview

	t.Run("submitted moves to under_review", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM applications WHERE id = \$1`).
			WithArgs(11).
			WillReturnRows(addApplicationRow(pgxmock.NewRows(applicationColumns()), 11, models.ApplicationSubmitted, false))
		mock.ExpectExec(`UPDATE applications SET payload = \$1, score = \$2, notes = \$3, status = \$4 WHERE id = \$5`).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), models.ApplicationUnderReview, 11).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		svc := services.NewApplicationService(mock, loggertest.New(t))
		app, err := svc.Update(context.Background(), services.Actor{ID: 5, Role: models.RoleStaff}, 11,
			&models.UpdateApplicationRequest{Status: &underReview})

		assert.NoError(t, err)
		assert.Equal(t, models.ApplicationUnderReview, app.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("applicant cannot set status", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM applications WHERE id = \$1`).
			WithArgs(11).
			WillReturnRows(addApplicationRow(pgxmock.NewRows(applicationColumns()), 11, models.ApplicationSubmitted, false))

		svc := services.NewApplicationService(mock, loggertest.New(t))
		_, err = svc.Update(context.Background(), services.Actor{ID: 42, Role: models.RoleApplicant}, 11,
			&models.UpdateApplicationRequest{Status: &underReview})

		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("decision through update rejected", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM applications WHERE id = \$1`).
			WithArgs(11).
			WillReturnRows(addApplicationRow(pgxmock.NewRows(applicationColumns()), 11, models.ApplicationSubmitted, false))

		selected := models.ApplicationSelected
		svc := services.NewApplicationService(mock, loggertest.New(t))
		_, err = svc.Update(context.Background(), services.Actor{ID: 5, Role: models.RoleStaff}, 11,
			&models.UpdateApplicationRequest{Status: &selected})

		assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("terminal stays terminal", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM applications WHERE id = \$1`).
			WithArgs(11).
			WillReturnRows(addApplicationRow(pgxmock.NewRows(applicationColumns()), 11, models.ApplicationRejected, false))

		svc := services.NewApplicationService(mock, loggertest.New(t))
		_, err = svc.Update(context.Background(), services.Actor{ID: 5, Role: models.RoleStaff}, 11,
			&models.UpdateApplicationRequest{Status: &underReview})

		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestApplicationService_Review_KeepsStoredScore verifies that a bare
// decision leaves score and notes set earlier by staff untouched, both
// in the database write and in the returned application.
func TestApplicationService_Review_KeepsStoredScore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	score := 88.0
	notes := "strong candidate"
	mock.ExpectQuery(`FROM applications WHERE id = \$1`).
		WithArgs(11).
		WillReturnRows(pgxmock.NewRows(applicationColumns()).AddRow(
			11, 7, 42, map[string]any{"phone": "010-1234-5678"}, models.ApplicationUnderReview,
			&score, &notes, false, nil, kst(2026, 3, 2, 10),
		))
	mock.ExpectExec(`SET status = \$1, score = COALESCE\(\$2, score\), notes = COALESCE\(\$3, notes\)`).
		WithArgs(models.ApplicationSelected, (*float64)(nil), (*string)(nil), 11).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	svc := services.NewApplicationService(mock, loggertest.New(t))
	app, err := svc.Review(context.Background(), 11, &models.ReviewRequest{Decision: models.ApplicationSelected})

	assert.NoError(t, err)
	assert.Equal(t, models.ApplicationSelected, app.Status)
	require.NotNil(t, app.Score)
	assert.Equal(t, 88.0, *app.Score)
	require.NotNil(t, app.Notes)
	assert.Equal(t, "strong candidate", *app.Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
