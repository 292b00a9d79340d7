// Package status implements the program lifecycle status calculator.
// The calculator is a pure function over a program's date fields, its
// stored status, and the current wall-clock time in Korea Standard Time.
package status

import (
	"time"

	"github.com/maeulsoft/programhub/internal/models"
)

// KST is the civil timezone all date comparisons are evaluated in.
// Program dates are entered by village office staff in local time.
var KST = time.FixedZone("KST", 9*60*60)

// Now returns the current time in KST. Services take this as an
// injectable clock so tests can pin the wall clock.
func Now() time.Time {
	return time.Now().In(KST)
}

// Calculate returns the status a program should hold at the given time.
//
// The stored status is first normalized (legacy four-state values are
// mapped to canonical ones at this boundary). Archived is sticky: once a
// program is archived it never auto-transitions. For every other status
// the date-driven rules below are authoritative, first match wins:
//
//  1. now before applyStart            -> before_application
//  2. now within [applyStart,applyEnd] -> application_open
//  3. now after applyEnd, before a set programStart -> in_progress
//  4. now within [programStart,programEnd]          -> in_progress
//  5. now after a set programEnd                    -> completed
//  6. activity dates unset                          -> in_progress
//
// The gap between application close and activity start is deliberately
// in_progress rather than a distinct state.
func Calculate(p *models.Program, now time.Time) models.ProgramStatus {
	current := models.NormalizeProgramStatus(string(p.Status))
	if current == models.ProgramArchived {
		return models.ProgramArchived
	}

	if now.Before(p.ApplyStart) {
		return models.ProgramBeforeApplication
	}
	if !now.After(p.ApplyEnd) {
		return models.ProgramApplicationOpen
	}

	// Application window has closed.
	if p.ProgramStart != nil && now.Before(*p.ProgramStart) {
		return models.ProgramInProgress
	}
	if p.ProgramStart != nil && p.ProgramEnd != nil &&
		!now.Before(*p.ProgramStart) && !now.After(*p.ProgramEnd) {
		return models.ProgramInProgress
	}
	if p.ProgramEnd != nil && now.After(*p.ProgramEnd) {
		return models.ProgramCompleted
	}

	return models.ProgramInProgress
}

// InApplicationWindow reports whether now falls inside the program's
// application window, inclusive on both ends.
func InApplicationWindow(p *models.Program, now time.Time) bool {
	return !now.Before(p.ApplyStart) && !now.After(p.ApplyEnd)
}
