/*
seed.go - Demo data seeding for development and demonstrations

PURPOSE:

	Populates an empty database with a few lecturers, an approver, and
	claims in every lifecycle state, so the API can be exercised
	immediately after a fresh start.

NOTE:

	Seeding is opt-in (the -seed flag on the server binary) and never
	runs as part of normal startup. It is idempotent in the cheap way:
	if any lecturer already exists, it does nothing.

SEE ALSO:
  - cmd/server/main.go: The -seed flag
*/
package api

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/claims-engine/claims"
)

// SeedDemoData loads demo lecturers and claims into an empty store.
func SeedDemoData(ctx context.Context, store claims.TxStore, engine *claims.Engine, log *logrus.Logger) error {
	existing, err := store.ListLecturers(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("database not empty, skipping demo seed")
		return nil
	}

	lecturers := []*claims.Lecturer{
		{FullName: "Alice Morgan", Email: "alice.morgan@example.edu"},
		{FullName: "Ben Okafor", Email: "ben.okafor@example.edu"},
		{FullName: "Carol Nguyen", Email: "carol.nguyen@example.edu"},
	}
	for _, l := range lecturers {
		if err := store.CreateLecturer(ctx, l); err != nil {
			return err
		}
	}

	approver := &claims.Approver{FullName: "Dana Whitfield", Role: "Coordinator", Email: "dana.whitfield@example.edu"}
	if err := store.CreateApprover(ctx, approver); err != nil {
		return err
	}

	// One small claim that auto-approves, one large claim that stays
	// pending, and one that gets rejected.
	submissions := []claims.Submission{
		{LecturerID: lecturers[0].ID, HoursWorked: decimal.NewFromInt(10), HourlyRate: decimal.NewFromInt(45), Notes: "Week 12 tutorials"},
		{LecturerID: lecturers[1].ID, HoursWorked: decimal.NewFromInt(30), HourlyRate: decimal.NewFromInt(60), Notes: "Exam marking"},
		{LecturerID: lecturers[2].ID, HoursWorked: decimal.NewFromInt(25), HourlyRate: decimal.NewFromInt(55), Notes: "Guest lectures"},
	}

	var results []*claims.SubmitResult
	for _, sub := range submissions {
		res, err := engine.Submit(ctx, sub)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	last := results[len(results)-1]
	if !last.AutoApproved {
		if err := engine.Reject(ctx, last.Claim.ID, "No timesheet attached"); err != nil {
			return err
		}
	}

	log.WithField("claims", len(results)).Info("demo data seeded")
	return nil
}
