package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/progress"
)

type progressRepository struct {
	baseRepository
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(exec core.DBExecutor, driverName string) *progressRepository {
	return &progressRepository{baseRepository: newBase(exec, driverName)}
}

func (repo progressRepository) UpsertProgress(ctx context.Context, prg progress.Progress, exec ...core.DBExecutor) (progress.Progress, error) {
	exe := repo.getExec(exec)
	q := repo.rebind(`
		INSERT INTO progress (id, enrollment_id, lesson_id, completed, progress, last_accessed)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (enrollment_id, lesson_id) DO UPDATE SET
			completed = progress.completed OR excluded.completed,
			progress = CASE WHEN progress.completed OR excluded.completed THEN 100 ELSE excluded.progress END,
			last_accessed = excluded.last_accessed`)
	_, err := exe.ExecContext(ctx, q, prg.ID, prg.EnrollmentID, prg.LessonID, prg.Completed, prg.Progress, prg.LastAccessed)
	if err != nil {
		return progress.Progress{}, errors.Wrap(err, "upserting progress")
	}

	var saved progress.Progress
	q = repo.rebind(`
		SELECT id, enrollment_id, lesson_id, completed, progress, last_accessed
		FROM progress
		WHERE enrollment_id = ? AND lesson_id = ?`)
	if err = repo.getOne(ctx, exe, &saved, q, prg.EnrollmentID, prg.LessonID); err != nil {
		return progress.Progress{}, errors.Wrap(err, "getting progress")
	}
	return saved, nil
}

func (repo progressRepository) CountLessons(ctx context.Context, courseID string, exec ...core.DBExecutor) (int, error) {
	q := repo.rebind(`
		SELECT COUNT(*)
		FROM lessons l
		JOIN modules m ON m.id = l.module_id
		WHERE m.course_id = ?`)
	return repo.count(ctx, repo.getExec(exec), q, courseID)
}

func (repo progressRepository) CountCompleted(ctx context.Context, enrollmentID string, exec ...core.DBExecutor) (int, error) {
	q := repo.rebind(`SELECT COUNT(*) FROM progress WHERE enrollment_id = ? AND completed = TRUE`)
	return repo.count(ctx, repo.getExec(exec), q, enrollmentID)
}

func (repo progressRepository) MarkCompleted(ctx context.Context, enrollmentID string, at time.Time, exec ...core.DBExecutor) (bool, error) {
	q := repo.rebind(`UPDATE enrollments SET completed_at = ? WHERE id = ? AND completed_at IS NULL`)
	res, err := repo.getExec(exec).ExecContext(ctx, q, at.UTC(), enrollmentID)
	if err != nil {
		return false, errors.Wrap(err, "completing enrollment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "completing enrollment")
	}
	return n > 0, nil
}

// QueryProgress returns an enrollment's progress records in lesson order.
func (repo progressRepository) QueryProgress(ctx context.Context, enrollmentID string, exec ...core.DBExecutor) ([]progress.Progress, error) {
	prgs := make([]progress.Progress, 0)
	q := repo.rebind(`
		SELECT p.id, p.enrollment_id, p.lesson_id, p.completed, p.progress, p.last_accessed
		FROM progress p
		JOIN lessons l ON l.id = p.lesson_id
		JOIN modules m ON m.id = l.module_id
		WHERE p.enrollment_id = ?
		ORDER BY m.position, l.position`)
	if err := repo.selectAll(ctx, repo.getExec(exec), &prgs, q, enrollmentID); err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	return prgs, nil
}
