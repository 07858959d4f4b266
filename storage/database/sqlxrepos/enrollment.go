package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/enrollment"
)

const enrollmentColumns = `e.id, e.user_id, e.course_id, e.enrolled_at, e.completed_at`

// summaryQuery lists enrollments with their course and lesson counts.
const summaryQuery = `
	SELECT ` + enrollmentColumns + `,
		c.slug AS course_slug,
		c.title AS course_title,
		u.name AS user_name,
		u.email AS user_email,
		(SELECT COUNT(*) FROM lessons l JOIN modules m ON m.id = l.module_id WHERE m.course_id = e.course_id) AS total_lessons,
		(SELECT COUNT(*) FROM progress p WHERE p.enrollment_id = e.id AND p.completed = TRUE) AS completed_lessons
	FROM enrollments e
	JOIN courses c ON c.id = e.course_id
	JOIN users u ON u.id = e.user_id`

type enrollmentRepository struct {
	baseRepository
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(exec core.DBExecutor, driverName string) *enrollmentRepository {
	return &enrollmentRepository{baseRepository: newBase(exec, driverName)}
}

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment, exec ...core.DBExecutor) (bool, error) {
	q := repo.rebind(`
		INSERT INTO enrollments (id, user_id, course_id, enrolled_at, completed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, course_id) DO NOTHING`)
	res, err := repo.getExec(exec).ExecContext(ctx, q, enr.ID, enr.UserID, enr.CourseID, enr.EnrolledAt.UTC(), enr.CompletedAt)
	if err != nil {
		return false, errors.Wrap(err, "inserting enrollment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "inserting enrollment")
	}
	return n > 0, nil
}

func (repo enrollmentRepository) GetEnrollment(ctx context.Context, userID, courseID string, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	var enr enrollment.Enrollment
	q := repo.rebind(`SELECT ` + enrollmentColumns + ` FROM enrollments e WHERE e.user_id = ? AND e.course_id = ?`)
	if err := repo.getOne(ctx, repo.getExec(exec), &enr, q, userID, courseID); err != nil {
		return enrollment.Enrollment{}, trapNoRowsErr(err, enrollment.ErrNotFound, "getting enrollment")
	}
	return enr, nil
}

func (repo enrollmentRepository) QueryEnrollments(ctx context.Context, userID string, exec ...core.DBExecutor) ([]enrollment.Summary, error) {
	sums := make([]enrollment.Summary, 0)
	q := repo.rebind(summaryQuery + ` WHERE e.user_id = ? ORDER BY e.enrolled_at DESC, c.title`)
	if err := repo.selectAll(ctx, repo.getExec(exec), &sums, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	return sums, nil
}

func (repo enrollmentRepository) QueryCourseEnrollments(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]enrollment.Summary, error) {
	sums := make([]enrollment.Summary, 0)
	q := repo.rebind(summaryQuery + ` WHERE e.course_id = ? ORDER BY e.enrolled_at DESC, u.name`)
	if err := repo.selectAll(ctx, repo.getExec(exec), &sums, q, courseID); err != nil {
		return nil, errors.Wrap(err, "querying course enrollments")
	}
	return sums, nil
}

func (repo enrollmentRepository) SeedProgress(ctx context.Context, enrollmentID string, lessonIDs []string, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)
	q := repo.rebind(`
		INSERT INTO progress (id, enrollment_id, lesson_id, completed, progress, last_accessed)
		VALUES (?, ?, ?, FALSE, 0, NULL)
		ON CONFLICT (enrollment_id, lesson_id) DO NOTHING`)
	for _, lessonID := range lessonIDs {
		if _, err := exe.ExecContext(ctx, q, uuid.New().String(), enrollmentID, lessonID); err != nil {
			return errors.Wrap(err, "seeding progress")
		}
	}
	return nil
}
