package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/catalog"
)

const (
	courseColumns = `c.id, c.slug, c.title, c.description, c.price_cents, c.currency, c.is_published, c.created_at, c.updated_at`
	lessonColumns = `l.id, l.module_id, l.position, l.title, l.type, l.content_url, l.body, l.duration_seconds`
)

type catalogRepository struct {
	baseRepository
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(exec core.DBExecutor, driverName string) *catalogRepository {
	return &catalogRepository{baseRepository: newBase(exec, driverName)}
}

func (repo catalogRepository) CheckSlugUniqueness(ctx context.Context, slug string, exec ...core.DBExecutor) error {
	n, err := repo.count(ctx, repo.getExec(exec), repo.rebind(`SELECT COUNT(*) FROM courses WHERE slug = ?`), slug)
	if err != nil {
		return errors.Wrap(err, "checking slug uniqueness")
	}
	if n > 0 {
		return catalog.ErrSlugExists
	}
	return nil
}

// CreateCourse inserts the course and its whole content tree. exec should be a transaction.
func (repo catalogRepository) CreateCourse(ctx context.Context, course catalog.Course, exec ...core.DBExecutor) error {
	exe := repo.getExec(exec)

	_, err := exe.ExecContext(ctx, repo.rebind(`
		INSERT INTO courses (id, slug, title, description, price_cents, currency, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		course.ID, course.Slug, course.Title, course.Description, course.PriceCents, course.Currency,
		course.IsPublished, course.CreatedAt.UTC(), course.UpdatedAt.UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "inserting course")
	}

	insertModule := repo.rebind(`INSERT INTO modules (id, course_id, position, title) VALUES (?, ?, ?, ?)`)
	insertLesson := repo.rebind(`
		INSERT INTO lessons (id, module_id, position, title, type, content_url, body, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	insertQuestion := repo.rebind(`INSERT INTO quiz_questions (id, lesson_id, position, prompt) VALUES (?, ?, ?, ?)`)
	insertOption := repo.rebind(`
		INSERT INTO quiz_options (id, question_id, position, label, is_correct) VALUES (?, ?, ?, ?, ?)`)

	for _, mod := range course.Modules {
		if _, err = exe.ExecContext(ctx, insertModule, mod.ID, course.ID, mod.Position, mod.Title); err != nil {
			return errors.Wrap(err, "inserting module")
		}
		for _, lsn := range mod.Lessons {
			_, err = exe.ExecContext(
				ctx, insertLesson,
				lsn.ID, mod.ID, lsn.Position, lsn.Title, lsn.Type, lsn.ContentURL, lsn.Body, lsn.DurationSeconds,
			)
			if err != nil {
				return errors.Wrap(err, "inserting lesson")
			}
			for _, qst := range lsn.Questions {
				if _, err = exe.ExecContext(ctx, insertQuestion, qst.ID, lsn.ID, qst.Position, qst.Prompt); err != nil {
					return errors.Wrap(err, "inserting question")
				}
				for _, opt := range qst.Options {
					_, err = exe.ExecContext(ctx, insertOption, opt.ID, qst.ID, opt.Position, opt.Label, opt.IsCorrect)
					if err != nil {
						return errors.Wrap(err, "inserting option")
					}
				}
			}
		}
	}
	return nil
}

func (repo catalogRepository) QueryCourses(ctx context.Context, publishedOnly bool, exec ...core.DBExecutor) ([]catalog.Course, error) {
	q := `SELECT ` + courseColumns + ` FROM courses c`
	if publishedOnly {
		q += ` WHERE c.is_published = TRUE`
	}
	q += ` ORDER BY c.created_at DESC, c.title`

	courses := make([]catalog.Course, 0)
	if err := repo.selectAll(ctx, repo.getExec(exec), &courses, q); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return courses, nil
}

func (repo catalogRepository) GetCourse(ctx context.Context, filter catalog.GetFilter, exec ...core.DBExecutor) (catalog.Course, error) {
	q := `SELECT ` + courseColumns + ` FROM courses c WHERE `
	var arg string
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return catalog.Course{}, catalog.ErrCourseNotFound
		}
		q += `c.id = ?`
		arg = filter.ID
	case filter.Slug != "":
		q += `c.slug = ?`
		arg = filter.Slug
	default:
		return catalog.Course{}, catalog.ErrCourseNotFound
	}

	var course catalog.Course
	if err := repo.getOne(ctx, repo.getExec(exec), &course, repo.rebind(q), arg); err != nil {
		return catalog.Course{}, trapNoRowsErr(err, catalog.ErrCourseNotFound, "getting course")
	}
	return course, nil
}

func (repo catalogRepository) GetLessonCourse(ctx context.Context, lessonID string, exec ...core.DBExecutor) (catalog.Course, error) {
	if _, err := uuid.Parse(lessonID); err != nil {
		return catalog.Course{}, catalog.ErrLessonNotFound
	}
	q := repo.rebind(`
		SELECT ` + courseColumns + `
		FROM courses c
		JOIN modules m ON m.course_id = c.id
		JOIN lessons l ON l.module_id = m.id
		WHERE l.id = ?`)

	var course catalog.Course
	if err := repo.getOne(ctx, repo.getExec(exec), &course, q, lessonID); err != nil {
		return catalog.Course{}, trapNoRowsErr(err, catalog.ErrLessonNotFound, "getting lesson course")
	}
	return course, nil
}

// QueryModules returns the modules of a course with their lessons, in order.
func (repo catalogRepository) QueryModules(ctx context.Context, courseID string, exec ...core.DBExecutor) ([]catalog.Module, error) {
	exe := repo.getExec(exec)

	mods := make([]catalog.Module, 0)
	q := repo.rebind(`SELECT id, course_id, position, title FROM modules WHERE course_id = ? ORDER BY position`)
	if err := repo.selectAll(ctx, exe, &mods, q, courseID); err != nil {
		return nil, errors.Wrap(err, "querying modules")
	}

	var lessons []catalog.Lesson
	q = repo.rebind(`
		SELECT ` + lessonColumns + `
		FROM lessons l
		JOIN modules m ON m.id = l.module_id
		WHERE m.course_id = ?
		ORDER BY m.position, l.position`)
	if err := repo.selectAll(ctx, exe, &lessons, q, courseID); err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}

	idx := make(map[string]int, len(mods))
	for i := range mods {
		mods[i].Lessons = make([]catalog.Lesson, 0)
		idx[mods[i].ID] = i
	}
	for _, lsn := range lessons {
		if i, ok := idx[lsn.ModuleID]; ok {
			mods[i].Lessons = append(mods[i].Lessons, lsn)
		}
	}
	return mods, nil
}

func (repo catalogRepository) GetLesson(ctx context.Context, id string, exec ...core.DBExecutor) (catalog.Lesson, error) {
	if _, err := uuid.Parse(id); err != nil {
		return catalog.Lesson{}, catalog.ErrLessonNotFound
	}
	var lsn catalog.Lesson
	q := repo.rebind(`SELECT ` + lessonColumns + ` FROM lessons l WHERE l.id = ?`)
	if err := repo.getOne(ctx, repo.getExec(exec), &lsn, q, id); err != nil {
		return catalog.Lesson{}, trapNoRowsErr(err, catalog.ErrLessonNotFound, "getting lesson")
	}
	return lsn, nil
}

// QueryQuestions returns the questions of a lesson with their options, in order.
func (repo catalogRepository) QueryQuestions(ctx context.Context, lessonID string, exec ...core.DBExecutor) ([]catalog.Question, error) {
	exe := repo.getExec(exec)

	qsts := make([]catalog.Question, 0)
	q := repo.rebind(`SELECT id, lesson_id, position, prompt FROM quiz_questions WHERE lesson_id = ? ORDER BY position`)
	if err := repo.selectAll(ctx, exe, &qsts, q, lessonID); err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	if len(qsts) == 0 {
		return qsts, nil
	}

	idx := make(map[string]int, len(qsts))
	ids := make([]string, 0, len(qsts))
	for i, qst := range qsts {
		idx[qst.ID] = i
		ids = append(ids, qst.ID)
	}

	q, args, err := repo.in(`
		SELECT id, question_id, position, label, is_correct
		FROM quiz_options
		WHERE question_id IN (?)
		ORDER BY position`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "querying options")
	}
	var opts []catalog.Option
	if err = repo.selectAll(ctx, exe, &opts, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying options")
	}
	for _, opt := range opts {
		i := idx[opt.QuestionID]
		qsts[i].Options = append(qsts[i].Options, opt)
	}
	return qsts, nil
}

func (repo catalogRepository) SetPublished(ctx context.Context, courseID string, published bool, updatedAt time.Time, exec ...core.DBExecutor) error {
	if _, err := uuid.Parse(courseID); err != nil {
		return catalog.ErrCourseNotFound
	}
	res, err := repo.getExec(exec).ExecContext(
		ctx, repo.rebind(`UPDATE courses SET is_published = ?, updated_at = ? WHERE id = ?`),
		published, updatedAt.UTC(), courseID,
	)
	if err != nil {
		return errors.Wrap(err, "publishing course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return catalog.ErrCourseNotFound
	}
	return nil
}
