package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/quiz"
)

type quizRepository struct {
	baseRepository
}

var _ quiz.Repository = (*quizRepository)(nil) // interface compliance check

func NewQuizRepository(exec core.DBExecutor, driverName string) *quizRepository {
	return &quizRepository{baseRepository: newBase(exec, driverName)}
}

func (repo quizRepository) UpsertResponse(ctx context.Context, resp quiz.Response, exec ...core.DBExecutor) error {
	q := repo.rebind(`
		INSERT INTO quiz_responses (id, user_id, lesson_id, answers_json, score, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, lesson_id) DO UPDATE SET
			answers_json = excluded.answers_json,
			score = excluded.score,
			completed = excluded.completed,
			updated_at = excluded.updated_at`)
	_, err := repo.getExec(exec).ExecContext(
		ctx, q,
		resp.ID, resp.UserID, resp.LessonID, resp.AnswersJSON, resp.Score, resp.Completed,
		resp.CreatedAt.UTC(), resp.UpdatedAt.UTC(),
	)
	return errors.Wrap(err, "upserting quiz response")
}

func (repo quizRepository) GetResponse(ctx context.Context, userID, lessonID string, exec ...core.DBExecutor) (quiz.Response, error) {
	var resp quiz.Response
	q := repo.rebind(`
		SELECT id, user_id, lesson_id, answers_json, score, completed, created_at, updated_at
		FROM quiz_responses
		WHERE user_id = ? AND lesson_id = ?`)
	if err := repo.getOne(ctx, repo.getExec(exec), &resp, q, userID, lessonID); err != nil {
		return quiz.Response{}, trapNoRowsErr(err, quiz.ErrNotFound, "getting quiz response")
	}
	return resp, nil
}

func (repo quizRepository) DeleteResponse(ctx context.Context, userID, lessonID string, exec ...core.DBExecutor) error {
	q := repo.rebind(`DELETE FROM quiz_responses WHERE user_id = ? AND lesson_id = ?`)
	_, err := repo.getExec(exec).ExecContext(ctx, q, userID, lessonID)
	return errors.Wrap(err, "deleting quiz response")
}
