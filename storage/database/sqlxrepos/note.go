package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/note"
)

type noteRepository struct {
	baseRepository
}

var _ note.Repository = (*noteRepository)(nil) // interface compliance check

func NewNoteRepository(exec core.DBExecutor, driverName string) *noteRepository {
	return &noteRepository{baseRepository: newBase(exec, driverName)}
}

func (repo noteRepository) UpsertNote(ctx context.Context, nt note.Note, exec ...core.DBExecutor) (note.Note, error) {
	exe := repo.getExec(exec)
	q := repo.rebind(`
		INSERT INTO notes (id, user_id, lesson_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, lesson_id) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at`)
	_, err := exe.ExecContext(ctx, q, nt.ID, nt.UserID, nt.LessonID, nt.Content, nt.CreatedAt.UTC(), nt.UpdatedAt.UTC())
	if err != nil {
		return note.Note{}, errors.Wrap(err, "upserting note")
	}
	return repo.GetNote(ctx, nt.UserID, nt.LessonID, exe)
}

func (repo noteRepository) GetNote(ctx context.Context, userID, lessonID string, exec ...core.DBExecutor) (note.Note, error) {
	var nt note.Note
	q := repo.rebind(`
		SELECT id, user_id, lesson_id, content, created_at, updated_at
		FROM notes
		WHERE user_id = ? AND lesson_id = ?`)
	if err := repo.getOne(ctx, repo.getExec(exec), &nt, q, userID, lessonID); err != nil {
		return note.Note{}, trapNoRowsErr(err, note.ErrNotFound, "getting note")
	}
	return nt, nil
}
