package note

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/catalog"
	"github.com/trezcool/darasa/core/identity"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("note not found")
)

type Note struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	LessonID  string    `json:"lesson_id" db:"lesson_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

type (
	Repository interface {
		// UpsertNote creates or replaces the content of the user's note on a lesson.
		UpsertNote(ctx context.Context, nt Note, exec ...core.DBExecutor) (Note, error)
		GetNote(ctx context.Context, userID, lessonID string, exec ...core.DBExecutor) (Note, error)
	}

	LessonGetter interface {
		GetLesson(ctx context.Context, id string) (catalog.Lesson, error)
	}

	Service struct {
		repo    Repository
		lessons LessonGetter
	}
)

func NewService(repo Repository, lessons LessonGetter) *Service {
	return &Service{repo: repo, lessons: lessons}
}

// SaveNote stores the actor's note on a lesson. Empty content is kept as an empty note.
func (svc *Service) SaveNote(ctx context.Context, actor *identity.Actor, lessonID, content string) (Note, error) {
	act, err := identity.RequireActor(actor)
	if err != nil {
		return Note{}, err
	}
	if _, err = svc.lessons.GetLesson(ctx, lessonID); err != nil {
		return Note{}, err
	}

	now := time.Now().UTC()
	return svc.repo.UpsertNote(ctx, Note{
		ID:        uuid.New().String(),
		UserID:    act.ID,
		LessonID:  lessonID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// GetNote returns the actor's note on a lesson, nil when there is none.
func (svc *Service) GetNote(ctx context.Context, actor *identity.Actor, lessonID string) (*Note, error) {
	act, err := identity.RequireActor(actor)
	if err != nil {
		return nil, err
	}
	nt, err := svc.repo.GetNote(ctx, act.ID, lessonID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &nt, nil
}
