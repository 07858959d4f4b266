package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/payment"
)

type paymentRepository struct {
	baseRepository
}

var _ payment.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(exec core.DBExecutor, driverName string) *paymentRepository {
	return &paymentRepository{baseRepository: newBase(exec, driverName)}
}

func (repo paymentRepository) CreatePayment(ctx context.Context, p payment.Payment, exec ...core.DBExecutor) (bool, error) {
	q := repo.rebind(`
		INSERT INTO payments (id, user_id, course_id, provider_ref, amount_cents, currency, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider_ref) DO NOTHING`)
	res, err := repo.getExec(exec).ExecContext(
		ctx, q,
		p.ID, p.UserID, p.CourseID, p.ProviderRef, p.AmountCents, p.Currency, p.Status, p.CreatedAt.UTC(),
	)
	if err != nil {
		return false, errors.Wrap(err, "inserting payment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "inserting payment")
	}
	return n > 0, nil
}

func (repo paymentRepository) HasSucceededPayment(ctx context.Context, userID, courseID string, exec ...core.DBExecutor) (bool, error) {
	q := repo.rebind(`SELECT COUNT(*) FROM payments WHERE user_id = ? AND course_id = ? AND status = ?`)
	n, err := repo.count(ctx, repo.getExec(exec), q, userID, courseID, payment.StatusSucceeded)
	if err != nil {
		return false, errors.Wrap(err, "checking payments")
	}
	return n > 0, nil
}
