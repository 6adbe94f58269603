package order

import (
	"context"

	"tshirtshop/internal/domain"
	orderrepo "tshirtshop/internal/repository/order"
)

type Service struct {
	repo orderRepo
}

type orderRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatusLocked(ctx context.Context, orderID string, decide orderrepo.TransitionFunc) (*domain.Order, error)
}

func New(repo orderrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus moves the order to target if the transition table allows it
// from the order's current status. The current status is read under the
// repository's row lock, so two concurrent updates cannot both branch off the
// same stale state.
func (s *Service) UpdateStatus(ctx context.Context, orderID, target string) (*domain.Order, error) {
	next, err := domain.ParseOrderStatus(target)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateStatusLocked(ctx, orderID, func(current domain.OrderStatus) (domain.OrderStatus, *string, error) {
		if !current.CanTransitionTo(next) {
			return "", nil, &domain.TransitionError{From: current, To: next}
		}
		return next, nil, nil
	})
}

// Cancel is sugar for transitioning to cancelled.
func (s *Service) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.UpdateStatus(ctx, orderID, string(domain.StatusCancelled))
}

// Refund transitions to refunded. Presented separately from UpdateStatus so
// the refund surface can be gated to paid/shipped/completed sources; the
// table enforces the same set.
func (s *Service) Refund(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.repo.UpdateStatusLocked(ctx, orderID, func(current domain.OrderStatus) (domain.OrderStatus, *string, error) {
		switch current {
		case domain.StatusPaid, domain.StatusShipped, domain.StatusCompleted:
			return domain.StatusRefunded, nil, nil
		default:
			return "", nil, &domain.TransitionError{From: current, To: domain.StatusRefunded}
		}
	})
}

// MarkPaidIfPending confirms payment idempotently: a pending order moves to
// paid recording the payment reference; an already-paid order (webhook retry,
// user refresh after the webhook fired) is returned unchanged. Any other
// state is an illegal transition.
func (s *Service) MarkPaidIfPending(ctx context.Context, orderID, paymentRef string) (*domain.Order, error) {
	return s.repo.UpdateStatusLocked(ctx, orderID, func(current domain.OrderStatus) (domain.OrderStatus, *string, error) {
		switch current {
		case domain.StatusPaid:
			return current, nil, nil
		case domain.StatusPending:
			ref := paymentRef
			return domain.StatusPaid, &ref, nil
		default:
			return "", nil, &domain.TransitionError{From: current, To: domain.StatusPaid}
		}
	})
}
