package cart

import (
	"context"
	"errors"

	"tshirtshop/internal/domain"
	cartrepo "tshirtshop/internal/repository/cart"
	productrepo "tshirtshop/internal/repository/product"
)

type Service struct {
	repo     cartRepo
	products productRepo
}

type cartRepo interface {
	Create(ctx context.Context, userID *string) (*domain.Cart, error)
	GetByID(ctx context.Context, id string) (*domain.Cart, error)
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertLine(ctx context.Context, cartID, productID string, delta int) error
	SetLineQuantity(ctx context.Context, cartID, productID string, quantity int) error
	DeleteLine(ctx context.Context, cartID, productID string) error
	AdoptGuest(ctx context.Context, cartID, userID string) error
	MergeInto(ctx context.Context, userCartID, guestCartID string) error
	Clear(ctx context.Context, cartID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartrepo.Repository, products productrepo.Repository) *Service {
	return &Service{repo: repo, products: products}
}

// Get returns the cart by its explicit id, ErrCartNotFound when it does not
// exist. Callers holding a required reference use this, not GetOrCreate.
func (s *Service) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	return s.repo.GetByID(ctx, cartID)
}

// GetOrCreate resolves the caller's cart. Guests are identified by the opaque
// cart id they supply; authenticated callers by their user id. A missing or
// absent id never fails: a fresh cart is created instead. When an
// authenticated request also carries a guest cart id, the guest cart is
// merged in first (see MergeGuestCart).
func (s *Service) GetOrCreate(ctx context.Context, guestCartID string, userID *string) (*domain.Cart, error) {
	if userID == nil {
		if guestCartID != "" {
			cart, err := s.repo.GetByID(ctx, guestCartID)
			if err == nil {
				return cart, nil
			}
			if !errors.Is(err, domain.ErrCartNotFound) {
				return nil, err
			}
		}
		return s.repo.Create(ctx, nil)
	}

	if guestCartID != "" {
		if cart, err := s.MergeGuestCart(ctx, guestCartID, *userID); err != nil || cart != nil {
			return cart, err
		}
	}

	cart, err := s.repo.GetByUser(ctx, *userID)
	if errors.Is(err, domain.ErrCartNotFound) {
		return s.repo.Create(ctx, userID)
	}
	return cart, err
}

// MergeGuestCart combines a guest cart into the authenticated user's cart:
//   - guest cart gone: no-op, treated as already merged (nil, nil)
//   - guest cart already owned by a user: never merged; the user's own cart
//     is used instead (nil, nil unless it is the user's own cart)
//   - user has no cart yet: the guest cart is adopted wholesale
//   - otherwise: line quantities are folded into the user cart and the guest
//     cart is discarded
//
// Safe to invoke twice concurrently; the loser of the race sees the guest
// cart as gone and no-ops.
func (s *Service) MergeGuestCart(ctx context.Context, guestCartID, userID string) (*domain.Cart, error) {
	guest, err := s.repo.GetByID(ctx, guestCartID)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if guest.UserID != nil {
		if *guest.UserID == userID {
			return guest, nil
		}
		return nil, nil
	}

	userCart, err := s.repo.GetByUser(ctx, userID)
	if errors.Is(err, domain.ErrCartNotFound) {
		if err := s.repo.AdoptGuest(ctx, guestCartID, userID); err != nil {
			if errors.Is(err, domain.ErrCartNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return s.repo.GetByID(ctx, guestCartID)
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.MergeInto(ctx, userCart.ID, guestCartID); err != nil && !errors.Is(err, domain.ErrCartNotFound) {
		return nil, err
	}
	return s.repo.GetByID(ctx, userCart.ID)
}

// AddItem adds quantity of a product to the cart, incrementing the existing
// line rather than duplicating it. Quantities below 1 are clamped to 1.
func (s *Service) AddItem(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	if _, err := s.repo.GetByID(ctx, cartID); err != nil {
		return nil, err
	}
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.repo.UpsertLine(ctx, cartID, productID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cartID)
}

// UpdateQuantity overwrites the line's quantity. Zero removes the line, which
// must still exist.
func (s *Service) UpdateQuantity(ctx context.Context, cartID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return s.RemoveItem(ctx, cartID, productID)
	}
	if _, err := s.repo.GetByID(ctx, cartID); err != nil {
		return nil, err
	}
	if err := s.repo.SetLineQuantity(ctx, cartID, productID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cartID)
}

func (s *Service) RemoveItem(ctx context.Context, cartID, productID string) (*domain.Cart, error) {
	if _, err := s.repo.GetByID(ctx, cartID); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteLine(ctx, cartID, productID); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, cartID)
}

// Clear removes every line from the cart. The cart itself survives.
func (s *Service) Clear(ctx context.Context, cartID string) error {
	if _, err := s.repo.GetByID(ctx, cartID); err != nil {
		return err
	}
	return s.repo.Clear(ctx, cartID)
}
