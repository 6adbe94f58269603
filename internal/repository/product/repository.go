package product

import (
	"context"

	"tshirtshop/internal/domain"
)

type CreateProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	ImageURLs   []string
}

type UpdateProductInput struct {
	Name        *string
	Description *string
	PriceCents  *int64
}

type Repository interface {
	List(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in UpdateProductInput) (*domain.Product, error)
}
