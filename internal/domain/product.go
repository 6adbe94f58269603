package domain

import "time"

type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	PriceCents  int64          `json:"priceCents"`
	Images      []ProductImage `json:"images,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type ProductImage struct {
	ID        string `json:"id"`
	ProductID string `json:"-"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"isPrimary"`
}

// PrimaryImageURL returns the primary image URL, falling back to the first
// image. Nil when the product has no images.
func (p Product) PrimaryImageURL() *string {
	var first *string
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i].URL
		}
		if first == nil {
			first = &p.Images[i].URL
		}
	}
	return first
}
