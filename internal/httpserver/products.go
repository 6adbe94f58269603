package httpserver

import (
	"net/http"
	"strings"

	productrepo "tshirtshop/internal/repository/product"

	"github.com/gin-gonic/gin"
)

type createProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PriceCents  *int64   `json:"priceCents"`
	ImageURLs   []string `json:"imageUrls"`
}

type updateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"priceCents"`
}

func listProductsHandler(repo productrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := repo.List(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, products, "Products retrieved")
	}
}

func getProductHandler(repo productrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := repo.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("productId")))
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, product, "Product retrieved")
	}
}

func createProductHandler(repo productrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "VALIDATION_ERROR", "invalid request body")
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondBadRequest(c, "VALIDATION_ERROR", "name is required")
			return
		}
		if req.PriceCents == nil || *req.PriceCents < 0 {
			respondBadRequest(c, "VALIDATION_ERROR", "priceCents must be zero or positive")
			return
		}

		product, err := repo.Create(c.Request.Context(), productrepo.CreateProductInput{
			Name:        name,
			Description: strings.TrimSpace(req.Description),
			PriceCents:  *req.PriceCents,
			ImageURLs:   req.ImageURLs,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusCreated, product, "Product created")
	}
}

// updateProductHandler patches catalog fields. Changes apply to carts on their
// next read; existing order lines keep their snapshots.
func updateProductHandler(repo productrepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "VALIDATION_ERROR", "invalid request body")
			return
		}
		if req.Name == nil && req.Description == nil && req.PriceCents == nil {
			respondBadRequest(c, "VALIDATION_ERROR", "nothing to update")
			return
		}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondBadRequest(c, "VALIDATION_ERROR", "name must not be empty")
				return
			}
			req.Name = &name
		}
		if req.PriceCents != nil && *req.PriceCents < 0 {
			respondBadRequest(c, "VALIDATION_ERROR", "priceCents must be zero or positive")
			return
		}

		product, err := repo.Update(c.Request.Context(), strings.TrimSpace(c.Param("productId")), productrepo.UpdateProductInput{
			Name:        req.Name,
			Description: req.Description,
			PriceCents:  req.PriceCents,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respond(c, http.StatusOK, product, "Product updated")
	}
}
