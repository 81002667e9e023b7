package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/product-service/internal/api/dto"
	"github.com/spec-kit/product-service/internal/service"
	"github.com/spec-kit/product-service/internal/validation"
)

// ProductsHandler manages product endpoints.
type ProductsHandler struct {
	products  *service.ProductService
	validator *validation.Validator
}

// NewProductsHandler constructs handler.
func NewProductsHandler(products *service.ProductService, validator *validation.Validator) *ProductsHandler {
	return &ProductsHandler{products: products, validator: validator}
}

// Create POST /api/products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	var req dto.CreateProductRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	product, err := h.products.Create(c.UserContext(), account, service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewProductResponse(product))
}

// List GET /api/products?skip=&limit=.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", service.DefaultListLimit)

	products, err := h.products.List(c.UserContext(), skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProductListResponse(products))
}

// ListMine GET /api/products/user.
func (h *ProductsHandler) ListMine(c *fiber.Ctx) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	products, err := h.products.ListByOwner(c.UserContext(), account)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProductListResponse(products))
}

// Get GET /api/products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	product, err := h.products.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProductResponse(product))
}

// Update PUT /api/products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProductRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	product, err := h.products.Update(c.UserContext(), account, c.Params("id"), service.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProductResponse(product))
}

// Delete DELETE /api/products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	if err := h.products.Delete(c.UserContext(), account, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
