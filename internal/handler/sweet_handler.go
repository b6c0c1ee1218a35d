package handler

import (
	"context"

	"sweet-shop-api/internal/apperror"
	"sweet-shop-api/internal/middleware"
	"sweet-shop-api/internal/model"
	"sweet-shop-api/internal/policy"
	"sweet-shop-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SweetHandler struct {
	catalog   service.CatalogService
	inventory service.InventoryService
}

func NewSweetHandler(catalog service.CatalogService, inventory service.InventoryService) *SweetHandler {
	return &SweetHandler{catalog: catalog, inventory: inventory}
}

// QuantityRequest is the body of purchase and restock.
type QuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// StockResponse is returned by purchase and restock.
type StockResponse struct {
	Message string              `json:"message"`
	Sweet   model.SweetResponse `json:"sweet"`
}

// A malformed id can never name a sweet, so it is reported as not found.
func sweetID(c *fiber.Ctx) (uuid.UUID, error) {
	raw := c.Params("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.NotFound("Sweet", raw)
	}
	return id, nil
}

// bindFor decodes the body of a request aimed at one sweet. A body that does
// not decode is reported only once the sweet is known to exist.
func (h *SweetHandler) bindFor(c *fiber.Ctx, id uuid.UUID, out interface{}) error {
	err := bind(c, out)
	if err == nil {
		return nil
	}
	if _, lookupErr := h.catalog.Get(c.UserContext(), id); lookupErr != nil {
		return lookupErr
	}
	return err
}

// GET /api/sweets
func (h *SweetHandler) List(c *fiber.Ctx) error {
	sweets, err := h.catalog.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(model.ToSweetResponses(sweets))
}

// GET /api/sweets/search?name=&category=&min_price=&max_price=
func (h *SweetHandler) Search(c *fiber.Ctx) error {
	sweets, err := h.catalog.Search(c.UserContext(), service.SearchParams{
		Name:     c.Query("name"),
		Category: c.Query("category"),
		MinPrice: c.Query("min_price"),
		MaxPrice: c.Query("max_price"),
	})
	if err != nil {
		return err
	}
	return c.JSON(model.ToSweetResponses(sweets))
}

// GET /api/sweets/:id
func (h *SweetHandler) Get(c *fiber.Ctx) error {
	id, err := sweetID(c)
	if err != nil {
		return err
	}
	sweet, err := h.catalog.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(sweet.ToResponse())
}

// POST /api/sweets
func (h *SweetHandler) Create(c *fiber.Ctx) error {
	var in service.SweetInput
	if err := bind(c, &in); err != nil {
		return err
	}
	sweet, err := h.catalog.Create(c.UserContext(), middleware.CallerFrom(c), &in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sweet.ToResponse())
}

// PUT /api/sweets/:id
func (h *SweetHandler) Replace(c *fiber.Ctx) error {
	return h.update(c, h.catalog.Replace)
}

// PATCH /api/sweets/:id
func (h *SweetHandler) Patch(c *fiber.Ctx) error {
	return h.update(c, h.catalog.Patch)
}

type updateFunc func(ctx context.Context, caller *policy.Caller, id uuid.UUID, in *service.SweetInput) (*model.Sweet, error)

func (h *SweetHandler) update(c *fiber.Ctx, apply updateFunc) error {
	id, err := sweetID(c)
	if err != nil {
		return err
	}
	var in service.SweetInput
	if err := h.bindFor(c, id, &in); err != nil {
		return err
	}
	sweet, err := apply(c.UserContext(), middleware.CallerFrom(c), id, &in)
	if err != nil {
		return err
	}
	return c.JSON(sweet.ToResponse())
}

// DELETE /api/sweets/:id
func (h *SweetHandler) Delete(c *fiber.Ctx) error {
	id, err := sweetID(c)
	if err != nil {
		return err
	}
	if err := h.catalog.Delete(c.UserContext(), middleware.CallerFrom(c), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// POST /api/sweets/:id/purchase
func (h *SweetHandler) Purchase(c *fiber.Ctx) error {
	id, err := sweetID(c)
	if err != nil {
		return err
	}
	var req QuantityRequest
	if err := h.bindFor(c, id, &req); err != nil {
		return err
	}
	quantity := service.DefaultPurchaseQuantity
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	receipt, err := h.inventory.Purchase(c.UserContext(), middleware.CallerFrom(c), id, quantity)
	if err != nil {
		return err
	}
	return c.JSON(StockResponse{Message: receipt.Message, Sweet: receipt.Sweet.ToResponse()})
}

// POST /api/sweets/:id/restock
func (h *SweetHandler) Restock(c *fiber.Ctx) error {
	id, err := sweetID(c)
	if err != nil {
		return err
	}
	var req QuantityRequest
	if err := h.bindFor(c, id, &req); err != nil {
		return err
	}
	// No default: a missing quantity fails the >= 1 check
	quantity := 0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	receipt, err := h.inventory.Restock(c.UserContext(), middleware.CallerFrom(c), id, quantity)
	if err != nil {
		return err
	}
	return c.JSON(StockResponse{Message: receipt.Message, Sweet: receipt.Sweet.ToResponse()})
}
