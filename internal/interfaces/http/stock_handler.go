package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/compras-api/internal/application/dto"
	"github.com/jhoicas/compras-api/internal/domain/entity"
	"github.com/jhoicas/compras-api/pkg/logger"
)

// StockLedger operaciones del libro de stock (lo implementa *inventory.StockLedger).
type StockLedger interface {
	Get(ctx context.Context, productID, warehouseID string) (*entity.Stock, error)
	Create(ctx context.Context, productID, warehouseID string, quantity int) (*entity.Stock, error)
	SetQuantity(ctx context.Context, productID, warehouseID string, quantity int) (*entity.Stock, error)
	Adjust(ctx context.Context, warehouseID, productID string, delta int) (*entity.Stock, error)
}

// StockHandler maneja /api/stock.
type StockHandler struct {
	ledger   StockLedger
	validate *requestValidator
	log      *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger StockLedger, log *logger.Logger) *StockHandler {
	return &StockHandler{ledger: ledger, validate: newRequestValidator(), log: log.Component("stock")}
}

// Get godoc
// @Summary      Stock de un producto en una bodega
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        producto  path  string  true  "id del producto"
// @Param        bodega    path  string  true  "id de la bodega"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{producto}/{bodega} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	s, err := h.ledger.Get(c.UserContext(), c.Params("producto"), c.Params("bodega"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	if s == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "no hay stock para el producto en la bodega"})
	}
	return c.JSON(toStockResponse(s))
}

// Create godoc
// @Summary      Registrar stock inicial
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockRequest  true  "idProducto, idBodega, cantidad"
// @Success      201   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock [post]
func (h *StockHandler) Create(c *fiber.Ctx) error {
	var in dto.StockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return writeError(c, h.log, err)
	}
	s, err := h.ledger.Create(c.UserContext(), in.ProductID, in.WarehouseID, *in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockResponse(s))
}

// SetQuantity godoc
// @Summary      Sobrescribir cantidad de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockRequest  true  "idProducto, idBodega, cantidad"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock [put]
func (h *StockHandler) SetQuantity(c *fiber.Ctx) error {
	var in dto.StockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return writeError(c, h.log, err)
	}
	s, err := h.ledger.SetQuantity(c.UserContext(), in.ProductID, in.WarehouseID, *in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if s == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "no hay stock para el producto en la bodega"})
	}
	return c.JSON(toStockResponse(s))
}

// Adjust godoc
// @Summary      Ajustar stock (suma con signo)
// @Description  Crea la fila si no existe. La cantidad puede quedar negativa.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockAdjustRequest  true  "idProducto, idBodega, delta"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/ajustes [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.StockAdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return writeError(c, h.log, err)
	}
	s, err := h.ledger.Adjust(c.UserContext(), in.WarehouseID, in.ProductID, *in.Delta)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toStockResponse(s))
}

func toStockResponse(s *entity.Stock) dto.StockResponse {
	return dto.StockResponse{
		ID:          s.ID,
		ProductID:   s.ProductID,
		WarehouseID: s.WarehouseID,
		Quantity:    s.Quantity,
		UpdatedAt:   s.UpdatedAt,
	}
}
