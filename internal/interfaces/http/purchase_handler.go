package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/compras-api/internal/application/dto"
	"github.com/jhoicas/compras-api/pkg/logger"
)

// PurchaseCommands operaciones de escritura sobre compras (lo implementa *purchase.UseCase).
type PurchaseCommands interface {
	Create(ctx context.Context, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error)
	Update(ctx context.Context, id string, in dto.UpdatePurchaseRequest) (*dto.PurchaseResponse, error)
	Void(ctx context.Context, id string) (*dto.PurchaseResponse, error)
}

// PurchaseQueries lecturas de compras (lo implementa *purchase.QueryService).
type PurchaseQueries interface {
	GetByRef(ctx context.Context, ref string) (*dto.PurchaseFormatted, error)
	List(ctx context.Context, q dto.PurchaseListQuery) (*dto.PurchaseListResponse, error)
}

// PurchaseReceipts comprobante PDF (lo implementa *purchase.ReceiptService).
type PurchaseReceipts interface {
	Receipt(ctx context.Context, ref string) ([]byte, string, error)
}

// PurchaseHandler maneja /api/compras.
type PurchaseHandler struct {
	commands PurchaseCommands
	queries  PurchaseQueries
	receipts PurchaseReceipts
	validate *requestValidator
	log      *logger.Logger
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(commands PurchaseCommands, queries PurchaseQueries, receipts PurchaseReceipts, log *logger.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		commands: commands,
		queries:  queries,
		receipts: receipts,
		validate: newRequestValidator(),
		log:      log.Component("compras"),
	}
}

// Create godoc
// @Summary      Registrar compra
// @Description  Crea la cabecera, un lote por detalle y suma las cantidades al stock en una sola transacción.
// @Description  El empleado se toma del token; id_Empleado en el body se ignora.
// @Tags         compras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "idProveedor, fecha, detalles[], total y observacion opcionales"
// @Success      201   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/compras [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.EmployeeID = GetUserID(c)
	if err := h.validate.Struct(in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.commands.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar compras
// @Description  Filtra, ordena y pagina cabeceras. Una página fuera de rango responde 200 con status "error".
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        page                 query  int     false  "Página (1)"
// @Param        size                 query  int     false  "Tamaño (10, máx 100)"
// @Param        sortBy               query  string  false  "fecha | numeroFactura | total | estado | createdAt"
// @Param        sortOrder            query  string  false  "asc | desc"
// @Param        idProveedor          query  string  false  "Proveedor"
// @Param        empleado             query  string  false  "Id o nombre del empleado"
// @Param        fecha                query  string  false  "YYYY-MM-DD"
// @Param        estado               query  string  false  "pending | processed | anulated | canceled"
// @Param        producto             query  string  false  "Id o nombre de producto en algún detalle"
// @Param        bodega               query  string  false  "Id o nombre de bodega en algún detalle"
// @Param        numeroFacturaCompra  query  string  false  "Número de documento (contiene)"
// @Success      200  {object}  dto.PurchaseListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/compras [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	var q dto.PurchaseListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de consulta inválidos"})
	}
	q.Defaults()
	if err := h.validate.Struct(q); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.queries.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByRef godoc
// @Summary      Consultar compra
// @Description  Acepta el id interno o el número de documento. Incluye nombres de proveedor, empleado, producto y bodega.
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "id o numeroFactura"
// @Success      200  {object}  dto.PurchaseFormatted
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/compras/{id} [get]
func (h *PurchaseHandler) GetByRef(c *fiber.Ctx) error {
	ref := strings.TrimSpace(c.Params("id"))
	out, err := h.queries.GetByRef(c.UserContext(), ref)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "compra no encontrada"})
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Comprobante PDF de la compra
// @Tags         compras
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "id o numeroFactura"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/compras/{id}/pdf [get]
func (h *PurchaseHandler) Receipt(c *fiber.Ctx) error {
	doc, name, err := h.receipts.Receipt(c.UserContext(), strings.TrimSpace(c.Params("id")))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+name+`"`)
	return c.Send(doc)
}

// Update godoc
// @Summary      Actualizar compra
// @Description  Solo se escriben los campos enviados. Los detalles se emparejan por (idProducto, idBodega) y el stock
// @Description  se corrige por la diferencia; eliminarLotes borra lotes no facturados y revierte su stock.
// @Tags         compras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "id de la compra"
// @Param        body  body  dto.UpdatePurchaseRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/compras/{id} [patch]
func (h *PurchaseHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.commands.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Void godoc
// @Summary      Anular compra
// @Description  Marca la compra como anulada y resta del stock la cantidad de cada lote. Falla si algún lote ya se facturó.
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "id de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/compras/{id} [delete]
func (h *PurchaseHandler) Void(c *fiber.Ctx) error {
	out, err := h.commands.Void(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
