package http

import (
	"context"
	"iter"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/inventario-tienda/internal/application/dto"
	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	inv "github.com/jhoicas/inventario-tienda/internal/domain/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

// movementService contrato de escritura que necesita el handler (lo cumple *inventory.MovementEngine).
type movementService interface {
	Apply(ctx context.Context, in inventory.MovementInput) (*inventory.MovementResult, error)
	Transfer(ctx context.Context, in inventory.TransferInput) (src, dst *entity.StockEntry, err error)
}

// stockReader contrato de lectura (lo cumple *inventory.StockQueries).
type stockReader interface {
	CurrentStock(ctx context.Context, productID, locationID string) (int64, error)
	StockByLocation(ctx context.Context, productID string) ([]entity.StockEntry, error)
	MovementHistory(ctx context.Context, filter repository.MovementFilter, pageSize int) iter.Seq2[*entity.InventoryMovement, error]
	MovementTotals(ctx context.Context, filter repository.MovementFilter) ([]repository.KindTotal, error)
	Summary(ctx context.Context, locationID string, threshold int64) (*dto.InventorySummaryDTO, error)
	LeastMoved(ctx context.Context, limit int) ([]repository.ProductMovementCount, error)
	Movement(ctx context.Context, id string) (*entity.InventoryMovement, error)
	TransferDetail(ctx context.Context, id string) (*entity.Transfer, []*entity.InventoryMovement, error)
	Locations(ctx context.Context) ([]*entity.Location, error)
}

// InventoryHandler maneja las peticiones HTTP de movimientos e inventario (protegido).
type InventoryHandler struct {
	movements movementService
	queries   stockReader
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements movementService, queries stockReader) *InventoryHandler {
	return &InventoryHandler{movements: movements, queries: queries}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  Entrada, salida, ajuste o traslado. Si se envía reason, el tipo se deriva de él.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, quantity, type o reason, source_id/destination_id según el tipo"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	res, err := h.movements.Apply(c.UserContext(), inventory.MovementInput{
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		Kind:          entity.MovementKind(in.Type),
		Reason:        in.Reason,
		SourceID:      in.SourceID,
		DestinationID: in.DestinationID,
		ActorID:       GetUserID(c),
		TransferID:    in.TransferID,
	})
	if err != nil {
		return writeError(c, err)
	}

	out := dto.MovementResponse{
		Kind:      string(res.Kind),
		Stock:     toStockDTO(*res.Stock),
		Movements: make([]dto.MovementDTO, 0, len(res.Movements)),
	}
	if res.Source != nil {
		src := toStockDTO(*res.Source)
		out.Source = &src
	}
	if res.Transfer != nil {
		out.TransferID = res.Transfer.ID
	}
	for _, m := range res.Movements {
		out.Movements = append(out.Movements, toMovementDTO(m))
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Transfer godoc
// @Summary      Trasladar existencias entre ubicaciones
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "product_id, quantity, source_id, destination_id"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	qty, err := inv.ParseQuantity(in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	if in.TransferID == "" {
		in.TransferID = uuid.New().String()
	}
	src, dst, err := h.movements.Transfer(c.UserContext(), inventory.TransferInput{
		ProductID:     in.ProductID,
		Quantity:      qty,
		SourceID:      in.SourceID,
		DestinationID: in.DestinationID,
		ActorID:       GetUserID(c),
		TransferID:    in.TransferID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		TransferID:  in.TransferID,
		Source:      toStockDTO(*src),
		Destination: toStockDTO(*dst),
	})
}

// GetTransfer godoc
// @Summary      Traslado con sus dos movimientos enlazados
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers/{id} [get]
func (h *InventoryHandler) GetTransfer(c *fiber.Ctx) error {
	t, movs, err := h.queries.TransferDetail(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.TransferDetailResponse{
		TransferID:    t.ID,
		ProductID:     t.ProductID,
		Quantity:      t.Quantity,
		SourceID:      t.SourceID,
		DestinationID: t.DestinationID,
		ActorID:       t.ActorID,
		CreatedAt:     t.CreatedAt,
		Movements:     make([]dto.MovementDTO, 0, len(movs)),
	}
	for _, m := range movs {
		out.Movements = append(out.Movements, toMovementDTO(m))
	}
	return c.JSON(out)
}

// GetMovement godoc
// @Summary      Movimiento por ID
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	m, err := h.queries.Movement(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toMovementDTO(m))
}

// ListLocations godoc
// @Summary      Ubicaciones de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LocationDTO
// @Router       /api/inventory/locations [get]
func (h *InventoryHandler) ListLocations(c *fiber.Ctx) error {
	locs, err := h.queries.Locations(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LocationDTO, 0, len(locs))
	for _, l := range locs {
		out = append(out, dto.LocationDTO{ID: l.ID, Name: l.Name, Address: l.Address})
	}
	return c.JSON(out)
}

// GetStock godoc
// @Summary      Existencia actual de un producto
// @Description  Con location_id devuelve la cantidad en esa ubicación; sin él, el detalle por ubicación.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id   path   string  true   "ID del producto"
// @Param        location_id  query  string  false  "ID de la ubicación"
// @Success      200  {object}  dto.CurrentStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{product_id} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	productID := c.Params("product_id")
	locationID := c.Query("location_id")
	out := dto.CurrentStockResponse{ProductID: productID, LocationID: locationID}

	if locationID != "" {
		qty, err := h.queries.CurrentStock(c.UserContext(), productID, locationID)
		if err != nil {
			return writeError(c, err)
		}
		out.Quantity = &qty
		return c.JSON(out)
	}

	entries, err := h.queries.StockByLocation(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	out.Locations = make([]dto.StockDTO, 0, len(entries))
	for _, e := range entries {
		out.Locations = append(out.Locations, toStockDTO(e))
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos (más reciente primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  false  "Producto"
// @Param        location_id  query  string  false  "Ubicación (origen o destino)"
// @Param        kind         query  string  false  "entry | exit | adjustment"
// @Param        from         query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        to           query  string  false  "Hasta (RFC3339 o YYYY-MM-DD, inclusive)"
// @Param        limit        query  int     false  "Máximo de registros (por defecto 100, máximo 1000)"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	filter, bad := movementFilterFromQuery(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "VALIDATION", "limit inválido")
	}
	page.DefaultPage()

	items := make([]dto.MovementDTO, 0, page.Limit)
	for m, err := range h.queries.MovementHistory(c.UserContext(), filter, page.Limit) {
		if err != nil {
			return writeError(c, err)
		}
		items = append(items, toMovementDTO(m))
		if len(items) == page.Limit {
			break
		}
	}
	return c.JSON(dto.MovementListResponse{Items: items, Limit: page.Limit})
}

// MovementTotals godoc
// @Summary      Unidades y número de movimientos por tipo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.KindTotalDTO
// @Router       /api/inventory/movements/totals [get]
func (h *InventoryHandler) MovementTotals(c *fiber.Ctx) error {
	filter, bad := movementFilterFromQuery(c)
	if bad != nil {
		return c.Status(fiber.StatusBadRequest).JSON(bad)
	}
	totals, err := h.queries.MovementTotals(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.KindTotalDTO, 0, len(totals))
	for _, t := range totals {
		out = append(out, dto.KindTotalDTO{Kind: string(t.Kind), Units: t.Units, Count: t.Count})
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Resumen de inventario
// @Description  Unidades totales, productos con existencia, valorización a precio detal y existencias críticas.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Ubicación (vacío = todas)"
// @Param        threshold    query  int     false  "Umbral de existencia crítica"
// @Success      200  {object}  dto.InventorySummaryDTO
// @Router       /api/inventory/summary [get]
func (h *InventoryHandler) Summary(c *fiber.Ctx) error {
	var threshold int64
	if s := c.Query("threshold"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			return badRequest(c, "VALIDATION", "threshold debe ser un entero positivo")
		}
		threshold = n
	}
	summary, err := h.queries.Summary(c.UserContext(), c.Query("location_id"), threshold)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// LeastMoved godoc
// @Summary      Productos con menos movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Cantidad de productos (por defecto 10)"
// @Success      200  {array}  dto.LeastMovedDTO
// @Router       /api/inventory/least-moved [get]
func (h *InventoryHandler) LeastMoved(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", inventory.DefaultLeastMovedLimit)
	if limit > dto.MaxPageLimit {
		limit = dto.MaxPageLimit
	}
	list, err := h.queries.LeastMoved(c.UserContext(), limit)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LeastMovedDTO, 0, len(list))
	for _, p := range list {
		out = append(out, dto.LeastMovedDTO{ProductID: p.ProductID, ProductName: p.Name, Movements: p.Movements})
	}
	return c.JSON(out)
}

// movementFilterFromQuery arma el filtro del historial desde la query; devuelve el cuerpo 400 si algo es inválido.
func movementFilterFromQuery(c *fiber.Ctx) (repository.MovementFilter, *dto.ErrorResponse) {
	f := repository.MovementFilter{
		ProductID:  c.Query("product_id"),
		LocationID: c.Query("location_id"),
	}
	if k := c.Query("kind"); k != "" {
		kind, err := inv.ParseKind(k)
		if err != nil || kind == entity.MovementKindTransfer {
			return f, &dto.ErrorResponse{Code: "INVALID_KIND", Message: "kind debe ser entry, exit o adjustment"}
		}
		f.Kind = kind
	}
	if s := c.Query("from"); s != "" {
		t, err := parseTime(s, false)
		if err != nil {
			return f, &dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido"}
		}
		f.From = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := parseTime(s, true)
		if err != nil {
			return f, &dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido"}
		}
		f.To = &t
	}
	return f, nil
}

// parseTime acepta RFC3339 o YYYY-MM-DD; con endOfDay la fecha sola cubre el día completo.
func parseTime(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func toStockDTO(e entity.StockEntry) dto.StockDTO {
	return dto.StockDTO{
		ProductID:  e.ProductID,
		LocationID: e.LocationID,
		Quantity:   e.Quantity,
		UpdatedAt:  e.UpdatedAt,
	}
}

func toMovementDTO(m *entity.InventoryMovement) dto.MovementDTO {
	return dto.MovementDTO{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Kind:          string(m.Kind),
		Reason:        string(m.Reason),
		Role:          string(m.Role),
		Quantity:      m.Quantity,
		SourceID:      m.SourceID,
		DestinationID: m.DestinationID,
		LocationID:    m.LocationID(),
		Balance:       m.Balance,
		TransferID:    m.TransferID,
		ActorID:       m.ActorID,
		CreatedAt:     m.CreatedAt,
	}
}
