package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sweetshop/sweet-inventory/internal/api/metrics"
	"github.com/sweetshop/sweet-inventory/internal/core/domain"
	"github.com/sweetshop/sweet-inventory/internal/core/ports"
)

// SweetHandler handles HTTP requests for catalog operations.
type SweetHandler struct {
	service ports.SweetService
}

func NewSweetHandler(service ports.SweetService) *SweetHandler {
	return &SweetHandler{service: service}
}

// List handles GET /sweets.
//
// @Summary      List sweets
// @Tags         sweets
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  sweetListResponse
// @Failure      401  {object}  errorResponse
// @Router       /sweets [get]
func (h *SweetHandler) List(c echo.Context) error {
	sweets, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweetListResponse{Data: sweets})
}

// Search handles GET /sweets/search. Every query parameter is optional and
// the supplied ones are combined with AND.
//
// @Summary      Search sweets
// @Tags         sweets
// @Produce      json
// @Security     CookieAuth
// @Param        name        query     string  false  "Case-insensitive substring of the name"
// @Param        categoryId  query     string  false  "Exact category id"
// @Param        priceMin    query     number  false  "Inclusive lower price bound"
// @Param        priceMax    query     number  false  "Inclusive upper price bound"
// @Success      200         {object}  sweetListResponse
// @Failure      400         {object}  errorResponse
// @Failure      401         {object}  errorResponse
// @Router       /sweets/search [get]
func (h *SweetHandler) Search(c echo.Context) error {
	filter, err := parseSearchFilter(c)
	if err != nil {
		return err
	}

	sweets, err := h.service.Search(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweetListResponse{Data: sweets})
}

// Get handles GET /sweets/:id.
//
// @Summary      Get a sweet
// @Tags         sweets
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Sweet id"
// @Success      200  {object}  domain.Sweet
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /sweets/{id} [get]
func (h *SweetHandler) Get(c echo.Context) error {
	sweet, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweet)
}

// Create handles POST /sweets. The caller becomes the owner.
//
// @Summary      Create a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      createSweetRequest  true  "Sweet details"
// @Success      201   {object}  domain.Sweet
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /sweets [post]
func (h *SweetHandler) Create(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}

	var req createSweetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	sweet, err := h.service.Create(c.Request().Context(), user, ports.CreateSweetInput{
		Name:       req.Name,
		Price:      *req.Price,
		Stock:      *req.Stock,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		return err
	}

	metrics.SweetsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, sweet)
}

// Update handles PUT /sweets/:id. Only the fields present in the body change.
//
// @Summary      Update a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string              true  "Sweet id"
// @Param        body  body      updateSweetRequest  true  "Fields to change"
// @Success      200   {object}  domain.Sweet
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /sweets/{id} [put]
func (h *SweetHandler) Update(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}

	// A non-owner is refused before the body is looked at.
	if err := h.service.AuthorizeOwner(c.Request().Context(), user, c.Param("id")); err != nil {
		return err
	}

	var req updateSweetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	sweet, err := h.service.Update(c.Request().Context(), user, c.Param("id"), domain.SweetPatch{
		Name:       req.Name,
		Price:      req.Price,
		Stock:      req.Stock,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweet)
}

// Delete handles DELETE /sweets/:id.
//
// @Summary      Delete a sweet
// @Tags         sweets
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Sweet id"
// @Success      200  {object}  deleteResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /sweets/{id} [delete]
func (h *SweetHandler) Delete(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if err := h.service.Delete(c.Request().Context(), user, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteResponse{Deleted: true, ID: id})
}

// Purchase handles POST /sweets/:id/purchase.
//
// @Summary      Purchase a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id               path      string           true   "Sweet id"
// @Param        Idempotency-Key  header    string           false  "Replays the first result for a repeated key"
// @Param        body             body      quantityRequest  true   "Quantity to buy"
// @Success      200              {object}  domain.Sweet
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /sweets/{id}/purchase [post]
func (h *SweetHandler) Purchase(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}

	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	out, err := h.service.Purchase(c.Request().Context(), user, ports.PurchaseInput{
		SweetID:        c.Param("id"),
		Quantity:       req.Quantity,
		IdempotencyKey: strings.TrimSpace(c.Request().Header.Get("Idempotency-Key")),
	})
	if err != nil {
		metrics.PurchasesTotal.WithLabelValues(purchaseResult(err)).Inc()
		return err
	}

	if out.Replayed {
		metrics.PurchasesTotal.WithLabelValues("replayed").Inc()
	} else {
		metrics.PurchasesTotal.WithLabelValues("success").Inc()
		metrics.UnitsPurchasedTotal.Add(float64(req.Quantity))
	}
	return c.JSON(http.StatusOK, out.Sweet)
}

// Restock handles POST /sweets/:id/restock.
//
// @Summary      Restock a sweet
// @Tags         sweets
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string           true  "Sweet id"
// @Param        body  body      quantityRequest  true  "Quantity to add"
// @Success      200   {object}  domain.Sweet
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /sweets/{id}/restock [post]
func (h *SweetHandler) Restock(c echo.Context) error {
	user, err := actor(c)
	if err != nil {
		return err
	}

	if err := h.service.AuthorizeOwner(c.Request().Context(), user, c.Param("id")); err != nil {
		return err
	}

	var req quantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	sweet, err := h.service.Restock(c.Request().Context(), user, c.Param("id"), req.Quantity)
	if err != nil {
		return err
	}

	metrics.UnitsRestockedTotal.Add(float64(req.Quantity))
	return c.JSON(http.StatusOK, sweet)
}

// parseSearchFilter reads the search query parameters. Blank values count as
// absent; unparseable prices are reported per field.
func parseSearchFilter(c echo.Context) (domain.SearchFilter, error) {
	filter := domain.SearchFilter{
		Name:       strings.TrimSpace(c.QueryParam("name")),
		CategoryID: strings.TrimSpace(c.QueryParam("categoryId")),
	}

	verr := &domain.ValidationError{}
	filter.PriceMin = parsePrice(verr, "priceMin", c.QueryParam("priceMin"))
	filter.PriceMax = parsePrice(verr, "priceMax", c.QueryParam("priceMax"))
	if err := verr.OrNil(); err != nil {
		return domain.SearchFilter{}, err
	}
	return filter, nil
}

func parsePrice(verr *domain.ValidationError, field, raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		verr.Add(field, "must be a number")
		return nil
	}
	return &d
}

func purchaseResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
