package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/customer-api/internal/application/dto"
	"github.com/jhoicas/customer-api/internal/application/usecase"
	"github.com/jhoicas/customer-api/internal/domain"
	"github.com/jhoicas/customer-api/pkg/logger"
)

// CustomerHandler maneja las peticiones HTTP de clientes.
type CustomerHandler struct {
	uc  *usecase.CustomerUseCase
	log *logger.Logger
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *usecase.CustomerUseCase, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{uc: uc, log: log}
}

// List godoc
// @Summary      Listar clientes
// @Tags         customers
// @Produce      json
// @Success      200  {array}   dto.CustomerResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/customers [get]
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.FindAll(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.NewCustomerListResponse(list))
}

// GetByID godoc
// @Summary      Obtener cliente por ID
// @Tags         customers
// @Produce      json
// @Param        id   path  string  true  "ID del cliente (UUID)"
// @Success      200  {object}  dto.CustomerResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  "Sin cuerpo"
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	customer, err := h.uc.FindByID(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if customer == nil {
		return notFound(c)
	}
	return c.JSON(dto.NewCustomerResponse(customer))
}

// Create godoc
// @Summary      Crear cliente
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CustomerRequest  true  "Datos del cliente (el id se ignora)"
// @Success      201   {object}  dto.CustomerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/customers [post]
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	customer := in.ToEntity()
	customer.ID = ""
	saved, err := h.uc.Save(c.UserContext(), customer)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewCustomerResponse(saved))
}

// Update godoc
// @Summary      Reemplazar cliente
// @Description  Comprueba que el cliente exista y luego sobrescribe todos sus campos. El id de la ruta prevalece sobre el del cuerpo.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del cliente (UUID)"
// @Param        body  body  dto.CustomerRequest  true  "Datos del cliente"
// @Success      200   {object}  dto.CustomerResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   "Sin cuerpo"
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/customers/{id} [put]
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.CustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	// Comprobar y luego actuar: no es atómico, la fila puede desaparecer entre ambas llamadas.
	existing, err := h.uc.FindByID(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if existing == nil {
		return notFound(c)
	}
	customer := in.ToEntity()
	customer.ID = id
	saved, err := h.uc.Save(c.UserContext(), customer)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dto.NewCustomerResponse(saved))
}

// Delete godoc
// @Summary      Eliminar cliente
// @Tags         customers
// @Param        id   path  string  true  "ID del cliente (UUID)"
// @Success      204  "Sin cuerpo"
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  "Sin cuerpo"
// @Router       /api/customers/{id} [delete]
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return invalidID(c)
	}
	existing, err := h.uc.FindByID(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if existing == nil {
		return notFound(c)
	}
	if err := h.uc.DeleteByID(c.UserContext(), id); err != nil {
		return h.fail(c, err)
	}
	c.Status(fiber.StatusNoContent)
	return nil
}

// fail traduce errores de dominio a respuestas HTTP. El error de la constraint nunca se expone.
func (h *CustomerHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "ya existe un cliente con ese email"})
	case errors.Is(err, domain.ErrNotFound):
		return notFound(c)
	case errors.Is(err, domain.ErrUnavailable):
		h.log.Error().Err(err).Str("path", c.Path()).Msg("almacenamiento no disponible")
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "UNAVAILABLE", Message: "almacenamiento no disponible"})
	default:
		h.log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
}

// parseID valida el parámetro :id y lo devuelve en forma canónica.
func parseID(c *fiber.Ctx) (string, bool) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser un UUID"})
}

// notFound responde 404 sin cuerpo (SendStatus escribiría el texto del estado).
func notFound(c *fiber.Ctx) error {
	c.Status(fiber.StatusNotFound)
	return nil
}
