package dto

import (
	"time"

	"github.com/jhoicas/customer-api/internal/domain/entity"
)

// CustomerRequest body para POST y PUT /api/customers. En POST el id se ignora;
// en PUT se sustituye por el id de la ruta.
type CustomerRequest struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ToEntity convierte la petición en entidad. Las marcas de tiempo las asigna el servidor.
func (r CustomerRequest) ToEntity() *entity.Customer {
	return &entity.Customer{ID: r.ID, Name: r.Name, Email: r.Email}
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewCustomerResponse construye la respuesta a partir de la entidad.
func NewCustomerResponse(c *entity.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewCustomerListResponse nunca devuelve nil, para que la lista vacía se serialice como [].
func NewCustomerListResponse(list []*entity.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, NewCustomerResponse(c))
	}
	return out
}
