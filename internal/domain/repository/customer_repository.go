package repository

import (
	"context"

	"github.com/jhoicas/customer-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
//
// FindByID devuelve (nil, nil) si el cliente no existe. Save inserta cuando el ID está vacío
// y sobrescribe la fila existente en caso contrario; un email repetido devuelve domain.ErrConflict.
// DeleteByID devuelve domain.ErrNotFound si no había fila que borrar.
type CustomerRepository interface {
	FindAll(ctx context.Context) ([]*entity.Customer, error)
	FindByID(ctx context.Context, id string) (*entity.Customer, error)
	Save(ctx context.Context, customer *entity.Customer) (*entity.Customer, error)
	DeleteByID(ctx context.Context, id string) error
}
