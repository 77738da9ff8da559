// Package memory implementa los puertos de persistencia en memoria, con las mismas
// garantías que el adaptador PostgreSQL (ID generado, email único, borrado físico).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/customer-api/internal/domain"
	"github.com/jhoicas/customer-api/internal/domain/entity"
	"github.com/jhoicas/customer-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo guarda clientes en un mapa protegido por mutex, con índice por email.
type CustomerRepo struct {
	mu      sync.RWMutex
	byID    map[string]entity.Customer
	byEmail map[string]string
	now     func() time.Time
}

// NewCustomerRepository construye un repositorio vacío.
func NewCustomerRepository() *CustomerRepo {
	return &CustomerRepo{
		byID:    make(map[string]entity.Customer),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

// WithClock fija el reloj usado para las marcas de tiempo (tests).
func (r *CustomerRepo) WithClock(now func() time.Time) *CustomerRepo {
	r.now = now
	return r
}

// FindAll devuelve copias de todos los clientes ordenadas por creación.
func (r *CustomerRepo) FindAll(ctx context.Context) ([]*entity.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*entity.Customer, 0, len(r.byID))
	for _, c := range r.byID {
		c := c
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

// FindByID devuelve una copia del cliente o (nil, nil) si no existe.
func (r *CustomerRepo) FindByID(ctx context.Context, id string) (*entity.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// Save inserta o sobrescribe igual que el adaptador PostgreSQL.
func (r *CustomerRepo) Save(ctx context.Context, customer *entity.Customer) (*entity.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if customer.IsNew() {
		if _, taken := r.byEmail[customer.Email]; taken {
			return nil, fmt.Errorf("insert customer: %w", domain.ErrConflict)
		}
		now := r.now().UTC().Truncate(time.Microsecond)
		c := entity.Customer{
			ID:        uuid.New().String(),
			Name:      customer.Name,
			Email:     customer.Email,
			CreatedAt: now,
			UpdatedAt: now,
		}
		r.byID[c.ID] = c
		r.byEmail[c.Email] = c.ID
		return &c, nil
	}

	current, ok := r.byID[customer.ID]
	if !ok {
		return nil, fmt.Errorf("update customer %s: %w", customer.ID, domain.ErrNotFound)
	}
	if owner, taken := r.byEmail[customer.Email]; taken && owner != customer.ID {
		return nil, fmt.Errorf("update customer: %w", domain.ErrConflict)
	}
	delete(r.byEmail, current.Email)
	current.Name = customer.Name
	current.Email = customer.Email
	if !customer.UpdatedAt.IsZero() {
		current.UpdatedAt = customer.UpdatedAt.UTC()
	}
	r.byID[current.ID] = current
	r.byEmail[current.Email] = current.ID
	return &current, nil
}

// DeleteByID borra el cliente; domain.ErrNotFound si no existía.
func (r *CustomerRepo) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("delete customer %s: %w", id, domain.ErrNotFound)
	}
	delete(r.byID, id)
	delete(r.byEmail, c.Email)
	return nil
}

// Ping cumple con el chequeo de disponibilidad; la memoria siempre está disponible.
func (r *CustomerRepo) Ping(ctx context.Context) error {
	return ctx.Err()
}
