package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/customer-api/internal/domain"
	"github.com/jhoicas/customer-api/internal/domain/entity"
	"github.com/jhoicas/customer-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = `id, name, email, created_at, updated_at`

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q   Querier
	now func() time.Time
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q, now: time.Now}
}

// FindAll devuelve todos los clientes. El orden por created_at es solo por estabilidad.
func (r *CustomerRepo) FindAll(ctx context.Context) ([]*entity.Customer, error) {
	rows, err := r.q.Query(ctx, `SELECT `+customerColumns+` FROM customer ORDER BY created_at, id`)
	if err != nil {
		return nil, wrapErr("list customers", err)
	}
	defer rows.Close()
	list := make([]*entity.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list customers", err)
	}
	return list, nil
}

// FindByID obtiene un cliente por ID. Devuelve (nil, nil) si no existe.
func (r *CustomerRepo) FindByID(ctx context.Context, id string) (*entity.Customer, error) {
	row := r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customer WHERE id = $1`, id)
	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get customer", err)
	}
	return c, nil
}

// Save inserta el cliente si no tiene ID; si lo tiene, sobrescribe name y email de la fila.
// created_at nunca se modifica y updated_at solo si el llamador lo trae informado.
func (r *CustomerRepo) Save(ctx context.Context, customer *entity.Customer) (*entity.Customer, error) {
	if customer.IsNew() {
		return r.insert(ctx, customer)
	}
	return r.update(ctx, customer)
}

func (r *CustomerRepo) insert(ctx context.Context, customer *entity.Customer) (*entity.Customer, error) {
	// Postgres guarda microsegundos; se trunca para que la respuesta coincida con lo persistido.
	now := r.now().UTC().Truncate(time.Microsecond)
	query := `
		INSERT INTO customer (id, name, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + customerColumns
	row := r.q.QueryRow(ctx, query, uuid.New().String(), customer.Name, customer.Email, now, now)
	saved, err := scanCustomer(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert customer: %w", domain.ErrConflict)
		}
		return nil, wrapErr("insert customer", err)
	}
	return saved, nil
}

func (r *CustomerRepo) update(ctx context.Context, customer *entity.Customer) (*entity.Customer, error) {
	var updatedAt *time.Time
	if !customer.UpdatedAt.IsZero() {
		t := customer.UpdatedAt.UTC()
		updatedAt = &t
	}
	query := `
		UPDATE customer SET name = $2, email = $3, updated_at = COALESCE($4::timestamptz, updated_at)
		WHERE id = $1
		RETURNING ` + customerColumns
	row := r.q.QueryRow(ctx, query, customer.ID, customer.Name, customer.Email, updatedAt)
	saved, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update customer %s: %w", customer.ID, domain.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("update customer: %w", domain.ErrConflict)
		}
		return nil, wrapErr("update customer", err)
	}
	return saved, nil
}

// DeleteByID elimina un cliente por ID. Devuelve domain.ErrNotFound si no existía.
func (r *CustomerRepo) DeleteByID(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM customer WHERE id = $1`, id)
	if err != nil {
		return wrapErr("delete customer", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete customer %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// wrapErr envuelve el error del driver; los fallos de conexión se marcan como ErrUnavailable.
func wrapErr(op string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
