package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/asaskevich/govalidator"
	"github.com/jhoicas/customer-api/internal/domain"
	"github.com/jhoicas/customer-api/internal/domain/entity"
	"github.com/jhoicas/customer-api/internal/domain/repository"
	"golang.org/x/text/unicode/norm"
)

// CustomerOptions ajustes del caso de uso.
type CustomerOptions struct {
	// RefreshUpdatedAt renueva UpdatedAt en cada actualización. Desactivado por defecto:
	// el comportamiento de referencia conserva el valor de creación.
	RefreshUpdatedAt bool
}

// CustomerUseCase orquesta el repositorio de clientes. Delega 1:1 salvo la validación de Save.
type CustomerUseCase struct {
	repo repository.CustomerRepository
	opts CustomerOptions
	now  func() time.Time
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository, opts CustomerOptions) *CustomerUseCase {
	return &CustomerUseCase{repo: repo, opts: opts, now: time.Now}
}

// FindAll lista todos los clientes.
func (uc *CustomerUseCase) FindAll(ctx context.Context) ([]*entity.Customer, error) {
	return uc.repo.FindAll(ctx)
}

// FindByID devuelve el cliente o nil si no existe.
func (uc *CustomerUseCase) FindByID(ctx context.Context, id string) (*entity.Customer, error) {
	return uc.repo.FindByID(ctx, id)
}

// Save valida y persiste el cliente (inserta si no tiene ID, sobrescribe si lo tiene).
func (uc *CustomerUseCase) Save(ctx context.Context, customer *entity.Customer) (*entity.Customer, error) {
	c := *customer
	c.Name = norm.NFC.String(strings.TrimSpace(c.Name))
	c.Email = strings.TrimSpace(c.Email)
	if err := validateCustomer(&c); err != nil {
		return nil, err
	}
	if c.IsNew() {
		c.CreatedAt, c.UpdatedAt = time.Time{}, time.Time{}
	} else if uc.opts.RefreshUpdatedAt {
		c.UpdatedAt = uc.now()
	}
	return uc.repo.Save(ctx, &c)
}

// DeleteByID elimina el cliente.
func (uc *CustomerUseCase) DeleteByID(ctx context.Context, id string) error {
	return uc.repo.DeleteByID(ctx, id)
}

// validateCustomer exige name y email no vacíos y sin caracteres de control (PostgreSQL rechaza
// el NUL en columnas text). El email además debe tener dominio con punto: alice@localhost no pasa.
func validateCustomer(c *entity.Customer) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name es requerido", domain.ErrInvalidInput)
	}
	if strings.ContainsFunc(c.Name, unicode.IsControl) {
		return fmt.Errorf("%w: name contiene caracteres de control", domain.ErrInvalidInput)
	}
	if c.Email == "" {
		return fmt.Errorf("%w: email es requerido", domain.ErrInvalidInput)
	}
	if strings.ContainsFunc(c.Email, unicode.IsControl) {
		return fmt.Errorf("%w: email contiene caracteres de control", domain.ErrInvalidInput)
	}
	if !govalidator.IsEmail(c.Email) {
		return fmt.Errorf("%w: email no es válido", domain.ErrInvalidInput)
	}
	return nil
}
