package entity

import "time"

// Customer representa un cliente. ID, CreatedAt y UpdatedAt los asigna el almacenamiento al crear.
type Customer struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsNew indica si el cliente aún no tiene ID (Save debe insertarlo).
func (c *Customer) IsNew() bool {
	return c.ID == ""
}
