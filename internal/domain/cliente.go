package domain

import (
	"context"
	"time"
)

// Cliente is a client record as exchanged with the ClientesPs backend.
// NumID is the business identification code, unique across active and
// inactive records.
type Cliente struct {
	ID                *uint      `json:"id,omitempty"`
	NumID             string     `json:"numId"`
	Nombres           string     `json:"nombres"`
	Apellidos         string     `json:"apellidos"`
	Correo            string     `json:"correo,omitempty"`
	FechaCreacion     *time.Time `json:"fechaCreacion,omitempty"`
	FechaModificacion *time.Time `json:"fechaModificacion,omitempty"`
	Estado            bool       `json:"estado"`
}

// HasID reports whether the record carries a server-assigned identifier.
func (c Cliente) HasID() bool {
	return c.ID != nil && *c.ID != 0
}

// IDValue returns the identifier or 0 when absent.
func (c Cliente) IDValue() uint {
	if c.ID == nil {
		return 0
	}
	return *c.ID
}

// ClienteGateway is the remote access layer for cliente records. Every
// method is a single round trip; failures are returned as *AppError and are
// never retried.
type ClienteGateway interface {
	List(ctx context.Context, query *QueryParams) (*PagedResult[Cliente], error)
	GetByID(ctx context.Context, id uint) (*Cliente, error)
	Create(ctx context.Context, cliente Cliente) (*Cliente, error)
	Update(ctx context.Context, id uint, cliente Cliente) error
	Exists(ctx context.Context, numID string) (bool, error)
	Deactivate(ctx context.Context, id uint) error
	Activate(ctx context.Context, id uint) error
}
