package cliente

import "github.com/simp-lee/clientes/internal/domain"

// Form field names, matching the JSON and form keys.
const (
	FieldNumID     = "numId"
	FieldNombres   = "nombres"
	FieldApellidos = "apellidos"
	FieldCorreo    = "correo"
)

var formFields = []string{FieldNumID, FieldNombres, FieldApellidos, FieldCorreo}

// ClienteRequest is the editable part of a cliente, bound from forms and JSON.
type ClienteRequest struct {
	NumID     string `json:"numId" form:"numId" binding:"required"`
	Nombres   string `json:"nombres" form:"nombres" binding:"required"`
	Apellidos string `json:"apellidos" form:"apellidos" binding:"required"`
	Correo    string `json:"correo" form:"correo" binding:"omitempty,email"`
}

// requestFromCliente copies the editable fields of c.
func requestFromCliente(c domain.Cliente) ClienteRequest {
	return ClienteRequest{
		NumID:     c.NumID,
		Nombres:   c.Nombres,
		Apellidos: c.Apellidos,
		Correo:    c.Correo,
	}
}

// field returns a pointer to the buffer field named name, or nil.
func (r *ClienteRequest) field(name string) *string {
	switch name {
	case FieldNumID:
		return &r.NumID
	case FieldNombres:
		return &r.Nombres
	case FieldApellidos:
		return &r.Apellidos
	case FieldCorreo:
		return &r.Correo
	default:
		return nil
	}
}

// ToggleRequest carries the current active flag of the record being toggled.
type ToggleRequest struct {
	Estado bool `form:"estado"`
}
