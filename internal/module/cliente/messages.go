package cliente

// User-facing messages. They are shown verbatim by every surface.
const (
	MsgLoadListFailed = "Hubo un error al cargar los clientes. Revisa la consola."

	MsgConfirmDeactivate = "¿Estás seguro de que quieres INACTIVAR este cliente?"
	MsgConfirmActivate   = "¿Estás seguro de que quieres ACTIVAR este cliente?"
	MsgDeactivated       = "Cliente inactivado correctamente."
	MsgActivated         = "Cliente activado correctamente."
	MsgDeactivateFailed  = "Hubo un error al inactivar el cliente. Revisa la consola."
	MsgActivateFailed    = "Hubo un error al activar el cliente. Revisa la consola."

	MsgConfirmRemove = "¿Estás seguro de que quieres eliminar este cliente?"
	MsgRemoved       = "Cliente eliminado correctamente."
	MsgRemoveFailed  = "Hubo un error al eliminar el cliente. Revisa la consola."

	MsgLoadFailed    = "Error al cargar los datos del cliente."
	MsgWaitCodeCheck = "Validando número de identificación, por favor espere."
	MsgCreated       = "Cliente creado correctamente."
	MsgUpdated       = "Cliente actualizado correctamente."
	MsgCreateFailed  = "Hubo un error al crear el cliente. Revisa la consola."
	MsgUpdateFailed  = "Hubo un error al actualizar el cliente. Revisa la consola."
	MsgCodeExists    = "Error: El Número de Identificación (NumId) ya existe."
	MsgInvalidForm   = "Revisa los campos marcados."
)

// toggleMessages returns the confirm, success and failure texts for toggling
// a record whose current active flag is active.
func toggleMessages(active bool) (confirm, success, failure string) {
	if active {
		return MsgConfirmDeactivate, MsgDeactivated, MsgDeactivateFailed
	}
	return MsgConfirmActivate, MsgActivated, MsgActivateFailed
}
