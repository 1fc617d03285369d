package cliente

import "testing"

func TestMessages_Wording(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"load list", MsgLoadListFailed, "Hubo un error al cargar los clientes. Revisa la consola."},
		{"load record", MsgLoadFailed, "Error al cargar los datos del cliente."},
		{"deactivate failed", MsgDeactivateFailed, "Hubo un error al inactivar el cliente. Revisa la consola."},
		{"activate failed", MsgActivateFailed, "Hubo un error al activar el cliente. Revisa la consola."},
		{"remove failed", MsgRemoveFailed, "Hubo un error al eliminar el cliente. Revisa la consola."},
		{"create failed", MsgCreateFailed, "Hubo un error al crear el cliente. Revisa la consola."},
		{"update failed", MsgUpdateFailed, "Hubo un error al actualizar el cliente. Revisa la consola."},
		{"code exists", MsgCodeExists, "Error: El Número de Identificación (NumId) ya existe."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("message = %q; want %q", tt.got, tt.want)
			}
		})
	}
}

func TestToggleMessages(t *testing.T) {
	confirm, success, failure := toggleMessages(true)
	if confirm != MsgConfirmDeactivate || success != MsgDeactivated || failure != MsgDeactivateFailed {
		t.Errorf("toggleMessages(true) = %q, %q, %q", confirm, success, failure)
	}
	confirm, success, failure = toggleMessages(false)
	if confirm != MsgConfirmActivate || success != MsgActivated || failure != MsgActivateFailed {
		t.Errorf("toggleMessages(false) = %q, %q, %q", confirm, success, failure)
	}
}
