package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Anedula/NioiAccess/internal/model"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		role model.Role
		pass string
		ok   bool
	}{
		{model.RoleAdministracion, "a@gruponioi", true},
		{model.RoleComercial, "c@gruponioi", true},
		{model.RoleFinanzas, "f@gruponioi", true},
		{model.RoleCompras, "c@gruponioi", true},
		{model.RoleLogistica, "l@gruponioi", true},
		{model.RoleMarketing, "m@gruponioi", true},
		{model.RoleOficinaTecnica, "ot@gruponioi", true},
		{model.RoleRecursosHumanos, "rh@gruponioi", true},
		{model.RoleAdministracion, "b@gruponioi", false},
		{model.RoleOficinaTecnica, "o@gruponioi", false},
		{model.RoleRecursosHumanos, "", false},
		{model.Role("Sistemas"), "s@gruponioi", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+tt.pass, func(t *testing.T) {
			assert.Equal(t, tt.ok, ValidatePassword(tt.role, tt.pass))
		})
	}
}
