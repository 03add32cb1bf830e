package model

// Role identifies the department a session is logged in as. There are no
// individual user accounts; the role is the identity.
type Role string

const (
	RoleAdministracion  Role = "Administración"
	RoleComercial       Role = "Comercial"
	RoleFinanzas        Role = "Finanzas"
	RoleCompras         Role = "Compras"
	RoleLogistica       Role = "Logística"
	RoleMarketing       Role = "Marketing"
	RoleOficinaTecnica  Role = "Oficina Técnica"
	RoleRecursosHumanos Role = "Recursos Humanos"
)

// AllRoles lists every selectable role, in the order the login screen
// presents them.
var AllRoles = []Role{
	RoleAdministracion,
	RoleComercial,
	RoleFinanzas,
	RoleCompras,
	RoleLogistica,
	RoleMarketing,
	RoleOficinaTecnica,
	RoleRecursosHumanos,
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
