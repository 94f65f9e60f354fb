package domain

// Staff roles as stored by the usuario subsystem.
const (
	RolMesero   = "MESERO"
	RolCocinero = "COCINERO"
)

// Staff is the read-only shape the core consumes from the usuario
// subsystem when validating mesero/cocinero references.
type Staff struct {
	ID     string
	Nombre string
	Rol    string
}
