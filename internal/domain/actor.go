package domain

// Role is the role claim supplied by the identity provider.
// The core trusts this input and only enforces the capability
// checks below.
type Role string

const (
	RoleCitizen       Role = "citizen"
	RoleOperator      Role = "operator"
	RoleAdministrator Role = "administrator"
)

// Valid returns true if the role is one of the known roles
func (r Role) Valid() bool {
	return r == RoleCitizen || r == RoleOperator || r == RoleAdministrator
}

// CanManageQueue returns true if the role may drive appointment status
// transitions past SCHEDULED and view the full queue
func (r Role) CanManageQueue() bool {
	return r == RoleOperator || r == RoleAdministrator
}

// CanAdministrate returns true if the role may edit the service catalog
// and trigger slot-window generation
func (r Role) CanAdministrate() bool {
	return r == RoleAdministrator
}

// Actor is the acting principal for a scheduler call
type Actor struct {
	UserID int64
	Role   Role
}
