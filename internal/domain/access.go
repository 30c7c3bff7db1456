package domain

// Roles known to the application.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Operation names a cheque operation guarded by a permission.
type Operation string

// Cheque operations.
const (
	OpList    Operation = "list"
	OpDetails Operation = "details"
	OpPrint   Operation = "print"
	OpCreate  Operation = "create"
	OpUpdate  Operation = "update"
	OpDelete  Operation = "delete"
)

// permissions maps each operation to the roles allowed to run it.
// A nil entry means any authenticated user.
var permissions = map[Operation][]string{
	OpList:    nil,
	OpDetails: nil,
	OpPrint:   nil,
	OpCreate:  {RoleAdmin},
	OpUpdate:  {RoleAdmin},
	OpDelete:  {RoleAdmin},
}

// Allowed reports whether a user holding roles may run op. Unknown operations are denied.
func Allowed(op Operation, roles []string) bool {
	required, ok := permissions[op]
	if !ok {
		return false
	}

	if required == nil {
		return true
	}

	for _, want := range required {
		for _, have := range roles {
			if have == want {
				return true
			}
		}
	}

	return false
}

// IsAdmin reports whether roles include the admin role.
func IsAdmin(roles []string) bool {
	for _, r := range roles {
		if r == RoleAdmin {
			return true
		}
	}

	return false
}
