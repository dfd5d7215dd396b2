package domain

// Role is the permission level of a desk operator.
type Role string

const (
	// RoleAdmin may register, edit and delete transactions.
	RoleAdmin Role = "admin"
	// RoleOperator may register transactions and read the ledger.
	RoleOperator Role = "operator"
)

// Operator is an authenticated user of the desk.
type Operator struct {
	ID   string
	Name string
	Role Role
}
