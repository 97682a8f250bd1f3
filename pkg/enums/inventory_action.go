package enums

import "fmt"

// InventoryAction maps to the action_type column of inventory_logs.
type InventoryAction string

const (
	InventoryActionCompanyPurchase    InventoryAction = "company_purchase"
	InventoryActionStudentBorrow      InventoryAction = "student_borrow"
	InventoryActionStudentReturn      InventoryAction = "student_return"
	InventoryActionStudentPurchase    InventoryAction = "student_purchase"
	InventoryActionDefectiveRemoved   InventoryAction = "defective_removed"
	InventoryActionTransactionDeleted InventoryAction = "transaction_deleted"
)

var validInventoryActions = []InventoryAction{
	InventoryActionCompanyPurchase,
	InventoryActionStudentBorrow,
	InventoryActionStudentReturn,
	InventoryActionStudentPurchase,
	InventoryActionDefectiveRemoved,
	InventoryActionTransactionDeleted,
}

// String implements fmt.Stringer.
func (a InventoryAction) String() string {
	return string(a)
}

// IsValid reports whether the value matches a known inventory action.
func (a InventoryAction) IsValid() bool {
	for _, candidate := range validInventoryActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// AffectsStock reports whether entries of this action move available stock.
// transaction_deleted entries are audit markers written with a zero delta.
func (a InventoryAction) AffectsStock() bool {
	return a.IsValid() && a != InventoryActionTransactionDeleted
}

// ParseInventoryAction converts raw input into an InventoryAction.
func ParseInventoryAction(value string) (InventoryAction, error) {
	for _, candidate := range validInventoryActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory action %q", value)
}
