package stock

import (
	"fmt"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

// Mutation is the effect of one lifecycle event on a product: the deltas
// applied to its counters and the ledger entry recorded for it.
type Mutation struct {
	MasterDelta    int
	AvailableDelta int
	Action         enums.InventoryAction
	LogQuantity    int
}

// Levels is a snapshot of a product's counters.
type Levels struct {
	Master    int
	Available int
}

// ChangesStock reports whether the mutation touches either counter.
func (m Mutation) ChangesStock() bool {
	return m.MasterDelta != 0 || m.AvailableDelta != 0
}

// Apply returns the counters after the mutation. Both counters are floored at
// zero. Units coming back are capped at master; decrements are not, so a
// lowered master never costs more than the logged quantity. The repository
// performs the same arithmetic in SQL.
func (m Mutation) Apply(l Levels) Levels {
	master := l.Master + m.MasterDelta
	if master < 0 {
		master = 0
	}
	available := l.Available + m.AvailableDelta
	if available < 0 {
		available = 0
	}
	if m.AvailableDelta > 0 && available > master {
		available = master
	}
	return Levels{Master: master, Available: available}
}

// ForCreate maps a new borrow or purchase to its mutation.
func ForCreate(txType enums.TransactionType, quantity int) (Mutation, error) {
	if err := validateQuantity(quantity); err != nil {
		return Mutation{}, err
	}
	switch txType {
	case enums.TransactionTypeBorrowed:
		return Mutation{
			AvailableDelta: -quantity,
			Action:         enums.InventoryActionStudentBorrow,
			LogQuantity:    -quantity,
		}, nil
	case enums.TransactionTypePurchased:
		return Mutation{
			MasterDelta:    -quantity,
			AvailableDelta: -quantity,
			Action:         enums.InventoryActionStudentPurchase,
			LogQuantity:    -quantity,
		}, nil
	default:
		return Mutation{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction type %q", txType))
	}
}

// ForReturn maps the return of a borrow. Only open borrows can be returned.
func ForReturn(txType enums.TransactionType, returned bool, quantity int) (Mutation, error) {
	if txType != enums.TransactionTypeBorrowed {
		return Mutation{}, pkgerrors.New(pkgerrors.CodeStateConflict, "only borrowed transactions can be returned").
			WithDetails(map[string]any{"transaction_type": txType})
	}
	if returned {
		return Mutation{}, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction already returned")
	}
	if err := validateQuantity(quantity); err != nil {
		return Mutation{}, err
	}
	return Mutation{
		AvailableDelta: quantity,
		Action:         enums.InventoryActionStudentReturn,
		LogQuantity:    quantity,
	}, nil
}

// ForDelete reverses whatever stock the transaction still holds and always
// records a zero-quantity transaction_deleted entry.
func ForDelete(txType enums.TransactionType, returned bool, quantity int) Mutation {
	m := Mutation{Action: enums.InventoryActionTransactionDeleted}
	switch {
	case txType == enums.TransactionTypePurchased:
		m.MasterDelta = quantity
		m.AvailableDelta = quantity
	case txType == enums.TransactionTypeBorrowed && !returned:
		m.AvailableDelta = quantity
	}
	return m
}

// ForAddProduct seeds a new product's counters.
func ForAddProduct(initial int) (Mutation, error) {
	if initial < 0 {
		return Mutation{}, pkgerrors.New(pkgerrors.CodeValidation, "masterCount must be zero or greater")
	}
	return Mutation{
		MasterDelta:    initial,
		AvailableDelta: initial,
		Action:         enums.InventoryActionCompanyPurchase,
		LogQuantity:    initial,
	}, nil
}

// ForRestock records additional units bought by the organization.
func ForRestock(quantity int) (Mutation, error) {
	if err := validateQuantity(quantity); err != nil {
		return Mutation{}, err
	}
	return Mutation{
		MasterDelta:    quantity,
		AvailableDelta: quantity,
		Action:         enums.InventoryActionCompanyPurchase,
		LogQuantity:    quantity,
	}, nil
}

// ForDefective removes broken units from both counters.
func ForDefective(quantity int) (Mutation, error) {
	if err := validateQuantity(quantity); err != nil {
		return Mutation{}, err
	}
	return Mutation{
		MasterDelta:    -quantity,
		AvailableDelta: -quantity,
		Action:         enums.InventoryActionDefectiveRemoved,
		LogQuantity:    -quantity,
	}, nil
}

func validateQuantity(quantity int) error {
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"quantity": quantity})
	}
	return nil
}
