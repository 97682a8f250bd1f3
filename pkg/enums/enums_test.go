package enums

import "testing"

func TestParseInventoryAction(t *testing.T) {
	for _, action := range validInventoryActions {
		got, err := ParseInventoryAction(action.String())
		if err != nil {
			t.Fatalf("parse %q: %v", action, err)
		}
		if got != action {
			t.Fatalf("expected %q, got %q", action, got)
		}
	}
	if _, err := ParseInventoryAction("stolen"); err == nil {
		t.Fatal("expected unknown action to fail")
	}
}

func TestInventoryActionAffectsStock(t *testing.T) {
	if InventoryActionTransactionDeleted.AffectsStock() {
		t.Fatal("transaction_deleted must not affect stock")
	}
	if !InventoryActionStudentBorrow.AffectsStock() {
		t.Fatal("student_borrow must affect stock")
	}
	if InventoryAction("bogus").AffectsStock() {
		t.Fatal("unknown actions must not affect stock")
	}
}

func TestParseTransactionType(t *testing.T) {
	if got, err := ParseTransactionType("borrowed"); err != nil || got != TransactionTypeBorrowed {
		t.Fatalf("unexpected borrowed parse: %v %v", got, err)
	}
	if got, err := ParseTransactionType("purchased"); err != nil || got != TransactionTypePurchased {
		t.Fatalf("unexpected purchased parse: %v %v", got, err)
	}
	if _, err := ParseTransactionType("purchase"); err == nil {
		t.Fatal("expected invalid transaction type error")
	}
}
