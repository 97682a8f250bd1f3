package transactions

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	"github.com/angelmondragon/stockroom-backend/pkg/types"
)

// TransactionDTO mirrors the student_transactions row returned to clients.
type TransactionDTO struct {
	ID              uuid.UUID             `json:"id"`
	ProductID       uuid.UUID             `json:"product_id"`
	StudentName     string                `json:"student_name"`
	USN             *string               `json:"usn"`
	Section         *string               `json:"section"`
	PhoneNumber     *string               `json:"phone_number"`
	TransactionType enums.TransactionType `json:"transaction_type"`
	Quantity        int                   `json:"quantity"`
	IssueDate       types.Date            `json:"issue_date"`
	DueDate         *types.Date           `json:"due_date"`
	ReturnDate      *time.Time            `json:"return_date"`
	CreatedAt       time.Time             `json:"created_at"`
}

// NewTransactionDTO maps a stored transaction to its response shape.
func NewTransactionDTO(tx models.StudentTransaction) TransactionDTO {
	dto := TransactionDTO{
		ID:              tx.ID,
		ProductID:       tx.ProductID,
		StudentName:     tx.StudentName,
		USN:             tx.USN,
		Section:         tx.Section,
		PhoneNumber:     tx.PhoneNumber,
		TransactionType: tx.TransactionType,
		Quantity:        tx.Quantity,
		IssueDate:       types.NewDate(tx.IssueDate),
		ReturnDate:      tx.ReturnDate,
		CreatedAt:       tx.CreatedAt,
	}
	if tx.DueDate != nil {
		due := types.NewDate(*tx.DueDate)
		dto.DueDate = &due
	}
	return dto
}

// CreateTransactionInput is the validated payload for a new borrow or
// purchase. Zero Quantity means one unit and a zero IssueDate means today.
type CreateTransactionInput struct {
	ProductID       uuid.UUID
	StudentName     string
	TransactionType enums.TransactionType
	USN             *string
	Section         *string
	PhoneNumber     *string
	Quantity        int
	IssueDate       types.Date
	DueDate         *types.Date
}
