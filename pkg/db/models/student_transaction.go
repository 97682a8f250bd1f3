package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

// StudentTransaction records a borrow or purchase made by a student.
type StudentTransaction struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	ProductID       uuid.UUID             `gorm:"column:product_id;type:uuid;not null;index"`
	StudentName     string                `gorm:"column:student_name;not null"`
	USN             *string               `gorm:"column:usn"`
	Section         *string               `gorm:"column:section"`
	PhoneNumber     *string               `gorm:"column:phone_number"`
	TransactionType enums.TransactionType `gorm:"column:transaction_type;not null"`
	Quantity        int                   `gorm:"column:quantity;not null;default:1"`
	IssueDate       time.Time             `gorm:"column:issue_date;type:date;not null"`
	DueDate         *time.Time            `gorm:"column:due_date;type:date"`
	ReturnDate      *time.Time            `gorm:"column:return_date"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
}

func (StudentTransaction) TableName() string {
	return "student_transactions"
}

func (t *StudentTransaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// IsReturned reports whether the return flow already ran for this transaction.
func (t StudentTransaction) IsReturned() bool {
	return t.ReturnDate != nil
}
