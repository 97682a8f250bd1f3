package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/stockroom-backend/api/responses"
	"github.com/angelmondragon/stockroom-backend/api/validators"
	txsvc "github.com/angelmondragon/stockroom-backend/internal/transactions"
	"github.com/angelmondragon/stockroom-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/types"
)

const maxShortField = 64

// ListTransactions returns every student transaction, newest first.
func ListTransactions(svc txsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// CreateTransaction records a student borrow or purchase.
func CreateTransaction(svc txsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		var payload createTransactionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, transactionSavedResponse{
			Message:       "Transaction saved",
			TransactionID: created.ID,
		})
	}
}

// ReturnTransaction marks a borrow as returned.
func ReturnTransaction(svc txsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Return(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "Returned successfully")
	}
}

// DeleteTransaction removes a transaction and reverses its stock effect.
func DeleteTransaction(svc txsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "transactionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "Transaction deleted")
	}
}

type createTransactionRequest struct {
	ProductID       string      `json:"productId" validate:"required"`
	StudentName     string      `json:"student_name" validate:"required"`
	TransactionType string      `json:"transaction_type" validate:"required"`
	USN             *string     `json:"usn,omitempty"`
	Section         *string     `json:"section,omitempty"`
	IssueDate       types.Date  `json:"issue_date"`
	PhoneNumber     *string     `json:"phone_number,omitempty"`
	Quantity        int         `json:"quantity" validate:"min=0"`
	ReturnDate      *types.Date `json:"return_date,omitempty"`
}

func (p createTransactionRequest) toInput() (txsvc.CreateTransactionInput, error) {
	productID, err := uuid.Parse(strings.TrimSpace(p.ProductID))
	if err != nil {
		return txsvc.CreateTransactionInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid productId").WithDetails(map[string]any{"field": "productId"})
	}
	txType, err := enums.ParseTransactionType(strings.TrimSpace(p.TransactionType))
	if err != nil {
		return txsvc.CreateTransactionInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction_type").WithDetails(map[string]any{"field": "transaction_type"})
	}

	var due *types.Date
	if p.ReturnDate != nil && !p.ReturnDate.IsZero() {
		due = p.ReturnDate
	}

	return txsvc.CreateTransactionInput{
		ProductID:       productID,
		StudentName:     validators.SanitizeString(p.StudentName, maxNameLength),
		TransactionType: txType,
		USN:             validators.OptionalString(p.USN, maxShortField),
		Section:         validators.OptionalString(p.Section, maxShortField),
		PhoneNumber:     validators.OptionalString(p.PhoneNumber, maxShortField),
		Quantity:        p.Quantity,
		IssueDate:       p.IssueDate,
		DueDate:         due,
	}, nil
}

type transactionSavedResponse struct {
	Message       string    `json:"message"`
	TransactionID uuid.UUID `json:"transactionId"`
}
