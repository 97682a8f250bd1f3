package controllers

import (
	"net/http"

	"github.com/angelmondragon/stockroom-backend/api/responses"
	"github.com/angelmondragon/stockroom-backend/api/validators"
	productsvc "github.com/angelmondragon/stockroom-backend/internal/products"
	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
)

const (
	maxNameLength = 200
	maxTextLength = 2000
)

// ListProducts returns every product with its master and available counts.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		products, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// CreateProduct adds a product and records its opening stock.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateMasterCount overwrites the master count of a product.
func UpdateMasterCount(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateMasterRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateMasterCount(r.Context(), productID, *payload.MasterCount); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "Updated")
	}
}

// RestockProduct records a company purchase against an existing product.
func RestockProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adjustStock(svc, logg, "Restocked", func(r *http.Request, in productsvc.AdjustStockInput) error {
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			return err
		}
		return svc.Restock(r.Context(), id, in)
	})
}

// RemoveDefective writes off defective units of a product.
func RemoveDefective(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return adjustStock(svc, logg, "Defective units removed", func(r *http.Request, in productsvc.AdjustStockInput) error {
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			return err
		}
		return svc.RemoveDefective(r.Context(), id, in)
	})
}

func adjustStock(svc productsvc.Service, logg *logger.Logger, message string, apply func(*http.Request, productsvc.AdjustStockInput) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := apply(r, productsvc.AdjustStockInput{
			Quantity: payload.Quantity,
			Note:     validators.OptionalString(payload.Note, maxTextLength),
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, message)
	}
}

type createProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	MasterCount int     `json:"masterCount" validate:"min=0"`
}

func (p createProductRequest) toInput() productsvc.CreateProductInput {
	return productsvc.CreateProductInput{
		Name:        validators.SanitizeString(p.Name, maxNameLength),
		Description: validators.OptionalString(p.Description, maxTextLength),
		MasterCount: p.MasterCount,
	}
}

type updateMasterRequest struct {
	MasterCount *int `json:"masterCount" validate:"required,min=0"`
}

type adjustStockRequest struct {
	Quantity int     `json:"quantity" validate:"min=1"`
	Note     *string `json:"note,omitempty"`
}
