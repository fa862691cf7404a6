package checkout

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-gateway/api/middleware"
	"github.com/angelmondragon/storefront-gateway/api/responses"
	"github.com/angelmondragon/storefront-gateway/api/validators"
	checkoutsvc "github.com/angelmondragon/storefront-gateway/internal/checkout"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
)

type buyNowRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

// Absent fields are left unchanged.
type draftPatchRequest struct {
	RecipientName   *string `json:"recipient_name" validate:"omitempty,max=120"`
	PhoneNumber     *string `json:"phone_number" validate:"omitempty,max=20"`
	ShippingAddress *string `json:"shipping_address" validate:"omitempty,max=500"`
	AddressID       *string `json:"address_id"`
	PaymentMethod   *string `json:"payment_method"`
}

type selectVoucherRequest struct {
	VoucherID string `json:"voucher_id"`
}

func (p draftPatchRequest) toPatch() (checkoutsvc.Patch, error) {
	patch := checkoutsvc.Patch{
		RecipientName:   p.RecipientName,
		PhoneNumber:     p.PhoneNumber,
		ShippingAddress: p.ShippingAddress,
		AddressID:       p.AddressID,
	}
	if p.PaymentMethod != nil {
		method, err := enums.ParsePaymentMethod(*p.PaymentMethod)
		if err != nil {
			return patch, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment method is not supported").
				WithDetails(map[string]any{"fields": map[string]string{"payment_method": "must be cash or bank_card"}})
		}
		patch.PaymentMethod = &method
	}
	return patch, nil
}

// StartFromCart opens a draft from the selected cart lines.
func StartFromCart(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		draft, err := svc.StartFromCart(r.Context(), middleware.CredentialFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, draft)
	}
}

func StartBuyNow(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body buyNowRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.StartBuyNow(r.Context(), middleware.CredentialFromContext(r.Context()), strings.TrimSpace(body.ProductID), body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, draft)
	}
}

func GetDraft(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		draft, err := svc.Draft(r.Context(), middleware.CredentialFromContext(r.Context()).SessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

func UpdateDraft(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var body draftPatchRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		patch, err := body.toPatch()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.Update(r.Context(), middleware.CredentialFromContext(r.Context()).SessionID, patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

func DiscardDraft(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		svc.Discard(middleware.CredentialFromContext(r.Context()).SessionID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func SelectVoucher(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		productID := strings.TrimSpace(chi.URLParam(r, "productID"))
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		var body selectVoucherRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		draft, err := svc.SelectVoucher(r.Context(), middleware.CredentialFromContext(r.Context()), productID, strings.TrimSpace(body.VoucherID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// Submit places the order. A second submit while one is in flight is refused.
func Submit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		result, err := svc.Submit(r.Context(), middleware.CredentialFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
