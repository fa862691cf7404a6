package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-gateway/api/middleware"
	"github.com/angelmondragon/storefront-gateway/api/responses"
	"github.com/angelmondragon/storefront-gateway/api/validators"
	"github.com/angelmondragon/storefront-gateway/internal/users"
	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
	"github.com/angelmondragon/storefront-gateway/pkg/types"
)

type becomeSellerRequest struct {
	ShopName      string             `json:"shop_name" validate:"max=120"`
	PhoneNumber   string             `json:"phone_number" validate:"max=20"`
	PickupAddress *types.Address     `json:"pickup_address"`
	BankAccount   *types.BankAccount `json:"bank_account"`
	ShopLogoURL   string             `json:"shop_logo_url" validate:"omitempty,url"`
	BusinessType  string             `json:"business_type" validate:"max=60"`
}

type buyerProfileRequest struct {
	PhoneNumber    string             `json:"phone_number" validate:"max=20"`
	PrimaryAddress *types.Address     `json:"primary_address"`
	BankAccount    *types.BankAccount `json:"bank_account"`
}

type sellerProfileRequest struct {
	ShopName      string             `json:"shop_name" validate:"max=120"`
	PhoneNumber   string             `json:"phone_number" validate:"max=20"`
	PickupAddress *types.Address     `json:"pickup_address"`
	BankAccount   *types.BankAccount `json:"bank_account"`
}

func UsersMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}
		profile, err := svc.Me(r.Context(), middleware.CredentialFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func UsersBecomeSeller(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var body becomeSellerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.BecomeSeller(r.Context(), middleware.CredentialFromContext(r.Context()), backend.BecomeSellerRequest{
			ShopName:      body.ShopName,
			PhoneNumber:   body.PhoneNumber,
			PickupAddress: body.PickupAddress,
			BankAccount:   body.BankAccount,
			ShopLogoURL:   body.ShopLogoURL,
			BusinessType:  body.BusinessType,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func UsersUpdateBuyerProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var body buyerProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update, err := svc.UpdateBuyerProfile(r.Context(), middleware.CredentialFromContext(r.Context()), backend.UpdateBuyerProfileRequest{
			PhoneNumber:    body.PhoneNumber,
			PrimaryAddress: body.PrimaryAddress,
			BankAccount:    body.BankAccount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, update)
	}
}

func UsersUpdateSellerProfile(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		var body sellerProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update, err := svc.UpdateSellerProfile(r.Context(), middleware.CredentialFromContext(r.Context()), backend.UpdateSellerProfileRequest{
			ShopName:      body.ShopName,
			PhoneNumber:   body.PhoneNumber,
			PickupAddress: body.PickupAddress,
			BankAccount:   body.BankAccount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, update)
	}
}
