package catalog

import (
	"net/http"

	"github.com/angelmondragon/storefront-gateway/api/middleware"
	"github.com/angelmondragon/storefront-gateway/api/responses"
	catalogsvc "github.com/angelmondragon/storefront-gateway/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront-gateway/pkg/errors"
	"github.com/angelmondragon/storefront-gateway/pkg/logger"
)

// MountListing shows a listing that refreshes itself when orders touch its products.
// It reads the same query parameters as Search.
func MountListing(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		query, err := parseListingQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.MountListing(r.Context(), middleware.CredentialFromContext(r.Context()), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, snapshot)
	}
}

func MountDetail(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := pathID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.MountDetail(r.Context(), middleware.CredentialFromContext(r.Context()), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, snapshot)
	}
}

func ListingView(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		snapshot, err := svc.View(middleware.CredentialFromContext(r.Context()).SessionID, catalogsvc.ViewListing)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

// DetailView returns the mounted detail view when it shows the requested product.
func DetailView(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		productID, err := pathID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.View(middleware.CredentialFromContext(r.Context()).SessionID, catalogsvc.ViewDetail)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if snapshot.Detail == nil || snapshot.Detail.Product.ID != productID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "view is not mounted").
				WithDetails(map[string]any{"view": string(catalogsvc.ViewDetail)}))
			return
		}
		responses.WriteSuccess(w, snapshot)
	}
}

func UnmountListing(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return unmount(svc, logg, catalogsvc.ViewListing)
}

func UnmountDetail(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return unmount(svc, logg, catalogsvc.ViewDetail)
}

func unmount(svc catalogsvc.Service, logg *logger.Logger, kind catalogsvc.ViewKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		svc.Unmount(middleware.CredentialFromContext(r.Context()).SessionID, kind)
		w.WriteHeader(http.StatusNoContent)
	}
}
