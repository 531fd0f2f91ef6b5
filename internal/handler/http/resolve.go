package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// resolveCart loads the caller's open cart and customer at the start of a
// cart request. It writes the error response and returns ok false when the
// request cannot continue.
func resolveCart(w http.ResponseWriter, r *http.Request, carts *service.CartService, logger *slog.Logger) (*domain.Cart, *domain.Customer, bool) {
	cart, customer, err := carts.Resolve(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, logger)
		return nil, nil, false
	}
	if cart == nil {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), logger)
		return nil, nil, false
	}
	return cart, customer, true
}
