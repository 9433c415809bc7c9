package router

import (
	"log"
	"net/http"

	"github.com/senyabanana/marketplace-service/internal/auth"
	"github.com/senyabanana/marketplace-service/internal/handlers"
	"github.com/senyabanana/marketplace-service/internal/models"
)

// Handlers - набор обработчиков, из которых собираются маршруты.
type Handlers struct {
	Ping     http.HandlerFunc
	Offers   *handlers.OfferHandler
	Profiles *handlers.ProfileHandler
	Orders   *handlers.OrderHandler
	Reviews  *handlers.ReviewHandler
	BaseInfo *handlers.BaseInfoHandler
}

// InitRoutes регистрирует маршруты API. Все маршруты, кроме ping, base-info и списка
// предложений, требуют Bearer-токен.
func InitRoutes(h Handlers, jwtSecret []byte, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()
	required := auth.Required(jwtSecret)
	private := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, required(handler))
	}

	mux.HandleFunc("GET /api/ping", h.Ping)
	mux.HandleFunc("GET /api/base-info/{$}", h.BaseInfo.GetBaseInfo)

	private("GET /api/profile/{id}/{$}", h.Profiles.GetProfile)
	private("PATCH /api/profile/{id}/{$}", h.Profiles.EditProfile)
	private("GET /api/profiles/business/{$}", h.Profiles.ListProfiles(models.BusinessProfile))
	private("GET /api/profiles/customer/{$}", h.Profiles.ListProfiles(models.CustomerProfile))

	mux.HandleFunc("GET /api/offers/{$}", h.Offers.ListOffers)
	private("POST /api/offers/{$}", h.Offers.CreateOffer)
	private("GET /api/offers/{id}/{$}", h.Offers.GetOffer)
	private("PATCH /api/offers/{id}/{$}", h.Offers.UpdateOffer)
	private("DELETE /api/offers/{id}/{$}", h.Offers.DeleteOffer)
	private("GET /api/offerdetails/{id}/{$}", h.Offers.GetOfferDetail)

	private("GET /api/orders/{$}", h.Orders.ListOrders)
	private("POST /api/orders/{$}", h.Orders.CreateOrder)
	private("GET /api/orders/{id}/{$}", h.Orders.GetOrder)
	private("PATCH /api/orders/{id}/{$}", h.Orders.UpdateOrderStatus)
	private("DELETE /api/orders/{id}/{$}", h.Orders.DeleteOrder)
	private("GET /api/orders/{id}/history/{$}", h.Orders.OrderHistory)
	private("GET /api/order-count/{business_user_id}/{$}", h.Orders.OrderCount)
	private("GET /api/completed-order-count/{business_user_id}/{$}", h.Orders.CompletedOrderCount)

	private("GET /api/reviews/{$}", h.Reviews.ListReviews)
	private("POST /api/reviews/{$}", h.Reviews.CreateReview)
	private("GET /api/reviews/{id}/{$}", h.Reviews.GetReview)
	private("PATCH /api/reviews/{id}/{$}", h.Reviews.UpdateReview)
	private("DELETE /api/reviews/{id}/{$}", h.Reviews.DeleteReview)

	return Recover(logger, LogRequests(logger, mux))
}
