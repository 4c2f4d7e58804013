package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/backend"
	"github.com/angelmondragon/storefront/api/controllers"
	"github.com/angelmondragon/storefront/api/middleware"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// Options wires the dev backend router.
type Options struct {
	Store  *backend.Store
	Logger *logger.Logger
	// Faults, when set, counts requests and injects failures.
	Faults      *middleware.Faults
	CORSOrigins []string
}

func NewRouter(opts Options) http.Handler {
	store := opts.Store
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(opts.CORSOrigins...),
	)
	if opts.Faults != nil {
		r.Use(opts.Faults.Handler)
	}

	r.Get("/health/live", controllers.HealthLive())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(store, logg))
		r.Post("/login", controllers.AuthLogin(store, logg))
		r.Get("/refresh", controllers.AuthRefresh(store, logg))
		r.Post("/refresh", controllers.AuthRefresh(store, logg))
		r.Post("/logout", controllers.AuthLogout(store))
		r.With(middleware.Auth(store.Secret(), store.Now, logg)).Get("/check-user", controllers.AuthCheckUser(store, logg))
	})

	r.Get("/products", controllers.ProductList(store, logg))
	r.Get("/products/{productId}", controllers.ProductDetail(store, logg))
	r.Get("/categories", controllers.CategoryList(store))
	r.Get("/brands", controllers.BrandList(store))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(store.Secret(), store.Now, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(store))
			r.Post("/add", controllers.CartAdd(store, logg))
			r.Patch("/update/{itemId}", controllers.CartUpdate(store, logg))
			r.Delete("/remove/{itemId}", controllers.CartRemove(store, logg))
			r.Post("/merge", controllers.CartMerge(store, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFetch(store))
			r.Post("/add", controllers.WishlistAdd(store, logg))
			r.Delete("/remove/{productId}", controllers.WishlistRemove(store, logg))
			r.Post("/merge", controllers.WishlistMerge(store, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderPlace(store, logg))
			r.Get("/my-orders", controllers.OrderList(store))
			r.Get("/my-orders/{orderId}", controllers.OrderDetail(store, logg))
			r.Put("/my-orders/{orderId}/cancel", controllers.OrderCancel(store, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressList(store))
			r.Post("/", controllers.AddressCreate(store, logg))
			r.Put("/{addressId}", controllers.AddressUpdate(store, logg))
			r.Delete("/{addressId}", controllers.AddressDelete(store, logg))
		})

		r.Get("/users/profile", controllers.ProfileFetch(store, logg))
		r.Put("/users/profile", controllers.ProfileUpdate(store, logg))
	})

	return r
}
