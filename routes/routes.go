package routes

import (
	"fmt"
	"net/http"

	"bazaar/addresses"
	"bazaar/auth"
	"bazaar/cart"
	"bazaar/checkout"
	"bazaar/customers"
	"bazaar/metrics"
	"bazaar/middleware"
	"bazaar/models"
	"bazaar/orders"
	"bazaar/products"
	"bazaar/ratelim"
	"bazaar/repo"
	"bazaar/sellers"
	"bazaar/wishlist"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// Deps carries the services and cross-cutting pieces the route table wires.
type Deps struct {
	Auth      *auth.Service
	Customers *customers.Service
	Sellers   *sellers.Service
	Products  *products.Service
	Carts     *cart.CartService
	Wishlists *wishlist.Service
	Addresses *addresses.Service
	Orders    *orders.Service
	Checkout  *checkout.Service

	Tokens      *middleware.Authenticator
	Limiter     *ratelim.RateLimiter
	Metrics     *metrics.ServerMetrics
	Idempotency repo.IdempotencyRepo
	Log         *zap.Logger
}

const (
	customer = models.RoleCustomer
	seller   = models.RoleSeller
)

// handle instruments h under name after wrapping it in ms.
func (d *Deps) handle(name string, h httprouter.Handle, ms ...middleware.Middleware) httprouter.Handle {
	return middleware.Instrument(d.Metrics, name, middleware.Chain(ms...)(h))
}

func (d *Deps) role(roles ...string) middleware.Middleware {
	return d.Tokens.Require(roles...)
}

func (d *Deps) limited() middleware.Middleware {
	return d.Limiter.Limit
}

// Index is the health check.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func AddUtilityRoutes(router *httprouter.Router, d *Deps) {
	router.GET("/health", Index)
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())
}

func AddAuthRoutes(router *httprouter.Router, d *Deps) {
	router.POST("/api/customers/register", d.handle("customers.register", d.Auth.RegisterCustomerHandler, d.limited()))
	router.POST("/api/customers/login", d.handle("customers.login", d.Auth.LoginCustomerHandler, d.limited()))
	router.POST("/api/sellers/register", d.handle("sellers.register", d.Auth.RegisterSellerHandler, d.limited()))
	router.POST("/api/sellers/login", d.handle("sellers.login", d.Auth.LoginSellerHandler, d.limited()))
	router.GET("/api/auth/auth-check", d.handle("auth.check", d.Auth.AuthCheck, d.role()))
}

func AddCustomerRoutes(router *httprouter.Router, d *Deps) {
	c := d.Customers
	router.GET("/api/customers/profile", d.handle("customers.profile", c.GetProfile, d.role(customer)))
	router.GET("/api/customers/get-all-customers", d.handle("customers.list", c.GetAllCustomers, d.role(customer)))
	router.GET("/api/customers/stats", d.handle("customers.stats", c.GetStats, d.role(customer)))
	router.GET("/api/customers/activities", d.handle("customers.activities", c.GetActivities, d.role(customer)))
	router.GET("/api/customers/notifications", d.handle("customers.notifications", c.GetNotifications, d.role(customer)))
	router.PATCH("/api/customers/update", d.handle("customers.update", c.UpdateCustomer, d.role(customer)))
	router.PATCH("/api/customers/notifications/seen", d.handle("customers.notifications_seen", c.MarkNotificationsSeen, d.role(customer)))
}

func AddSellerRoutes(router *httprouter.Router, d *Deps) {
	s := d.Sellers
	router.GET("/api/sellers/get-profile", d.handle("sellers.profile", s.GetProfile, d.role(seller)))
	router.GET("/api/sellers/get-all-sellers", d.handle("sellers.list", s.GetAllSellers, d.role(seller)))
	router.GET("/api/sellers/notifications", d.handle("sellers.notifications", s.GetNotifications, d.role(seller)))
	router.GET("/api/sellers/payments", d.handle("sellers.payments", s.GetPayments, d.role(seller)))
	router.PATCH("/api/sellers/notifications/seen", d.handle("sellers.notifications_seen", s.MarkNotificationsSeen, d.role(seller)))
}

func AddProductRoutes(router *httprouter.Router, d *Deps) {
	p := d.Products
	router.POST("/api/products/create", d.handle("products.create", p.CreateProduct, d.role(seller)))
	router.GET("/api/products/get-all", d.handle("products.list", p.GetAllProducts, d.role(seller)))
	router.GET("/api/products/search", d.handle("products.search", p.SearchProducts, d.role(customer, seller)))
	router.GET("/api/products/get-product/:id", d.handle("products.get", p.GetProduct, d.role(customer, seller)))
	router.POST("/api/products/get-all-by-id", d.handle("products.get_many", p.GetProductsByIDs, d.role(customer, seller)))
	router.PATCH("/api/products/update-product/:id", d.handle("products.update", p.UpdateProduct, d.role(seller)))
	router.DELETE("/api/products/delete/:id", d.handle("products.delete", p.DeleteProduct, d.role(seller)))
}

func AddCartRoutes(router *httprouter.Router, d *Deps) {
	router.POST("/api/carts/add", d.handle("carts.add", d.Carts.AddToCart, d.role(customer)))
	router.GET("/api/carts/get-all", d.handle("carts.list", d.Carts.GetCartItems, d.role(customer)))
	router.DELETE("/api/carts/:id", d.handle("carts.remove", d.Carts.RemoveFromCart, d.role(customer)))
}

func AddWishlistRoutes(router *httprouter.Router, d *Deps) {
	router.POST("/api/wishlists/add", d.handle("wishlists.add", d.Wishlists.AddToWishlist, d.role(customer)))
	router.GET("/api/wishlists/get-all", d.handle("wishlists.list", d.Wishlists.GetWishlistItems, d.role(customer)))
	router.DELETE("/api/wishlists/:id", d.handle("wishlists.remove", d.Wishlists.RemoveFromWishlist, d.role(customer)))
}

func AddAddressRoutes(router *httprouter.Router, d *Deps) {
	a := d.Addresses
	router.POST("/api/addresses/add", d.handle("addresses.add", a.AddAddress, d.role(customer)))
	router.GET("/api/addresses/all", d.handle("addresses.list", a.GetAllAddresses, d.role(customer)))
	router.PATCH("/api/addresses/:id", d.handle("addresses.update", a.UpdateAddress, d.role(customer)))
	router.DELETE("/api/addresses/:id", d.handle("addresses.delete", a.DeleteAddress, d.role(customer)))
	router.PATCH("/api/addresses/:id/default", d.handle("addresses.set_default", a.SetDefaultAddress, d.role(customer)))
}

func AddOrderRoutes(router *httprouter.Router, d *Deps) {
	o := d.Orders
	router.GET("/api/orders/get-all", d.handle("orders.list", o.GetAllOrders, d.role(customer)))
	router.GET("/api/orders/payments", d.handle("orders.payments", o.GetPayments, d.role(customer)))
	router.GET("/api/orders/seller", d.handle("orders.seller_list", o.GetSellerOrders, d.role(seller)))
	router.GET("/api/orders/seller/:id", d.handle("orders.seller_get", o.GetSellerOrder, d.role(seller)))
	router.GET("/api/orders/status-counts", d.handle("orders.status_counts", o.GetStatusCounts, d.role(seller)))
	router.PATCH("/api/orders/status/:orderId", d.handle("orders.status", o.UpdateOrderStatus, d.role(customer, seller)))
}
