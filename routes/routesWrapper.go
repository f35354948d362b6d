package routes

import "github.com/julienschmidt/httprouter"

// RoutesWrapper registers every route group on router.
func RoutesWrapper(router *httprouter.Router, d *Deps) {
	AddUtilityRoutes(router, d)
	AddAuthRoutes(router, d)
	AddCustomerRoutes(router, d)
	AddSellerRoutes(router, d)
	AddProductRoutes(router, d)
	AddCartRoutes(router, d)
	AddWishlistRoutes(router, d)
	AddAddressRoutes(router, d)
	AddOrderRoutes(router, d)
	AddPayRoutes(router, d)
}
