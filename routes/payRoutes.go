package routes

import (
	"net/http"

	"bazaar/middleware"

	"github.com/julienschmidt/httprouter"
)

// AddPayRoutes wires checkout and the gateway callbacks. The callbacks carry
// no token; the gateway posts back to them.
func AddPayRoutes(router *httprouter.Router, d *Deps) {
	c := d.Checkout

	router.POST("/api/orders/add-order", d.handle("orders.add", c.AddOrder,
		d.limited(),
		d.role(customer),
		func(next httprouter.Handle) httprouter.Handle {
			return middleware.Idempotency(d.Idempotency, d.Log, next)
		},
	))

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		router.Handle(method, "/api/payment/success", d.handle("payment.success", c.PaymentSuccess))
		router.Handle(method, "/api/payment/fail", d.handle("payment.fail", c.PaymentFail))
		router.Handle(method, "/api/payment/cancel", d.handle("payment.cancel", c.PaymentCancel))
	}
	router.POST("/api/payment/ipn", d.handle("payment.ipn", c.PaymentIPN))
}
