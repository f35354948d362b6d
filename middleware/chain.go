package middleware

import "github.com/julienschmidt/httprouter"

type Middleware func(httprouter.Handle) httprouter.Handle

// Chain composes ms so that the first one runs outermost.
func Chain(ms ...Middleware) Middleware {
	return func(final httprouter.Handle) httprouter.Handle {
		for i := len(ms) - 1; i >= 0; i-- {
			final = ms[i](final)
		}
		return final
	}
}
