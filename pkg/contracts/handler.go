package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every resource handler (rooms, bookings, rides)
// mounted by pkg/app.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
