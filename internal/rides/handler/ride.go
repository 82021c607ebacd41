package handler

import (
	"net/http"

	"reservations/internal/rides/service"
	httputil "reservations/pkg/http"
	"reservations/pkg/logger"
	"reservations/pkg/middleware"
	"reservations/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type RideHandler struct {
	service service.RideService
	log     *logger.Logger
}

func NewRideHandler(service service.RideService, log *logger.Logger) *RideHandler {
	return &RideHandler{
		service: service,
		log:     log,
	}
}

func (h *RideHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateRideRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, "Create", err)
		return
	}

	ride, err := h.service.Create(r.Context(), middleware.PrincipalFrom(r.Context()), &req)
	if err != nil {
		h.fail(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, ride); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *RideHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ride, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.fail(w, "GetByID", err)
		return
	}
	h.ok(w, "GetByID", ride)
}

func (h *RideHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.fail(w, "GetAll", err)
		return
	}

	rides, total, err := h.service.GetAll(r.Context(), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		h.fail(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, rides, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *RideHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.RideStatusUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.fail(w, "UpdateStatus", err)
		return
	}

	ride, err := h.service.UpdateStatus(r.Context(), middleware.PrincipalFrom(r.Context()), ps.ByName("id"), &update)
	if err != nil {
		h.fail(w, "UpdateStatus", err)
		return
	}
	h.ok(w, "UpdateStatus", ride)
}

func (h *RideHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), middleware.PrincipalFrom(r.Context()), ps.ByName("id")); err != nil {
		h.fail(w, "Delete", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *RideHandler) Capacity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	l, err := h.service.Capacity(r.Context(), ps.ByName("id"))
	if err != nil {
		h.fail(w, "Capacity", err)
		return
	}
	h.ok(w, "Capacity", l)
}

func (h *RideHandler) BookSeats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.BookSeatsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(w, "BookSeats", err)
		return
	}

	booking, err := h.service.BookSeats(r.Context(), middleware.PrincipalFrom(r.Context()), ps.ByName("id"), &req)
	if err != nil {
		h.fail(w, "BookSeats", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "BookSeats", "operation", "WriteCreated", "error", err)
	}
}

func (h *RideHandler) ManageBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.PassengerStatusUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.fail(w, "ManageBooking", err)
		return
	}

	ride, err := h.service.ManageBooking(r.Context(), middleware.PrincipalFrom(r.Context()), ps.ByName("id"), ps.ByName("passengerId"), &update)
	if err != nil {
		h.fail(w, "ManageBooking", err)
		return
	}
	h.ok(w, "ManageBooking", ride)
}

func (h *RideHandler) CancelOwnBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ride, err := h.service.CancelOwnBooking(r.Context(), middleware.PrincipalFrom(r.Context()), ps.ByName("id"))
	if err != nil {
		h.fail(w, "CancelOwnBooking", err)
		return
	}
	h.ok(w, "CancelOwnBooking", ride)
}

func (h *RideHandler) ok(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *RideHandler) fail(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RideHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/rides", h.Create)
	router.GET("/api/v1/rides", h.GetAll)
	router.GET("/api/v1/rides/id/:id", h.GetByID)
	router.PATCH("/api/v1/rides/id/:id/status", h.UpdateStatus)
	router.DELETE("/api/v1/rides/id/:id", h.Delete)
	router.GET("/api/v1/rides/id/:id/capacity", h.Capacity)
	router.POST("/api/v1/rides/id/:id/bookings", h.BookSeats)
	router.PATCH("/api/v1/rides/id/:id/bookings/:passengerId", h.ManageBooking)
	router.DELETE("/api/v1/rides/id/:id/bookings", h.CancelOwnBooking)
}
