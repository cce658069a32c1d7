package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"yatranepal/internal/reservations/service"
	apperrors "yatranepal/pkg/errors"
	httputil "yatranepal/pkg/http"
	"yatranepal/pkg/logger"
	"yatranepal/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const dateLayout = "2006-01-02"

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var reservation model.Reservation
	if err := json.NewDecoder(r.Body).Decode(&reservation); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &reservation); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	reservations, total, err := h.service.GetAll(r.Context(), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) GetByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByUser", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	reservations, total, err := h.service.GetByUser(r.Context(), ps.ByName("userId"), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByUser", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetByUser", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) GetByHotel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByHotel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var date *time.Time
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid date format, must be YYYY-MM-DD")); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "GetByHotel", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		date = &parsed
	}

	reservations, total, err := h.service.GetByHotel(r.Context(), ps.ByName("hotelId"), r.URL.Query().Get("status"), date, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByHotel", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetByHotel", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) GetCancellationRequests(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetCancellationRequests", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	reservations, total, err := h.service.GetCancellationRequests(r.Context(), limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetCancellationRequests", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetCancellationRequests", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) GetByTransactionID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.writeReferenceLookup(w, "GetByTransactionID", func() (*model.Reservation, error) {
		return h.service.GetByTransactionID(r.Context(), ps.ByName("id"))
	})
}

func (h *ReservationHandler) GetByPidx(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.writeReferenceLookup(w, "GetByPidx", func() (*model.Reservation, error) {
		return h.service.GetByPidx(r.Context(), ps.ByName("pidx"))
	})
}

func (h *ReservationHandler) GetByProductCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.writeReferenceLookup(w, "GetByProductCode", func() (*model.Reservation, error) {
		return h.service.GetByProductCode(r.Context(), ps.ByName("code"))
	})
}

func (h *ReservationHandler) writeReferenceLookup(w http.ResponseWriter, handlerName string, lookup func() (*model.Reservation, error)) {
	reservation, err := lookup()
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", handlerName, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.writeTransition(w, "Confirm", func() (*model.Reservation, error) {
		return h.service.Confirm(r.Context(), ps.ByName("id"))
	})
}

func (h *ReservationHandler) RequestCancellation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.writeTransition(w, "RequestCancellation", func() (*model.Reservation, error) {
		return h.service.RequestCancellation(r.Context(), ps.ByName("id"))
	})
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.writeTransition(w, "Cancel", func() (*model.Reservation, error) {
		return h.service.Cancel(r.Context(), ps.ByName("id"))
	})
}

func (h *ReservationHandler) writeTransition(w http.ResponseWriter, handlerName string, transition func() (*model.Reservation, error)) {
	reservation, err := transition()
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", handlerName, "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.PaymentStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdatePaymentStatus", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	reservation, err := h.service.UpdatePaymentStatus(r.Context(), ps.ByName("id"), update.PaymentStatus)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdatePaymentStatus", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdatePaymentStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	hotelID := query.Get("hotel_id")
	roomIDs := splitCSV(query.Get("room_ids"))

	var dates []time.Time
	for _, dateStr := range splitCSV(query.Get("dates")) {
		parsed, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid date format, must be YYYY-MM-DD: "+dateStr)); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "CheckAvailability", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		dates = append(dates, parsed)
	}

	report, err := h.service.CheckAvailability(r.Context(), hotelID, roomIDs, dates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, report); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.GetAll)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.POST("/api/v1/reservations/id/:id/confirm", h.Confirm)
	router.POST("/api/v1/reservations/id/:id/request-cancellation", h.RequestCancellation)
	router.POST("/api/v1/reservations/id/:id/cancel", h.Cancel)
	router.PATCH("/api/v1/reservations/id/:id/payment-status", h.UpdatePaymentStatus)
	router.GET("/api/v1/reservations/user/:userId", h.GetByUser)
	router.GET("/api/v1/reservations/hotel/:hotelId", h.GetByHotel)
	router.GET("/api/v1/reservations/cancellation-requests", h.GetCancellationRequests)
	router.GET("/api/v1/reservations/transaction/:id", h.GetByTransactionID)
	router.GET("/api/v1/reservations/pidx/:pidx", h.GetByPidx)
	router.GET("/api/v1/reservations/product-code/:code", h.GetByProductCode)
	router.GET("/api/v1/availability", h.CheckAvailability)
}
