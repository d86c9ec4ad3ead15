package scheduling

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/careflow/careflow/internal/domain/directory"
	"github.com/careflow/careflow/internal/domain/records"
	"github.com/careflow/careflow/internal/platform/auth"
	"github.com/careflow/careflow/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/doctors/:id/slots", h.ListDoctorSlots)
	api.PUT("/doctors/:id/slots", h.UpsertDoctorSlots, auth.RequireRole(auth.RoleReceptionist))

	api.POST("/appointments", h.Book, auth.RequireRole(auth.RolePatient))
	api.GET("/appointments", h.ListAppointments)
	api.GET("/appointments/:id", h.AppointmentDetail)
	api.DELETE("/appointments/:id", h.Cancel, auth.RequireRole(auth.RolePatient, auth.RoleReceptionist))

	moderate := auth.RequireRole(auth.RoleReceptionist)
	api.POST("/appointments/:id/approve", h.transition(ActionApprove), moderate)
	api.POST("/appointments/:id/decline", h.transition(ActionDecline), moderate)
	api.POST("/appointments/:id/reapprove", h.transition(ActionReapprove), moderate)
	api.POST("/appointments/:id/complete", h.transition(ActionComplete), auth.RequireRole(auth.RoleDoctor))
	api.PATCH("/appointments/:id/reschedule", h.Reschedule, moderate)

	api.POST("/appointments/:id/records", h.CreateAndAttachRecord, auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
	api.PUT("/appointments/:id/records/:recordID", h.AttachRecord, auth.RequireRole(auth.RolePatient, auth.RoleDoctor))
	api.GET("/appointments/:id/records", h.ListAppointmentRecords)
}

func (h *Handler) ListDoctorSlots(c echo.Context) error {
	doctorID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	slots, err := h.svc.ListDoctorSlots(c.Request().Context(), doctorID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) UpsertDoctorSlots(c echo.Context) error {
	doctorID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Slots []SlotUpsert `json:"slots"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	slots, err := h.svc.UpsertDoctorSlots(c.Request().Context(), actor(c), doctorID, body.Slots)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) Book(c echo.Context) error {
	var in BookInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, err := h.svc.Book(c.Request().Context(), actor(c), in)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	var f Filter
	if v := c.QueryParam("patient_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid patient_id")
		}
		f.PatientID = &id
	}
	if v := c.QueryParam("doctor_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		f.DoctorID = &id
	}
	if v := c.QueryParam("status"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			st, ok := ParseStatus(strings.TrimSpace(raw))
			if !ok {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid status: "+raw)
			}
			f.Statuses = append(f.Statuses, st)
		}
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAppointments(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AppointmentDetail(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.svc.AppointmentDetail(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) transition(action Action) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := paramID(c, "id")
		if err != nil {
			return err
		}
		appt, err := h.svc.Transition(c.Request().Context(), actor(c), id, action)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(http.StatusOK, appt)
	}
}

func (h *Handler) Reschedule(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		RescheduleDate string `json:"reschedule_date"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	appt, err := h.svc.Reschedule(c.Request().Context(), actor(c), id, body.RescheduleDate)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Cancel(c.Request().Context(), actor(c), id); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateAndAttachRecord(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Reason  string `json:"reason"`
		DataRef string `json:"data_ref"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.CreateAndAttachRecord(c.Request().Context(), actor(c), id, body.Reason, body.DataRef)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) AttachRecord(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	recordID, err := paramID(c, "recordID")
	if err != nil {
		return err
	}
	appt, err := h.svc.AttachRecord(c.Request().Context(), actor(c), id, recordID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) ListAppointmentRecords(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	recs, err := h.svc.ResolveRecords(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, recs)
}

func actor(c echo.Context) auth.Actor {
	a, _ := auth.ActorFromContext(c.Request().Context())
	return a
}

func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func mapError(err error) error {
	var vErr *ValidationError
	var tErr *InvalidTransitionError
	switch {
	case errors.Is(err, ErrSlotNotFound),
		errors.Is(err, ErrAppointmentNotFound),
		errors.Is(err, records.ErrNotFound),
		errors.Is(err, directory.ErrPatientNotFound),
		errors.Is(err, directory.ErrDoctorNotFound),
		errors.Is(err, directory.ErrReceptionistNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.As(err, &vErr), errors.Is(err, records.ErrReasonRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSlotTaken),
		errors.Is(err, ErrCancelCompleted),
		errors.Is(err, ErrCancelConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &tErr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
