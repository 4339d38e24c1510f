package rest

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dkverwaltung/dkledger/internal/application/dto"
	"github.com/dkverwaltung/dkledger/internal/application/usecase"
	"github.com/dkverwaltung/dkledger/internal/domain/model"
	"github.com/dkverwaltung/dkledger/internal/domain/port"
	"github.com/dkverwaltung/dkledger/internal/domain/report"
	"github.com/dkverwaltung/dkledger/internal/domain/service"
	"github.com/dkverwaltung/dkledger/internal/presentation/view"
)

// ReportHandler serves statements and reports as JSON.
type ReportHandler struct {
	queries usecase.Queries
	logger  *slog.Logger
	now     func() time.Time
}

func NewReportHandler(queries usecase.Queries, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{queries: queries, logger: logger, now: time.Now}
}

type errorResponse struct {
	Error string `json:"error"`
}

var errBadRequest = errors.New("bad request")

func (h *ReportHandler) Statement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid contract id"})
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1900 || year > 9999 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid year"})
		return
	}

	resp, err := h.queries.Statement.Execute(r.Context(), dto.BuildStatementRequest{ContractID: id, Year: year})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view.FromStatement(resp))
}

func (h *ReportHandler) TransferList(w http.ResponseWriter, r *http.Request) {
	year, err := h.yearParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	contact := 0
	if s := r.URL.Query().Get("contact"); s != "" {
		contact, err = strconv.Atoi(s)
		if err != nil || contact < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid contact"})
			return
		}
	}

	resp, err := h.queries.TransferList.Execute(r.Context(), dto.TransferListRequest{Year: year, ContactNumber: contact})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view.FromTransferList(resp))
}

func (h *ReportHandler) AverageRate(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.dateParam(r, "as_of", civil.DateOf(h.now()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.queries.AverageRate.Execute(r.Context(), dto.AverageRateRequest{AsOf: asOf})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view.FromAverageRate(resp))
}

// RemainingDuration groups contracts by remaining term as of Dec 31 of the
// requested year.
func (h *ReportHandler) RemainingDuration(w http.ResponseWriter, r *http.Request) {
	year, err := h.yearParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cutoff := civil.Date{Year: year, Month: time.December, Day: 31}

	resp, err := h.queries.RemainingDuration.Execute(r.Context(), dto.RemainingDurationRequest{Cutoff: cutoff})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view.FromRemainingDuration(resp))
}

func (h *ReportHandler) ExpiringContracts(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.dateParam(r, "as_of", civil.DateOf(h.now()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp, err := h.queries.ExpiringContracts.Execute(r.Context(), dto.ExpiringContractsRequest{AsOf: asOf})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view.FromExpiringContracts(resp))
}

// yearParam reads ?year=, defaulting to the current year.
func (h *ReportHandler) yearParam(r *http.Request) (int, error) {
	s := r.URL.Query().Get("year")
	if s == "" {
		return h.now().Year(), nil
	}
	year, err := strconv.Atoi(s)
	if err != nil || year < 1900 || year > 9999 {
		return 0, errBadRequest
	}
	return year, nil
}

func (h *ReportHandler) dateParam(r *http.Request, name string, def civil.Date) (civil.Date, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, errBadRequest
	}
	return d, nil
}

func (h *ReportHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := httpStatus(err)
	if code >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, code, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func httpStatus(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, port.ErrContractNotFound):
		return http.StatusNotFound
	case errors.Is(err, report.ErrInconsistentLedger),
		errors.Is(err, report.ErrUndefinedAverage),
		errors.Is(err, service.ErrNoApplicableRate),
		errors.Is(err, service.ErrNegativeDayCount),
		errors.Is(err, model.ErrNoVersions),
		errors.Is(err, model.ErrVersionOrder):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
