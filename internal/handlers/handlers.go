package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/wellywell/printdesk/internal/auth"
	"github.com/wellywell/printdesk/internal/backend"
	"github.com/wellywell/printdesk/internal/dashboard"
	"github.com/wellywell/printdesk/internal/db"
	"github.com/wellywell/printdesk/internal/ordertime"
	"github.com/wellywell/printdesk/internal/types"
)

type HandlerSet struct {
	secret               []byte
	cookieExpiresSeconds int
	database             *db.Database
	engine               *dashboard.Engine
}

var (
	ErrCouldNotParseBody = errors.New("could not parse body")
	ErrAuthDataEmpty     = errors.New("login or password cannot be empty")
)

func NewHandlerSet(secret []byte, cookieExpiresSecs int, database *db.Database, engine *dashboard.Engine) *HandlerSet {
	return &HandlerSet{
		secret:               secret,
		cookieExpiresSeconds: cookieExpiresSecs,
		database:             database,
		engine:               engine,
	}
}

func (h *HandlerSet) parseAuthData(body []byte) (username string, password string, err error) {

	var data struct {
		Username string `json:"login"`
		Password string `json:"password"`
	}

	err = json.Unmarshal(body, &data)
	if err != nil {
		return "", "", ErrCouldNotParseBody
	}

	if data.Username == "" || data.Password == "" {
		return "", "", ErrAuthDataEmpty
	}

	return data.Username, data.Password, nil
}

func (h *HandlerSet) handleAuthErrors(err error, w http.ResponseWriter) {

	if errors.Is(err, ErrCouldNotParseBody) {
		http.Error(w, "Could not parse body",
			http.StatusBadRequest)
	} else if errors.Is(err, ErrAuthDataEmpty) {
		http.Error(w, "Login and password cannot be empty",
			http.StatusBadRequest)
	} else {
		http.Error(w, "Unknown error", http.StatusInternalServerError)
	}
}

// handleUpstreamError maps the order API error taxonomy onto operator
// visible statuses. Fetch failures never blank the page; the stale
// view stays served.
func handleUpstreamError(err error, w http.ResponseWriter) {
	var httpErr *backend.HTTPError
	var netErr *backend.NetworkError
	var decodeErr *backend.DecodeError

	switch {
	case errors.As(err, &httpErr), errors.As(err, &netErr), errors.As(err, &decodeErr):
		logger.Error(err)
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		logger.Error(err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func (h *HandlerSet) HandleLogin(w http.ResponseWriter, req *http.Request) {

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	username, password, err := h.parseAuthData(body)

	if err != nil {
		h.handleAuthErrors(err, w)
		return
	}

	passwordInDB, err := h.database.GetOperatorHashedPassword(req.Context(), username)
	if err != nil {
		var notFound *db.OperatorNotFoundError
		if errors.As(err, &notFound) {
			http.Error(w, "Operator not found", http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if !auth.CheckPasswordHash(password, passwordInDB) {
		http.Error(w, "Wrong password", http.StatusUnauthorized)
		return
	}

	err = auth.SetAuthCookie(username, w, h.secret, h.cookieExpiresSeconds)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	w.Header().Set("content-type", "text/plain")

	_, err = w.Write([]byte("success"))
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
	}
}

func (h *HandlerSet) HandleRegisterOperator(w http.ResponseWriter, req *http.Request) {

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	username, password, err := h.parseAuthData(body)

	if err != nil {
		h.handleAuthErrors(err, w)
		return
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	err = h.database.CreateOperator(req.Context(), username, hashed)
	if err != nil {
		var exists *db.OperatorExistsError
		if errors.As(err, &exists) {
			http.Error(w, "Operator exists", http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	err = auth.SetAuthCookie(username, w, h.secret, h.cookieExpiresSeconds)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain")

	_, err = w.Write([]byte("success"))
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
	}
}

type orderView struct {
	ID           string `json:"id"`
	Buyer        string `json:"buyer"`
	Message      string `json:"msg"`
	Amount       int    `json:"amount"`
	IsValid      bool   `json:"is_valid_order"`
	Status       string `json:"status"`
	StatusLabel  string `json:"status_label"`
	Error        string `json:"error,omitempty"`
	ReprintCount int    `json:"reprint_count"`
	Date         string `json:"date"`
}

type viewResponse struct {
	Orders      []orderView        `json:"orders"`
	Pager       types.PagerState   `json:"pager"`
	Filter      types.FilterConfig `json:"filter"`
	AutoRefresh bool               `json:"auto_refresh"`
}

func toOrderView(o types.Order) orderView {
	date := "-"
	if ts, ok := o.Time(); ok {
		date = ordertime.FormatDay(ts)
	}
	return orderView{
		ID:           o.ID,
		Buyer:        o.BuyerID,
		Message:      o.RawMessage,
		Amount:       o.Amount,
		IsValid:      o.IsValid,
		Status:       string(o.Status),
		StatusLabel:  o.Status.Label(),
		Error:        o.ErrorMessage,
		ReprintCount: o.ReprintCount,
		Date:         date,
	}
}

func (h *HandlerSet) writeView(w http.ResponseWriter) {
	snapshot := h.engine.View()

	resp := viewResponse{
		Orders:      make([]orderView, 0, len(snapshot.Orders)),
		Pager:       snapshot.Pager,
		Filter:      snapshot.Filter,
		AutoRefresh: snapshot.AutoRefresh,
	}
	for _, o := range snapshot.Orders {
		resp.Orders = append(resp.Orders, toOrderView(o))
	}

	response, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Could not serialize result",
			http.StatusInternalServerError)
		return
	}
	w.Header().Set("content-type", "application/json")
	_, err = w.Write(response)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
	}
}

func (h *HandlerSet) HandleGetOrders(w http.ResponseWriter, req *http.Request) {
	h.writeView(w)
}

func (h *HandlerSet) HandleForceRefresh(w http.ResponseWriter, req *http.Request) {
	if err := h.engine.ForceRefresh(req.Context()); err != nil {
		handleUpstreamError(err, w)
		return
	}
	h.writeView(w)
}

func (h *HandlerSet) HandleRequestPage(w http.ResponseWriter, req *http.Request) {

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	var data struct {
		Page int `json:"page"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		http.Error(w, "Could not parse body",
			http.StatusBadRequest)
		return
	}

	if err := h.engine.RequestPage(req.Context(), data.Page); err != nil {
		handleUpstreamError(err, w)
		return
	}
	h.writeView(w)
}

func (h *HandlerSet) HandleGetOrder(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	order, jobs, err := h.engine.OrderDetail(req.Context(), id)
	if err != nil {
		handleUpstreamError(err, w)
		return
	}

	response, err := json.Marshal(struct {
		Order     *backend.OrderRecord `json:"order"`
		PrintJobs []backend.PrintJob   `json:"print_jobs"`
	}{Order: order, PrintJobs: jobs})
	if err != nil {
		http.Error(w, "Could not serialize result",
			http.StatusInternalServerError)
		return
	}
	w.Header().Set("content-type", "application/json")
	_, err = w.Write(response)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
	}
}

func (h *HandlerSet) HandleEditOrder(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	var data struct {
		Amount     int    `json:"amount"`
		RawMessage string `json:"raw_message"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		http.Error(w, "Could not parse body",
			http.StatusUnprocessableEntity)
		return
	}

	err = h.engine.EditOrder(req.Context(), id, data.Amount, data.RawMessage)
	if err != nil {
		if errors.Is(err, dashboard.ErrNegativeAmount) {
			http.Error(w, "Invalid amount",
				http.StatusUnprocessableEntity)
			return
		}
		handleUpstreamError(err, w)
		return
	}
	h.writeView(w)
}

func (h *HandlerSet) HandleDeleteOrder(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	if err := h.engine.SoftDeleteOrder(req.Context(), id); err != nil {
		handleUpstreamError(err, w)
		return
	}
	h.writeView(w)
}

func (h *HandlerSet) HandleReprintOrder(w http.ResponseWriter, req *http.Request) {
	id := chi.URLParam(req, "id")

	if err := h.engine.ReprintOrder(req.Context(), id); err != nil {
		handleUpstreamError(err, w)
		return
	}
	h.writeView(w)
}

func (h *HandlerSet) HandleGetFilter(w http.ResponseWriter, req *http.Request) {

	response, err := json.Marshal(struct {
		Filter    types.FilterConfig `json:"filter"`
		RangeDays int                `json:"range_days"`
	}{Filter: h.engine.Filter(), RangeDays: h.engine.RangeDays()})
	if err != nil {
		http.Error(w, "Could not serialize result",
			http.StatusInternalServerError)
		return
	}
	w.Header().Set("content-type", "application/json")
	_, err = w.Write(response)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
	}
}

func (h *HandlerSet) HandlePutFilter(w http.ResponseWriter, req *http.Request) {

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	var cfg types.FilterConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		http.Error(w, "Could not parse body",
			http.StatusBadRequest)
		return
	}

	if err := h.engine.SetFilter(req.Context(), cfg); err != nil {
		logger.Error(err)
		http.Error(w, "Could not save filter", http.StatusInternalServerError)
		return
	}
	h.writeView(w)
}

func (h *HandlerSet) HandleSetRangeDays(w http.ResponseWriter, req *http.Request) {

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	var data struct {
		Days int `json:"days"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		http.Error(w, "Could not parse body",
			http.StatusBadRequest)
		return
	}

	if err := h.engine.SetRangeDays(req.Context(), data.Days); err != nil {
		logger.Error(err)
		http.Error(w, "Could not save setting", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *HandlerSet) HandleSetAutoRefresh(w http.ResponseWriter, req *http.Request) {

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	var data struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		http.Error(w, "Could not parse body",
			http.StatusBadRequest)
		return
	}

	h.engine.SetAutoRefresh(data.Enabled)
	w.WriteHeader(http.StatusOK)
}

// HandleSurface is how the UI reports overlay open/close, feeding the
// scheduler busy gate.
func (h *HandlerSet) HandleSurface(w http.ResponseWriter, req *http.Request) {

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	var data struct {
		ID   string `json:"id"`
		Open bool   `json:"open"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		http.Error(w, "Could not parse body",
			http.StatusBadRequest)
		return
	}

	if data.Open {
		err = h.engine.OpenSurface(data.ID)
	} else {
		err = h.engine.CloseSurface(data.ID)
	}
	if err != nil {
		http.Error(w, "Unknown surface",
			http.StatusUnprocessableEntity)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *HandlerSet) HandleExportText(w http.ResponseWriter, req *http.Request) {
	content := h.engine.ExportText()

	ymd := time.Now().Format("2006-01-02")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="buyer_summaries_`+ymd+`.txt"`)
	_, err := w.Write([]byte(content))
	if err != nil {
		logger.Error(err)
	}
}

func (h *HandlerSet) HandleExportCSV(w http.ResponseWriter, req *http.Request) {
	content := h.engine.ExportCSV()

	ymd := time.Now().Format("2006-01-02")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="buyer_summary_`+ymd+`.csv"`)
	_, err := w.Write([]byte(content))
	if err != nil {
		logger.Error(err)
	}
}
