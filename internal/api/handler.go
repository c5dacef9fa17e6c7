// Package api is the HTTP surface of the till engine: JSON handlers,
// the settings event stream and the route table.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"kassensystem/internal/archive"
	"kassensystem/internal/auth"
	"kassensystem/internal/checkout"
	"kassensystem/internal/inventory"
	"kassensystem/internal/logger"
	"kassensystem/internal/models"
	"kassensystem/internal/orders"
	"kassensystem/internal/session"
	"kassensystem/internal/tips"
)

type Handler struct {
	Session   *session.Session
	Gate      *auth.Gate
	Checkout  *checkout.Service
	Orders    *orders.Service
	Tips      *tips.Service
	Inventory *inventory.Service
	Archive   *archive.Service
	Logger    *logger.Logger
}

func NewHandler(
	sess *session.Session,
	gate *auth.Gate,
	co *checkout.Service,
	ord *orders.Service,
	tp *tips.Service,
	inv *inventory.Service,
	arc *archive.Service,
	log *logger.Logger,
) *Handler {
	return &Handler{
		Session:   sess,
		Gate:      gate,
		Checkout:  co,
		Orders:    ord,
		Tips:      tp,
		Inventory: inv,
		Archive:   arc,
		Logger:    log,
	}
}

func decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func lineIDParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "lineID"))
}

// --- Catalog ---

func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Session.Products()
	if err != nil {
		writeError(w, "failed to load products", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("products", products))
}

// --- Event session ---

// SessionView is the settings snapshot handed to clients; the passcode
// itself never leaves the engine.
type SessionView struct {
	Step            session.SetupStep `json:"step"`
	PendingName     string            `json:"pending_name,omitempty"`
	ActiveEvent     string            `json:"active_event,omitempty"`
	EventStart      time.Time         `json:"event_start,omitzero"`
	InitialBalance  models.Cents      `json:"initial_balance"`
	NextOrderNumber int               `json:"next_order_number"`
}

func (h *Handler) sessionView() SessionView {
	settings := h.Session.Settings()
	return SessionView{
		Step:            h.Session.SetupState(),
		PendingName:     h.Session.PendingName(),
		ActiveEvent:     settings.ActiveEvent,
		EventStart:      settings.ActiveEventStart,
		InitialBalance:  settings.ActiveEventInitialBalance,
		NextOrderNumber: settings.NextOrderNumber,
	}
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SuccessResponse("session", h.sessionView()))
}

func (h *Handler) BeginSetup(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.BeginSetup(); err != nil {
		writeError(w, "cannot begin setup", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("setup started", h.sessionView()))
}

func (h *Handler) SubmitSetupName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	if err := h.Session.SubmitName(req.Name); err != nil {
		writeError(w, "cannot set event name", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("event name set", h.sessionView()))
}

func (h *Handler) SubmitSetupBalance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Balance models.Cents `json:"balance"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	if err := h.Session.SubmitBalance(req.Balance); err != nil {
		writeError(w, "cannot start event", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("event started", h.sessionView()))
}

func (h *Handler) SetupBack(w http.ResponseWriter, r *http.Request) {
	if err := h.Session.Back(); err != nil {
		writeError(w, "cannot go back", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("back to name step", h.sessionView()))
}

func (h *Handler) AbandonSetup(w http.ResponseWriter, r *http.Request) {
	h.Session.Abandon()
	writeJSON(w, http.StatusOK, SuccessResponse("setup abandoned", h.sessionView()))
}

func (h *Handler) ChangePasscode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Current string `json:"current"`
		New     string `json:"new"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	if err := h.Gate.Verify(req.Current, auth.ModeChangePasscode); err != nil {
		writeError(w, "passcode change refused", err)
		return
	}
	if req.New == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("passcode change refused", "new passcode must not be empty"))
		return
	}
	if err := h.Session.UpdatePasscode(req.New); err != nil {
		writeError(w, "failed to save passcode", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("passcode updated", nil))
}

// --- Checkout ---

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SuccessResponse("checkout state", h.Checkout.State()))
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	state, err := h.Checkout.AddProduct(req.ProductID)
	if err != nil {
		writeError(w, "cannot add product", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("product added", state))
}

func (h *Handler) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	lineID, err := lineIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid line id", err.Error()))
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	state, err := h.Checkout.SetQuantity(lineID, req.Quantity)
	if err != nil {
		writeError(w, "cannot change quantity", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("quantity updated", state))
}

func (h *Handler) RemoveCartLine(w http.ResponseWriter, r *http.Request) {
	lineID, err := lineIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid line id", err.Error()))
		return
	}
	state, err := h.Checkout.RemoveLine(lineID)
	if err != nil {
		writeError(w, "cannot remove line", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("line removed", state))
}

func (h *Handler) OverridePrice(w http.ResponseWriter, r *http.Request) {
	lineID, err := lineIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid line id", err.Error()))
		return
	}
	var req struct {
		Price    models.Cents `json:"price"`
		Passcode string       `json:"passcode"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	state, err := h.Checkout.OverridePrice(lineID, req.Price, req.Passcode)
	if err != nil {
		writeError(w, "price override refused", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("price overridden", state))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SuccessResponse("cart cleared", h.Checkout.Clear()))
}

func (h *Handler) SelectTaxType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaxType models.TaxType `json:"tax_type"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	state, err := h.Checkout.SelectTaxType(req.TaxType)
	if err != nil {
		writeError(w, "cannot select tax type", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("tax type selected", state))
}

func (h *Handler) AddTender(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Denomination models.Cents `json:"denomination"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	state, err := h.Checkout.AddTender(req.Denomination)
	if err != nil {
		writeError(w, "cannot add tender", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("tender added", state))
}

func (h *Handler) ResetTender(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SuccessResponse("tender reset", h.Checkout.ResetTender()))
}

func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethod models.PaymentMethod `json:"payment_method"`
		Passcode      string               `json:"passcode"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	order, err := h.Checkout.Finalize(req.PaymentMethod, req.Passcode)
	if err != nil {
		writeError(w, "checkout refused", err)
		return
	}
	writeJSON(w, http.StatusCreated, SuccessResponse("order created", order))
}

// --- Order ledger ---

func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.Orders.List()
	if err != nil {
		writeError(w, "failed to load orders", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("orders", list))
}

func (h *Handler) GetOrderStats(w http.ResponseWriter, r *http.Request) {
	list, err := h.Session.Orders()
	if err != nil {
		writeError(w, "failed to load orders", err)
		return
	}
	payload := struct {
		Stats   orders.Stats           `json:"stats"`
		Volumes []orders.ProductVolume `json:"volumes"`
	}{orders.Aggregate(list), orders.Volumes(list)}
	writeJSON(w, http.StatusOK, SuccessResponse("order stats", payload))
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	var req struct {
		Passcode string              `json:"passcode"`
		Reason   models.CancelReason `json:"reason"`
		Note     string              `json:"note"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	order, err := h.Orders.Cancel(orderID, req.Passcode, req.Reason, req.Note)
	if err != nil {
		writeError(w, "cancellation refused", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("order cancelled", order))
}

func (h *Handler) ResetOrders(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passcode string `json:"passcode"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	if err := h.Orders.Reset(req.Passcode); err != nil {
		writeError(w, "reset refused", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("order ledger reset", nil))
}

// --- Tips ---

func (h *Handler) GetTips(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Tips       []models.Tip   `json:"tips"`
		Total      models.Cents   `json:"total"`
		QuickPicks []models.Cents `json:"quick_picks"`
	}{h.Tips.List(), h.Tips.Total(), h.Tips.QuickPicks()}
	writeJSON(w, http.StatusOK, SuccessResponse("tips", payload))
}

func (h *Handler) RecordTip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount models.Cents `json:"amount"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	tip, err := h.Tips.Record(req.Amount)
	if err != nil {
		writeError(w, "tip refused", err)
		return
	}
	writeJSON(w, http.StatusCreated, SuccessResponse("tip recorded", tip))
}

// --- Inventory ---

func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Inventory map[string]models.InventoryItem `json:"inventory"`
		Refills   []models.InventoryRefill        `json:"refills,omitempty"`
	}{h.Inventory.Snapshot(), h.Session.Settings().ActiveRefills}
	writeJSON(w, http.StatusOK, SuccessResponse("inventory", payload))
}

func (h *Handler) TrackInventory(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	var req struct {
		Start int `json:"start"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	if err := h.Inventory.Track(productID, req.Start); err != nil {
		writeError(w, "cannot track product", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("product tracked", h.Inventory.Snapshot()))
}

func (h *Handler) RefillInventory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items map[string]int `json:"items"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	if err := h.Inventory.Refill(req.Items); err != nil {
		writeError(w, "refill refused", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("inventory refilled", h.Inventory.Snapshot()))
}

// --- Archive & reconciliation ---

func (h *Handler) CloseEvent(w http.ResponseWriter, r *http.Request) {
	archived, err := h.Archive.Close()
	if err != nil {
		writeError(w, "cannot close event", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("event closed", archived))
}

func (h *Handler) GetArchive(w http.ResponseWriter, r *http.Request) {
	events, err := h.Archive.List()
	if err != nil {
		writeError(w, "failed to load archive", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("archive", events))
}

func (h *Handler) GetArchivedEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.Archive.Get(chi.URLParam(r, "eventID"))
	if err != nil {
		writeError(w, "archived event not found", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("archived event", ev))
}

func (h *Handler) GetEventReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Archive.Report(chi.URLParam(r, "eventID"))
	if err != nil {
		writeError(w, "report unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("event report", report))
}

func (h *Handler) GetEventReportQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Archive.ReportQR(chi.URLParam(r, "eventID"))
	if err != nil {
		writeError(w, "report unavailable", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handler) KassensturzActive(w http.ResponseWriter, r *http.Request) {
	var counts models.CashCount
	if err := decode(r, &counts); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	result, err := h.Archive.CountActive(counts)
	if err != nil {
		writeError(w, "kassensturz unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("kassensturz", result))
}

func (h *Handler) KassensturzArchived(w http.ResponseWriter, r *http.Request) {
	var counts models.CashCount
	if err := decode(r, &counts); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse("invalid request body", err.Error()))
		return
	}
	result, err := h.Archive.Count(chi.URLParam(r, "eventID"), counts)
	if err != nil {
		writeError(w, "kassensturz unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResponse("kassensturz", result))
}
