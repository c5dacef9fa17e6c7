package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router builds the API route table.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", h.GetProducts)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Get("/stream", h.StreamSession)
			r.Post("/setup", h.BeginSetup)
			r.Delete("/setup", h.AbandonSetup)
			r.Post("/setup/name", h.SubmitSetupName)
			r.Post("/setup/balance", h.SubmitSetupBalance)
			r.Post("/setup/back", h.SetupBack)
			r.Put("/passcode", h.ChangePasscode)
			r.Post("/close", h.CloseEvent)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", h.GetCheckout)
			r.Post("/cart", h.AddToCart)
			r.Delete("/cart", h.ClearCart)
			r.Put("/cart/{lineID}", h.SetCartQuantity)
			r.Delete("/cart/{lineID}", h.RemoveCartLine)
			r.Post("/cart/{lineID}/price", h.OverridePrice)
			r.Post("/tax", h.SelectTaxType)
			r.Post("/tender", h.AddTender)
			r.Delete("/tender", h.ResetTender)
			r.Post("/finalize", h.Finalize)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.GetOrders)
			r.Get("/stats", h.GetOrderStats)
			r.Post("/{orderID}/cancel", h.CancelOrder)
			r.Delete("/", h.ResetOrders)
		})

		r.Route("/tips", func(r chi.Router) {
			r.Get("/", h.GetTips)
			r.Post("/", h.RecordTip)
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", h.GetInventory)
			r.Put("/{productID}", h.TrackInventory)
			r.Post("/refill", h.RefillInventory)
		})

		r.Route("/archive", func(r chi.Router) {
			r.Get("/", h.GetArchive)
			r.Get("/{eventID}", h.GetArchivedEvent)
			r.Get("/{eventID}/report", h.GetEventReport)
			r.Get("/{eventID}/report/qr", h.GetEventReportQR)
			r.Post("/{eventID}/kassensturz", h.KassensturzArchived)
		})

		r.Post("/kassensturz", h.KassensturzActive)
	})

	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.Logger.LogAPI(r.Method, r.URL.Path, fmt.Sprintf("%d", ww.Status()), time.Since(start).String())
	})
}
