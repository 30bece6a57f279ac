package router

import (
	"net/http"

	"github.com/b2bquote/rfq-service/internal/handlers"
)

func InitRoutes(rfqHandler *handlers.RFQHandler, offerHandler *handlers.OfferHandler, negotiationHandler *handlers.NegotiationHandler, orderHandler *handlers.OrderHandler, statisticsHandler *handlers.StatisticsHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/ping", handlers.PingHandler)

	mux.HandleFunc("POST /api/rfqs", rfqHandler.CreateRFQ)
	mux.HandleFunc("GET /api/rfqs", rfqHandler.GetRFQs)
	mux.HandleFunc("GET /api/rfqs/{rfqId}", rfqHandler.GetRFQ)
	mux.HandleFunc("PATCH /api/rfqs/{rfqId}/publish", rfqHandler.PublishRFQ)
	mux.HandleFunc("PATCH /api/rfqs/{rfqId}/send-to-client", rfqHandler.SendToClient)
	mux.HandleFunc("PATCH /api/rfqs/{rfqId}/gatekeeper", rfqHandler.SetGatekeeperStatus)
	mux.HandleFunc("DELETE /api/rfqs/{rfqId}", rfqHandler.DeleteRFQ)

	mux.HandleFunc("POST /api/offers", offerHandler.SubmitOffer)
	mux.HandleFunc("GET /api/offers", offerHandler.GetOffers)
	mux.HandleFunc("GET /api/offers/rfq/{rfqId}", offerHandler.GetOffersForRFQ)
	mux.HandleFunc("PATCH /api/offers/{offerId}/reject", offerHandler.RejectFinalOffer)
	mux.HandleFunc("DELETE /api/offers/{offerId}", offerHandler.DeleteOffer)

	mux.HandleFunc("POST /api/negotiations", negotiationHandler.StartNegotiation)
	mux.HandleFunc("GET /api/negotiations/{negotiationId}", negotiationHandler.GetNegotiation)
	mux.HandleFunc("GET /api/negotiations/offer/{offerId}", negotiationHandler.GetNegotiationByOffer)
	mux.HandleFunc("POST /api/negotiations/{negotiationId}/respond", negotiationHandler.SupplierRespond)
	mux.HandleFunc("POST /api/negotiations/{negotiationId}/admin-respond", negotiationHandler.AdminRespond)
	mux.HandleFunc("POST /api/negotiations/{negotiationId}/reject", negotiationHandler.SupplierReject)
	mux.HandleFunc("PATCH /api/negotiations/{negotiationId}/cancel", negotiationHandler.CancelNegotiation)

	mux.HandleFunc("POST /api/orders", orderHandler.CreateOrder)
	mux.HandleFunc("GET /api/orders", orderHandler.GetOrders)
	mux.HandleFunc("GET /api/orders/{orderId}", orderHandler.GetOrder)
	mux.HandleFunc("PATCH /api/orders/{orderId}/payment", orderHandler.UpdatePayment)
	mux.HandleFunc("PATCH /api/orders/{orderId}/delivery", orderHandler.UpdateDelivery)
	mux.HandleFunc("PATCH /api/orders/{orderId}/finalize", orderHandler.FinalizeOrder)
	mux.HandleFunc("PATCH /api/orders/{orderId}/archive", orderHandler.ArchiveOrder)
	mux.HandleFunc("DELETE /api/orders/{orderId}", orderHandler.DeleteOrder)

	mux.HandleFunc("GET /api/statistics", statisticsHandler.GetDashboard)
	mux.HandleFunc("GET /api/statistics/earnings", statisticsHandler.GetEarnings)

	return mux
}
