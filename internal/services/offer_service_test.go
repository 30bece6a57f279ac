package services

import (
	"context"
	"testing"

	"github.com/b2bquote/rfq-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOfferService(store *fakeStore) (*OfferService, *fakeDispatcher) {
	dispatcher := &fakeDispatcher{}
	return NewOfferService(store, store, dispatcher), dispatcher
}

func validOfferRequest(rfqID string) models.OfferRequest {
	return models.OfferRequest{
		RFQID:        rfqID,
		Price:        45000,
		DeliveryTime: "25 days",
		Description:  "Full batch from stock",
		Terms:        "Prepayment 30%, delivery DAP",
	}
}

func TestSubmitOffer(t *testing.T) {
	ctx := context.Background()

	t.Run("first offer flips rfq to offers_received", func(t *testing.T) {
		store := newFakeStore()
		service, dispatcher := newOfferService(store)
		seedRFQ(store, "rfq-1", models.PublishedRFQ)

		offer, err := service.SubmitOffer(ctx, supplierActor, validOfferRequest("rfq-1"))
		require.NoError(t, err)
		assert.Equal(t, models.SubmittedOffer, offer.Status)
		assert.False(t, offer.IsLocked)
		assert.Equal(t, models.OffersReceivedRFQ, store.rfqs["rfq-1"].Status)

		require.NotNil(t, dispatcher.lastEvent())
		assert.Equal(t, models.OfferSubmittedEvent, dispatcher.lastEvent().Type)
	})

	t.Run("only suppliers", func(t *testing.T) {
		store := newFakeStore()
		service, _ := newOfferService(store)
		seedRFQ(store, "rfq-1", models.PublishedRFQ)

		_, err := service.SubmitOffer(ctx, clientActor, validOfferRequest("rfq-1"))
		requireKind(t, err, models.KindForbidden)
	})

	t.Run("validation", func(t *testing.T) {
		store := newFakeStore()
		service, _ := newOfferService(store)
		seedRFQ(store, "rfq-1", models.PublishedRFQ)

		req := validOfferRequest("rfq-1")
		req.Price = 0
		_, err := service.SubmitOffer(ctx, supplierActor, req)
		requireKind(t, err, models.KindValidation)

		req = validOfferRequest("rfq-1")
		req.Terms = "short"
		_, err = service.SubmitOffer(ctx, supplierActor, req)
		requireKind(t, err, models.KindValidation)
	})

	t.Run("rfq must accept offers", func(t *testing.T) {
		store := newFakeStore()
		service, _ := newOfferService(store)
		seedRFQ(store, "rfq-1", models.NegotiationRFQ)

		_, err := service.SubmitOffer(ctx, supplierActor, validOfferRequest("rfq-1"))
		requireKind(t, err, models.KindInvalidState)
	})

	t.Run("one active offer per supplier", func(t *testing.T) {
		store := newFakeStore()
		service, _ := newOfferService(store)
		seedRFQ(store, "rfq-1", models.PublishedRFQ)

		_, err := service.SubmitOffer(ctx, supplierActor, validOfferRequest("rfq-1"))
		require.NoError(t, err)

		_, err = service.SubmitOffer(ctx, supplierActor, validOfferRequest("rfq-1"))
		requireKind(t, err, models.KindConflict)
	})
}

func TestListOffers(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service, _ := newOfferService(store)

	seedRFQ(store, "rfq-1", models.OffersReceivedRFQ)
	foreign := seedRFQ(store, "rfq-2", models.OffersReceivedRFQ)
	foreign.ClientID = "client-2"
	seedOffer(store, "offer-1", "rfq-1", models.SubmittedOffer)
	other := seedOffer(store, "offer-2", "rfq-2", models.SubmittedOffer)
	other.SupplierID = "supplier-2"

	supplierOffers, err := service.ListOffers(ctx, supplierActor)
	require.NoError(t, err)
	assert.Len(t, supplierOffers, 1)

	clientOffers, err := service.ListOffers(ctx, clientActor)
	require.NoError(t, err)
	assert.Len(t, clientOffers, 1)

	adminOffers, err := service.ListOffers(ctx, adminActor)
	require.NoError(t, err)
	assert.Len(t, adminOffers, 2)
}

func TestDeleteOffer(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service, _ := newOfferService(store)

	seedRFQ(store, "rfq-1", models.OffersReceivedRFQ)
	seedOffer(store, "offer-1", "rfq-1", models.SubmittedOffer)
	locked := seedOffer(store, "offer-locked", "rfq-1", models.FinalConfirmedOffer)
	locked.SupplierID = "supplier-2"
	locked.IsLocked = true
	negotiating := seedOffer(store, "offer-negotiating", "rfq-1", models.InNegotiationOffer)
	negotiating.SupplierID = "supplier-3"

	t.Run("clients never delete", func(t *testing.T) {
		err := service.DeleteOffer(ctx, clientActor, "offer-1")
		requireKind(t, err, models.KindForbidden)
	})

	t.Run("foreign supplier forbidden", func(t *testing.T) {
		stranger := models.Actor{UserID: "supplier-9", Role: models.RoleSupplier}
		err := service.DeleteOffer(ctx, stranger, "offer-1")
		requireKind(t, err, models.KindForbidden)
	})

	t.Run("locked offer not deletable", func(t *testing.T) {
		err := service.DeleteOffer(ctx, adminActor, "offer-locked")
		requireKind(t, err, models.KindInvalidState)
	})

	t.Run("negotiating offer not deletable", func(t *testing.T) {
		err := service.DeleteOffer(ctx, adminActor, "offer-negotiating")
		requireKind(t, err, models.KindInvalidState)
	})

	t.Run("owner deletes own offer", func(t *testing.T) {
		err := service.DeleteOffer(ctx, supplierActor, "offer-1")
		require.NoError(t, err)
	})
}

func TestRejectFinalOffer(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service, _ := newOfferService(store)

	seedRFQ(store, "rfq-1", models.SentToClientRFQ)
	seedOffer(store, "offer-1", "rfq-1", models.FinalConfirmedOffer)

	t.Run("only owning client", func(t *testing.T) {
		err := service.RejectFinalOffer(ctx, supplierActor, "offer-1")
		requireKind(t, err, models.KindForbidden)

		stranger := models.Actor{UserID: "client-2", Role: models.RoleClient}
		err = service.RejectFinalOffer(ctx, stranger, "offer-1")
		requireKind(t, err, models.KindForbidden)
	})

	t.Run("rejection reopens negotiation", func(t *testing.T) {
		err := service.RejectFinalOffer(ctx, clientActor, "offer-1")
		require.NoError(t, err)
		assert.Equal(t, models.RejectedOffer, store.offers["offer-1"].Status)
		assert.Equal(t, models.NegotiationRFQ, store.rfqs["rfq-1"].Status)
	})

	t.Run("already rejected", func(t *testing.T) {
		err := service.RejectFinalOffer(ctx, clientActor, "offer-1")
		requireKind(t, err, models.KindInvalidState)
	})
}
