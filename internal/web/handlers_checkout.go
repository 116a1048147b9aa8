package web

import (
	"net/http"
	"strconv"

	"spa-directory/internal/logging"
	"spa-directory/internal/notify"
	mw "spa-directory/internal/web/middleware"

	"github.com/go-chi/render"
)

type checkoutItem struct {
	SpaID     int    `json:"spa_id"`
	Treatment string `json:"treatment"`
	Quantity  int    `json:"quantity"`
}

type checkoutRequest struct {
	Items []checkoutItem `json:"items"`
}

// handleCheckout accepts a cart of bookings and fires the confirmation email.
// Delivery is best-effort: the response never waits on or reports mail
// failures.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	ident, _ := mw.IdentityFromContext(r.Context())

	var req checkoutRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondMessage(w, r, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if len(req.Items) == 0 {
		s.respondMessage(w, r, http.StatusBadRequest, "Cart is empty.")
		return
	}

	snapshot := s.catalog.Snapshot()
	lineItems := make([]notify.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Treatment == "" {
			s.respondMessage(w, r, http.StatusBadRequest, "Each item needs a treatment.")
			return
		}

		title := "Unknown spa"
		if spa, ok := snapshot.FindByID(strconv.Itoa(item.SpaID)); ok {
			title = spa.Title
		}
		lineItems = append(lineItems, notify.LineItem{
			SpaTitle:  title,
			Treatment: item.Treatment,
			Quantity:  item.Quantity,
		})
	}

	user, err := s.auth.CurrentUser(r.Context(), ident)
	if err != nil {
		s.respondInternalError(w, r, err, "Checkout failed. Please try again.")
		return
	}

	s.notifier.BookingConfirmation(notify.Recipient{Name: user.Name, Email: user.Email}, lineItems)

	logging.FromContext(r.Context()).Info("checkout accepted",
		"user_id", user.ID,
		"items", len(lineItems),
	)

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]any{
		"success": true,
		"message": "Booking received. A confirmation email is on its way.",
	})
}
