package wishlist

import (
	"context"
	"net/http"
	"time"

	"bazaar/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

func (s *Service) fail(w http.ResponseWriter, op string, err error) {
	if utils.IsInternal(err) {
		s.Log.Error(op+" failed", zap.Error(err))
	}
	utils.RespondWithAppError(w, err)
}

func (s *Service) AddToWishlist(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	customerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var in AddInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	wl, err := s.Add(ctx, customerID, in)
	if err != nil {
		s.fail(w, "add to wishlist", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"success":    true,
		"message":    "Added to wishlist",
		"wishlistId": wl.ID.Hex(),
	})
}

func (s *Service) GetWishlistItems(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	customerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	lists, err := s.List(ctx, customerID)
	if err != nil {
		s.fail(w, "list wishlists", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "wishlists": lists})
}

// RemoveFromWishlist takes an optional {"productIds": [...]} body. Without
// one the whole wishlist goes.
func (s *Service) RemoveFromWishlist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	customerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := utils.ParamObjectID(ps, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	var body struct {
		ProductIDs []string `json:"productIds"`
	}
	if r.ContentLength != 0 {
		if err := utils.DecodeJSON(r, &body); err != nil {
			utils.RespondWithAppError(w, err)
			return
		}
	}
	pids, err := utils.ParseObjectIDs(body.ProductIDs)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	deleted, err := s.Remove(ctx, customerID, id, pids)
	if err != nil {
		s.fail(w, "remove from wishlist", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Removed from wishlist", "deleted": deleted})
}
