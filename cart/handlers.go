package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"bazaar/apperr"
	"bazaar/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// AddToCart accepts one entry or an array of entries.
func (s *CartService) AddToCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	customerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	body, err := utils.ReadBody(r)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	var entries []AddEntry
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &entries)
	} else {
		var one AddEntry
		err = json.Unmarshal(trimmed, &one)
		entries = []AddEntry{one}
	}
	if err != nil {
		utils.RespondWithAppError(w, apperr.Validation("invalid request body"))
		return
	}

	res, err := s.AddFromWishlists(ctx, customerID, entries)
	if err != nil {
		s.Log.Error("add to cart failed", zap.String("customer_id", customerID.Hex()), zap.Error(err))
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message":            "Processed add to cart request",
		"addedCount":         res.AddedCount,
		"skippedCount":       res.SkippedCount,
		"deletedWishlistIds": res.DeletedWishlistIDs,
		"updatedWishlistIds": res.UpdatedWishlistIDs,
		"added":              res.Added,
		"skipped":            res.Skipped,
	})
}

func (s *CartService) GetCartItems(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	customerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	groups, err := s.GroupBySeller(ctx, customerID)
	if err != nil {
		s.Log.Error("list carts failed", zap.Error(err))
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"sellers": groups})
}

func (s *CartService) RemoveFromCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	customerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	cartID, err := utils.ParamObjectID(ps, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := s.Remove(ctx, customerID, cartID); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Item removed from cart")
}
