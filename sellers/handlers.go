package sellers

import (
	"context"
	"net/http"
	"time"

	"bazaar/apperr"
	"bazaar/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func (s *Service) fail(w http.ResponseWriter, op string, err error) {
	if utils.IsInternal(err) {
		s.Log.Error(op+" failed", zap.Error(err))
	}
	utils.RespondWithAppError(w, err)
}

func (s *Service) GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	se, err := s.Profile(ctx, id)
	if err != nil {
		s.fail(w, "seller profile", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "seller": se})
}

func (s *Service) GetAllSellers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	list, err := s.List(ctx)
	if err != nil {
		s.fail(w, "list sellers", err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, list)
}

func (s *Service) GetNotifications(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	ns, err := s.Notifications(ctx, id)
	if err != nil {
		s.fail(w, "seller notifications", err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, ns)
}

func (s *Service) MarkNotificationsSeen(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var body struct {
		NotificationID string `json:"notificationId"`
	}
	if r.ContentLength != 0 {
		if err := utils.DecodeJSON(r, &body); err != nil {
			utils.RespondWithAppError(w, err)
			return
		}
	}
	var last *primitive.ObjectID
	if body.NotificationID != "" {
		oid, err := primitive.ObjectIDFromHex(body.NotificationID)
		if err != nil {
			utils.RespondWithAppError(w, apperr.Validation("invalid notificationId"))
			return
		}
		last = &oid
	}
	if err := s.MarkSeen(ctx, id, last); err != nil {
		s.fail(w, "mark seller notifications seen", err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Notifications marked as seen")
}

func (s *Service) GetPayments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	ps, err := s.Payments(ctx, id)
	if err != nil {
		s.fail(w, "seller payments", err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, ps)
}
