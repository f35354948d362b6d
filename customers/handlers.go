package customers

import (
	"context"
	"net/http"
	"time"

	"bazaar/apperr"
	"bazaar/models"
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
	c, err := s.Profile(ctx, id)
	if err != nil {
		s.fail(w, "customer profile", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":  true,
		"customer": c,
		"name":     c.FullName(),
	})
}

func (s *Service) GetAllCustomers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	list, err := s.List(ctx)
	if err != nil {
		s.fail(w, "list customers", err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, list)
}

func (s *Service) UpdateCustomer(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var u models.CustomerUpdate
	if err := utils.DecodeJSON(r, &u); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	c, err := s.Update(ctx, id, u)
	if err != nil {
		s.fail(w, "update customer", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "message": "Profile updated", "customer": c})
}

func (s *Service) GetStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	st, err := s.Stats(ctx, id)
	if err != nil {
		s.fail(w, "customer stats", err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, st)
}

func (s *Service) GetActivities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	as, err := s.Activities(ctx, id)
	if err != nil {
		s.fail(w, "customer activities", err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, as)
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
		s.fail(w, "customer notifications", err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, ns)
}

type seenRequest struct {
	NotificationID string `json:"notificationId"`
}

// MarkNotificationsSeen reads an optional {"notificationId": "..."} body.
func (s *Service) MarkNotificationsSeen(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	last, err := parseSeen(r)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := s.MarkSeen(ctx, id, last); err != nil {
		s.fail(w, "mark customer notifications seen", err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Notifications marked as seen")
}

func parseSeen(r *http.Request) (*primitive.ObjectID, error) {
	var body seenRequest
	if r.ContentLength != 0 {
		if err := utils.DecodeJSON(r, &body); err != nil {
			return nil, err
		}
	}
	if body.NotificationID == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(body.NotificationID)
	if err != nil {
		return nil, apperr.Validation("invalid notificationId")
	}
	return &oid, nil
}
