package checkout

import (
	"context"
	"net/http"
	"time"

	"bazaar/utils"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// AddOrder handles POST /api/orders/add-order.
func (s *Service) AddOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	customerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Customer ID is required")
		return
	}
	body, err := utils.ReadBody(r)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	req, err := ParseRequest(body)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}

	out, err := s.Checkout(ctx, customerID, req)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if out.Session != nil {
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success": true,
			"message": "Payment session created",
			"data":    out.Session,
		})
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"success": true,
		"message": "Orders created successfully",
		"data":    out.Placed,
	})
}

func callbackTranID(r *http.Request) string {
	if v := r.URL.Query().Get("tran_id"); v != "" {
		return v
	}
	return r.FormValue("tran_id")
}

// PaymentSuccess handles the gateway's success redirect.
func (s *Service) PaymentSuccess(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	http.Redirect(w, r, s.ConfirmPayment(ctx, callbackTranID(r)), http.StatusFound)
}

func (s *Service) PaymentFail(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	http.Redirect(w, r, s.RollbackPayment(ctx, callbackTranID(r), "fail"), http.StatusFound)
}

func (s *Service) PaymentCancel(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	http.Redirect(w, r, s.RollbackPayment(ctx, callbackTranID(r), "cancel"), http.StatusFound)
}

// PaymentIPN acknowledges the gateway's instant payment notification.
func (s *Service) PaymentIPN(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		s.Log.Warn("ipn parse failed", zap.Error(err))
	}
	s.Log.Info("payment ipn received",
		zap.String("tran_id", r.PostForm.Get("tran_id")),
		zap.String("status", r.PostForm.Get("status")),
		zap.String("val_id", r.PostForm.Get("val_id")),
		zap.String("amount", r.PostForm.Get("amount")),
	)
	w.WriteHeader(http.StatusOK)
}
