package orders

import (
	"context"
	"net/http"
	"time"

	"bazaar/apperr"
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

func (s *Service) GetAllOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	customerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Customer information not found")
		return
	}
	list, err := s.CustomerOrders(ctx, customerID)
	if err != nil {
		s.fail(w, "list customer orders", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "count": len(list), "orders": list})
}

func (s *Service) GetPayments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	customerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Customer ID is required")
		return
	}
	list, err := s.CustomerPayments(ctx, customerID)
	if err != nil {
		s.fail(w, "list customer payments", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "payments": list})
}

func (s *Service) GetSellerOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sellerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Seller information not found")
		return
	}
	list, err := s.SellerOrders(ctx, sellerID)
	if err != nil {
		s.fail(w, "list seller orders", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "count": len(list), "data": list})
}

func (s *Service) GetSellerOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sellerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Seller information not found")
		return
	}
	id, err := utils.ParamObjectID(ps, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	d, err := s.SellerOrderDetail(ctx, id, sellerID)
	if err != nil {
		s.fail(w, "seller order detail", err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, d)
}

func (s *Service) GetStatusCounts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sellerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Seller information not found")
		return
	}
	counts, err := s.StatusCounts(ctx, sellerID)
	if err != nil {
		s.fail(w, "order status counts", err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, counts)
}

type statusRequest struct {
	OrderStatus string `json:"orderStatus"`
}

func (s *Service) UpdateOrderStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized request.")
		return
	}
	id, err := utils.ParamObjectID(ps, "orderId")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	var body statusRequest
	if err := utils.DecodeJSON(r, &body); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if body.OrderStatus == "" {
		utils.RespondWithAppError(w, apperr.Validation("Order ID and orderStatus are required."))
		return
	}

	res, err := s.UpdateStatus(ctx, id, Actor{ID: userID, Role: utils.GetRoleFromRequest(r)}, body.OrderStatus)
	if err != nil {
		s.fail(w, "update order status", err)
		return
	}
	if res.Reordered != nil {
		utils.RespondWithJSON(w, http.StatusCreated, utils.M{
			"success":  true,
			"message":  "New order created successfully for Buy Again.",
			"newOrder": res.Reordered,
		})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"message": "Order status updated successfully.",
		"order":   res.Order,
	})
}
