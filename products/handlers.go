package products

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

func (s *Service) CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sellerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusForbidden, "Unauthorized!")
		return
	}
	body, err := utils.ReadBody(r)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	p, err := s.Create(ctx, sellerID, body)
	if err != nil {
		s.fail(w, "create product", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"success":   true,
		"message":   "Product created successfully",
		"productId": p.ID,
	})
}

func (s *Service) GetAllProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sellerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusForbidden, "Unauthorized!")
		return
	}
	items, err := s.ListBySeller(ctx, sellerID)
	if err != nil {
		s.fail(w, "list products", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "products": items})
}

func (s *Service) SearchProducts(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	q := r.URL.Query()
	items, err := s.Search(ctx, q.Get("keyword"), q.Get("category"))
	if err != nil {
		s.fail(w, "search products", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "products": items})
}

func (s *Service) GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	id, err := utils.ParamObjectID(ps, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	userID, _ := utils.GetUserObjectID(r)
	d, err := s.Get(ctx, id, utils.GetRoleFromRequest(r), userID)
	if err != nil {
		s.fail(w, "get product", err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, d)
}

// GetProductsByIDs handles POST /api/products/get-all-by-id.
func (s *Service) GetProductsByIDs(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var in struct {
		ProductIDs []string `json:"productIds"`
	}
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	ps, err := s.GetMany(ctx, in.ProductIDs)
	if err != nil {
		s.fail(w, "get products", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "products": ps})
}

func (s *Service) UpdateProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sellerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusForbidden, "Unauthorized!")
		return
	}
	id, err := utils.ParamObjectID(ps, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	body, err := utils.ReadBody(r)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	p, err := s.Update(ctx, id, sellerID, body)
	if err != nil {
		s.fail(w, "update product", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"message": "Product updated successfully",
		"product": p,
	})
}

func (s *Service) DeleteProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	sellerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusForbidden, "Unauthorized!")
		return
	}
	id, err := utils.ParamObjectID(ps, "id")
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := s.Delete(ctx, id, sellerID); err != nil {
		s.fail(w, "delete product", err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Product deleted successfully")
}
