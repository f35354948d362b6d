// Package addresses manages a customer's saved addresses. At most one of
// them is the default.
package addresses

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"bazaar/apperr"
	"bazaar/models"
	"bazaar/repo"
	"bazaar/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Service struct {
	Store repo.Store
	Log   *zap.Logger
	Now   func() time.Time
}

func NewService(store repo.Store, log *zap.Logger) *Service {
	return &Service{Store: store, Log: log, Now: time.Now}
}

type Input struct {
	Name        string `json:"name"`
	AddressLine string `json:"addressLine"`
	City        string `json:"city"`
	ZipCode     string `json:"zipCode"`
	Country     string `json:"country"`
	State       string `json:"state"`
	IsDefault   bool   `json:"isDefault"`
}

// Add stores a new address. A default address displaces the previous one.
func (s *Service) Add(ctx context.Context, customerID primitive.ObjectID, in Input) (*models.Address, error) {
	if strings.TrimSpace(in.AddressLine) == "" || strings.TrimSpace(in.City) == "" ||
		strings.TrimSpace(in.ZipCode) == "" || strings.TrimSpace(in.Country) == "" {
		return nil, apperr.Validation("addressLine, city, zipCode and country are required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Unnamed"
	}
	now := s.Now()
	a := &models.Address{
		ID:          primitive.NewObjectID(),
		CustomerID:  customerID,
		Name:        name,
		AddressLine: strings.TrimSpace(in.AddressLine),
		City:        strings.TrimSpace(in.City),
		ZipCode:     strings.TrimSpace(in.ZipCode),
		Country:     strings.TrimSpace(in.Country),
		State:       strings.TrimSpace(in.State),
		IsDefault:   in.IsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.Store.Tx.WithTx(ctx, func(ctx context.Context) error {
		if a.IsDefault {
			if err := s.Store.Addresses.ClearDefault(ctx, customerID); err != nil {
				return fmt.Errorf("clear default: %w", err)
			}
		}
		if err := s.Store.Addresses.Insert(ctx, a); err != nil {
			return fmt.Errorf("insert address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List returns the customer's addresses, default first.
func (s *Service) List(ctx context.Context, customerID primitive.ObjectID) ([]models.Address, error) {
	list, err := s.Store.Addresses.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	if list == nil {
		list = []models.Address{}
	}
	return list, nil
}

func (s *Service) owned(ctx context.Context, id, customerID primitive.ObjectID) (*models.Address, error) {
	a, err := s.Store.Addresses.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && a.CustomerID != customerID) {
		return nil, apperr.NotFound("Address not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load address: %w", err)
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, id, customerID primitive.ObjectID, u models.AddressUpdate) (*models.Address, error) {
	if _, err := s.owned(ctx, id, customerID); err != nil {
		return nil, err
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		unnamed := "Unnamed"
		u.Name = &unnamed
	}
	a, err := s.Store.Addresses.Update(ctx, id, u)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.NotFound("Address not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id, customerID primitive.ObjectID) error {
	if _, err := s.owned(ctx, id, customerID); err != nil {
		return err
	}
	if err := s.Store.Addresses.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	return nil
}

// SetDefault makes id the customer's only default address.
func (s *Service) SetDefault(ctx context.Context, id, customerID primitive.ObjectID) (*models.Address, error) {
	var out *models.Address
	err := s.Store.Tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.owned(ctx, id, customerID); err != nil {
			return err
		}
		if err := s.Store.Addresses.ClearDefault(ctx, customerID); err != nil {
			return fmt.Errorf("clear default: %w", err)
		}
		if err := s.Store.Addresses.SetDefault(ctx, id); err != nil {
			return fmt.Errorf("set default: %w", err)
		}
		a, err := s.Store.Addresses.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("reload address: %w", err)
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) fail(w http.ResponseWriter, op string, err error) {
	if utils.IsInternal(err) {
		s.Log.Error(op+" failed", zap.Error(err))
	}
	utils.RespondWithAppError(w, err)
}

func (s *Service) AddAddress(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	customerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var in Input
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	a, err := s.Add(ctx, customerID, in)
	if err != nil {
		s.fail(w, "add address", err)
		return
	}
	utils.RespondWithData(w, http.StatusCreated, a)
}

func (s *Service) GetAllAddresses(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	customerID, ok := utils.GetUserObjectID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	list, err := s.List(ctx, customerID)
	if err != nil {
		s.fail(w, "list addresses", err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, list)
}

func (s *Service) UpdateAddress(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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
	var u models.AddressUpdate
	if err := utils.DecodeJSON(r, &u); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	a, err := s.Update(ctx, id, customerID, u)
	if err != nil {
		s.fail(w, "update address", err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, a)
}

func (s *Service) DeleteAddress(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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
	if err := s.Delete(ctx, id, customerID); err != nil {
		s.fail(w, "delete address", err)
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Address deleted successfully")
}

func (s *Service) SetDefaultAddress(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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
	a, err := s.SetDefault(ctx, id, customerID)
	if err != nil {
		s.fail(w, "set default address", err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, a)
}
