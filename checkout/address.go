package checkout

import (
	"context"
	"errors"
	"fmt"

	"bazaar/apperr"
	"bazaar/models"
	"bazaar/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// resolvedAddresses is what the resolver settled on for one checkout.
type resolvedAddresses struct {
	Primary        *models.Address
	Optional       *models.Address
	PrimaryCreated bool
}

func (a resolvedAddresses) optionalID() *primitive.ObjectID {
	if a.Optional == nil {
		return nil
	}
	id := a.Optional.ID
	return &id
}

// checkAddressInput rejects an inline address that lacks a required field.
func checkAddressInput(req *Request) error {
	if req.AddressID != nil {
		return nil
	}
	in := req.Address
	if in.AddressLine1 == "" || in.City == "" || in.ZipCode == "" || in.Country == "" {
		return apperr.Validation("Address details are required when addressId is not provided")
	}
	return nil
}

// resolveAddresses loads the selected address or creates the inline ones.
func (s *Service) resolveAddresses(ctx context.Context, customerID primitive.ObjectID, req *Request) (resolvedAddresses, error) {
	if req.AddressID != nil {
		a, err := s.Store.Addresses.FindByID(ctx, *req.AddressID)
		if errors.Is(err, repo.ErrNotFound) || (err == nil && a.CustomerID != customerID) {
			return resolvedAddresses{}, apperr.NotFound("Address not found")
		}
		if err != nil {
			return resolvedAddresses{}, fmt.Errorf("load address: %w", err)
		}
		return resolvedAddresses{Primary: a}, nil
	}

	if err := checkAddressInput(req); err != nil {
		return resolvedAddresses{}, err
	}
	in := req.Address
	name := in.Name
	if name == "" {
		name = "Unnamed"
	}
	now := s.Now()
	newAddress := func(line string) *models.Address {
		return &models.Address{
			ID:          primitive.NewObjectID(),
			CustomerID:  customerID,
			Name:        name,
			AddressLine: line,
			City:        in.City,
			ZipCode:     in.ZipCode,
			Country:     in.Country,
			State:       in.State,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	res := resolvedAddresses{Primary: newAddress(in.AddressLine1), PrimaryCreated: true}
	if err := s.Store.Addresses.Insert(ctx, res.Primary); err != nil {
		return resolvedAddresses{}, fmt.Errorf("insert primary address: %w", err)
	}
	if in.AddressLine2 != "" {
		res.Optional = newAddress(in.AddressLine2)
		if err := s.Store.Addresses.Insert(ctx, res.Optional); err != nil {
			return resolvedAddresses{}, fmt.Errorf("insert optional address: %w", err)
		}
	}
	return res, nil
}

// createShipping writes the one ShippingInfo shared by every order of the checkout.
func (s *Service) createShipping(ctx context.Context, customerID primitive.ObjectID, req *Request, addrs resolvedAddresses) (*models.ShippingInfo, error) {
	now := s.Now()
	si := &models.ShippingInfo{
		ID:                primitive.NewObjectID(),
		CustomerID:        customerID,
		FullName:          req.FullName,
		PhoneNumber:       req.PhoneNumber,
		Email:             req.Email,
		AddressID:         addrs.Primary.ID,
		OptionalAddressID: addrs.optionalID(),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Store.Shipping.Insert(ctx, si); err != nil {
		return nil, fmt.Errorf("insert shipping info: %w", err)
	}
	return si, nil
}
