// Package auth registers and logs in customers and sellers and answers
// token introspection.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"bazaar/apperr"
	"bazaar/middleware"
	"bazaar/models"
	"bazaar/repo"
	"bazaar/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt work factors per account type.
const (
	CustomerCost = 12
	SellerCost   = 10
)

type Service struct {
	Store        repo.Store
	Tokens       *middleware.Authenticator
	Log          *zap.Logger
	Now          func() time.Time
	CustomerCost int
	SellerCost   int
}

func NewService(store repo.Store, tokens *middleware.Authenticator, log *zap.Logger) *Service {
	return &Service{
		Store:        store,
		Tokens:       tokens,
		Log:          log,
		Now:          time.Now,
		CustomerCost: CustomerCost,
		SellerCost:   SellerCost,
	}
}

// HashPassword hashes a customer password for storage.
func (s *Service) HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.CustomerCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func normalizeEmail(email string) (string, bool) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	return email, true
}

type customerRegistration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	Bio       string `json:"bio"`
}

// RegisterCustomer creates a customer account and returns its first token.
func (s *Service) RegisterCustomer(ctx context.Context, in customerRegistration) (*models.Customer, string, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Password = strings.TrimSpace(in.Password)
	email, ok := normalizeEmail(in.Email)
	switch {
	case in.FirstName == "" || in.LastName == "":
		return nil, "", apperr.Validation("First and last name are required")
	case !ok:
		return nil, "", apperr.Validation("Valid email is required")
	case len(in.Password) < 6:
		return nil, "", apperr.Validation("Password must be at least 6 characters")
	}

	if _, err := s.Store.Customers.FindByEmail(ctx, email); err == nil {
		return nil, "", apperr.Validation("Email already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, "", fmt.Errorf("lookup customer: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.CustomerCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	now := s.Now()
	c := &models.Customer{
		ID:        primitive.NewObjectID(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     email,
		Phone:     strings.TrimSpace(in.Phone),
		Bio:       in.Bio,
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Customers.Insert(ctx, c); err != nil {
		if errors.Is(err, repo.ErrDuplicateKey) {
			return nil, "", apperr.Validation("Email already exists")
		}
		return nil, "", fmt.Errorf("insert customer: %w", err)
	}
	token, err := s.Tokens.Issue(c.ID.Hex(), models.RoleCustomer, now)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return c, token, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginCustomer checks credentials and returns a fresh token.
func (s *Service) LoginCustomer(ctx context.Context, in credentials) (*models.Customer, string, error) {
	email, ok := normalizeEmail(in.Email)
	if !ok || in.Password == "" {
		return nil, "", apperr.Validation("Email and password are required")
	}
	c, err := s.Store.Customers.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, "", apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, "", fmt.Errorf("lookup customer: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(c.Password), []byte(in.Password)) != nil {
		return nil, "", apperr.Unauthorized("Invalid credentials")
	}
	token, err := s.Tokens.Issue(c.ID.Hex(), models.RoleCustomer, s.Now())
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return c, token, nil
}

type sellerRegistration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (s *Service) RegisterSeller(ctx context.Context, in sellerRegistration) (*models.Seller, string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Password = strings.TrimSpace(in.Password)
	email, ok := normalizeEmail(in.Email)
	switch {
	case in.Name == "":
		return nil, "", apperr.Validation("Name is required")
	case !ok:
		return nil, "", apperr.Validation("Valid email is required")
	case in.Password == "":
		return nil, "", apperr.Validation("Password is required")
	}

	if _, err := s.Store.Sellers.FindByEmail(ctx, email); err == nil {
		return nil, "", apperr.Validation("Email already in use")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, "", fmt.Errorf("lookup seller: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.SellerCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}
	now := s.Now()
	se := &models.Seller{
		ID:        primitive.NewObjectID(),
		Name:      in.Name,
		Email:     email,
		Phone:     strings.TrimSpace(in.Phone),
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Sellers.Insert(ctx, se); err != nil {
		if errors.Is(err, repo.ErrDuplicateKey) {
			return nil, "", apperr.Validation("Email already in use")
		}
		return nil, "", fmt.Errorf("insert seller: %w", err)
	}
	token, err := s.Tokens.Issue(se.ID.Hex(), models.RoleSeller, now)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return se, token, nil
}

func (s *Service) LoginSeller(ctx context.Context, in credentials) (*models.Seller, string, error) {
	email, ok := normalizeEmail(in.Email)
	if !ok || strings.TrimSpace(in.Password) == "" {
		return nil, "", apperr.Validation("Valid email and password are required")
	}
	se, err := s.Store.Sellers.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, "", apperr.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, "", fmt.Errorf("lookup seller: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(se.Password), []byte(in.Password)) != nil {
		return nil, "", apperr.Unauthorized("Invalid email or password")
	}
	token, err := s.Tokens.Issue(se.ID.Hex(), models.RoleSeller, s.Now())
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return se, token, nil
}

// UserType resolves the account behind a verified token.
func (s *Service) UserType(ctx context.Context, userID, role string) (string, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", apperr.Unauthorized("Invalid token: user not found")
	}
	switch role {
	case models.RoleSeller:
		_, err = s.Store.Sellers.FindByID(ctx, id)
	case models.RoleCustomer:
		_, err = s.Store.Customers.FindByID(ctx, id)
	default:
		return "", apperr.Unauthorized("Invalid token: user not found")
	}
	if errors.Is(err, repo.ErrNotFound) {
		return "", apperr.Unauthorized("Invalid token: user not found")
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	return role, nil
}

func (s *Service) fail(w http.ResponseWriter, op string, err error) {
	if utils.IsInternal(err) {
		s.Log.Error(op+" failed", zap.Error(err))
	}
	utils.RespondWithAppError(w, err)
}

func (s *Service) RegisterCustomerHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var in customerRegistration
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	c, token, err := s.RegisterCustomer(ctx, in)
	if err != nil {
		s.fail(w, "register customer", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"success":    true,
		"token":      token,
		"customerId": c.ID,
		"firstName":  c.FirstName,
		"lastName":   c.LastName,
	})
}

func (s *Service) LoginCustomerHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var in credentials
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	c, token, err := s.LoginCustomer(ctx, in)
	if err != nil {
		s.fail(w, "login customer", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "token": token, "customer": c})
}

func (s *Service) RegisterSellerHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var in sellerRegistration
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	se, token, err := s.RegisterSeller(ctx, in)
	if err != nil {
		s.fail(w, "register seller", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "accessToken": token, "sellerId": se.ID})
}

func (s *Service) LoginSellerHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var in credentials
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	se, token, err := s.LoginSeller(ctx, in)
	if err != nil {
		s.fail(w, "login seller", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "accessToken": token, "seller": se})
}

// AuthCheck reports which kind of account the bearer token belongs to.
func (s *Service) AuthCheck(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	kind, err := s.UserType(ctx, userID, utils.GetRoleFromRequest(r))
	if err != nil {
		s.fail(w, "auth check", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"userType": kind, "userId": userID})
}
