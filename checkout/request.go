package checkout

import (
	"encoding/json"
	"strings"

	"bazaar/apperr"
	"bazaar/models"
	"bazaar/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const requestSchemaURL = "https://bazaar.local/schemas/checkout-request.schema.json"

const requestSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["paymentMethod", "fullName", "phoneNumber", "email", "checkoutPayload"],
  "properties": {
    "paymentMethod": {"enum": ["cod", "gateway"]},
    "fullName": {"type": "string", "pattern": "\\S"},
    "phoneNumber": {"type": "string", "pattern": "\\S"},
    "email": {"type": "string", "pattern": "^[^@\\s]+@[^@\\s]+$"},
    "addressId": {"type": ["string", "null"]},
    "addressLine1": {"type": ["string", "null"]},
    "addressLine2": {"type": ["string", "null"]},
    "city": {"type": ["string", "null"]},
    "state": {"type": ["string", "null"]},
    "zipCode": {"type": ["string", "null"]},
    "country": {"type": ["string", "null"]},
    "name": {"type": ["string", "null"]},
    "promoCode": {"type": ["string", "null"]},
    "checkoutPayload": {
      "type": "object",
      "required": ["products", "total"],
      "properties": {
        "products": {
          "type": "array",
          "minItems": 1,
          "items": {
            "type": "object",
            "required": ["productId", "quantity", "price"],
            "properties": {
              "productId": {"type": "string", "pattern": "^[0-9a-fA-F]{24}$"},
              "quantity": {"type": "integer", "minimum": 1},
              "price": {"type": "number", "minimum": 0}
            }
          }
        },
        "subtotal": {"type": "number", "minimum": 0},
        "shipping": {"type": ["number", "null"], "minimum": 0},
        "tax": {"type": ["number", "null"], "minimum": 0},
        "total": {"type": "number", "minimum": 0}
      }
    }
  }
}`

var compiledSchema = utils.MustCompileSchema(requestSchemaURL, requestSchema)

type lineRequest struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type payloadRequest struct {
	Products []lineRequest `json:"products"`
	Subtotal float64       `json:"subtotal"`
	Shipping *float64      `json:"shipping"`
	Tax      *float64      `json:"tax"`
	Total    float64       `json:"total"`
}

// Request is a validated checkout submission.
type Request struct {
	PaymentMethod string
	FullName      string
	PhoneNumber   string
	Email         string
	AddressID     *primitive.ObjectID
	Address       AddressInput
	Payload       models.CheckoutPayload
}

// AddressInput holds the inline address fields used when no addressId is given.
type AddressInput struct {
	Name         string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	ZipCode      string
	Country      string
}

type rawRequest struct {
	PaymentMethod   string         `json:"paymentMethod"`
	FullName        string         `json:"fullName"`
	PhoneNumber     string         `json:"phoneNumber"`
	Email           string         `json:"email"`
	AddressID       *string        `json:"addressId"`
	AddressLine1    *string        `json:"addressLine1"`
	AddressLine2    *string        `json:"addressLine2"`
	City            *string        `json:"city"`
	State           *string        `json:"state"`
	ZipCode         *string        `json:"zipCode"`
	Country         *string        `json:"country"`
	Name            *string        `json:"name"`
	CheckoutPayload payloadRequest `json:"checkoutPayload"`
}

// ParseRequest validates body against the checkout schema and converts it.
func ParseRequest(body []byte) (*Request, error) {
	if err := utils.ValidateJSON(compiledSchema, body, "checkout request"); err != nil {
		return nil, err
	}

	var raw rawRequest
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperr.Validation("invalid request body")
	}

	req := &Request{
		PaymentMethod: raw.PaymentMethod,
		FullName:      strings.TrimSpace(raw.FullName),
		PhoneNumber:   strings.TrimSpace(raw.PhoneNumber),
		Email:         strings.TrimSpace(raw.Email),
		Address: AddressInput{
			Name:         str(raw.Name),
			AddressLine1: str(raw.AddressLine1),
			AddressLine2: str(raw.AddressLine2),
			City:         str(raw.City),
			State:        str(raw.State),
			ZipCode:      str(raw.ZipCode),
			Country:      str(raw.Country),
		},
		Payload: models.CheckoutPayload{
			Subtotal: raw.CheckoutPayload.Subtotal,
			Total:    raw.CheckoutPayload.Total,
		},
	}
	if raw.CheckoutPayload.Shipping != nil {
		req.Payload.Shipping = *raw.CheckoutPayload.Shipping
	}
	if raw.CheckoutPayload.Tax != nil {
		req.Payload.Tax = *raw.CheckoutPayload.Tax
	}
	if id := str(raw.AddressID); id != "" {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, apperr.Validation("invalid addressId")
		}
		req.AddressID = &oid
	}
	for _, l := range raw.CheckoutPayload.Products {
		pid, err := primitive.ObjectIDFromHex(l.ProductID)
		if err != nil {
			return nil, apperr.Validation("invalid productId " + l.ProductID)
		}
		req.Payload.Products = append(req.Payload.Products, models.LineItem{ProductID: pid, Quantity: l.Quantity, Price: l.Price})
	}
	return req, nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
