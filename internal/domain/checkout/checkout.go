package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/example/storefront-cart/internal/domain/cart"
	"github.com/example/storefront-cart/internal/domain/pricing"
	"github.com/google/uuid"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidAddress       = errors.New("shipping name and street are required")
	ErrInvalidPhone         = errors.New("phone must be a valid Kenyan mobile number")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
)

type PaymentMethod string

const (
	PaymentMPesa          PaymentMethod = "M-Pesa"
	PaymentCashOnDelivery PaymentMethod = "Cash on Delivery"
)

const (
	defaultCity   = "Nairobi"
	defaultCounty = "Nairobi"
)

var kenyanMobile = regexp.MustCompile(`^\+254[17]\d{8}$`)

type ShippingAddress struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Street string `json:"street"`
	City   string `json:"city"`
	County string `json:"county"`
}

type OrderItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// OrderRequest is the body sent to the order API.
type OrderRequest struct {
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	// IdempotencyKey is sent as a header, not in the body
	IdempotencyKey string `json:"-"`
}

// OrderConfirmation is what the order API returns for an accepted order.
type OrderConfirmation struct {
	OrderID string `json:"order_id"`
}

// Submitter places an order with the remote order API.
type Submitter interface {
	Submit(ctx context.Context, req OrderRequest) (*OrderConfirmation, error)
}

// NormalizePhone converts local formats (07.., 254..) to +254...
func NormalizePhone(phone string) string {
	phone = strings.Join(strings.Fields(phone), "")
	switch {
	case strings.HasPrefix(phone, "+254"):
		return phone
	case strings.HasPrefix(phone, "254"):
		return "+" + phone
	case strings.HasPrefix(phone, "0"):
		return "+254" + phone[1:]
	}
	return "+254" + phone
}

// Normalize trims fields, fills city/county defaults and normalises the
// phone number, then validates the result.
func (a ShippingAddress) Normalize() (ShippingAddress, error) {
	a.Name = strings.TrimSpace(a.Name)
	a.Street = strings.TrimSpace(a.Street)
	a.City = strings.TrimSpace(a.City)
	a.County = strings.TrimSpace(a.County)
	if a.City == "" {
		a.City = defaultCity
	}
	if a.County == "" {
		a.County = defaultCounty
	}

	if a.Name == "" || a.Street == "" {
		return a, ErrInvalidAddress
	}
	a.Phone = NormalizePhone(a.Phone)
	if !kenyanMobile.MatchString(a.Phone) {
		return a, ErrInvalidPhone
	}
	return a, nil
}

// ParsePaymentMethod validates m. An empty value selects M-Pesa.
func ParsePaymentMethod(m string) (PaymentMethod, error) {
	switch PaymentMethod(m) {
	case "":
		return PaymentMPesa, nil
	case PaymentMPesa, PaymentCashOnDelivery:
		return PaymentMethod(m), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, m)
}

// BuildOrderRequest maps cart lines to an order request.
func BuildOrderRequest(lines []cart.OrderLine, addr ShippingAddress, method PaymentMethod) (OrderRequest, error) {
	if len(lines) == 0 {
		return OrderRequest{}, ErrEmptyCart
	}
	addr, err := addr.Normalize()
	if err != nil {
		return OrderRequest{}, err
	}
	method, err = ParsePaymentMethod(string(method))
	if err != nil {
		return OrderRequest{}, err
	}

	items := make([]OrderItem, len(lines))
	for i, l := range lines {
		items[i] = OrderItem{Product: l.ProductID, Quantity: l.Quantity}
	}
	return OrderRequest{
		Items:           items,
		ShippingAddress: addr,
		PaymentMethod:   method,
	}, nil
}

// Receipt describes a placed order.
type Receipt struct {
	OrderID string         `json:"order_id"`
	Totals  pricing.Totals `json:"totals"`
	// Warning is set when the cart was cleared in memory but the cleared
	// state could not be persisted.
	Warning error `json:"-"`
}

type Service struct {
	submitter Submitter
}

func NewService(submitter Submitter) *Service {
	return &Service{submitter: submitter}
}

// PlaceOrder submits the cart as an order and then removes the ordered
// quantities from it. Items added while the order was in flight stay in
// the cart. On any failure the cart is left untouched. Retries of the same
// checkout should pass the same idempotencyKey; an empty key gets a fresh
// one.
func (s *Service) PlaceOrder(ctx context.Context, c *cart.Store, addr ShippingAddress, method PaymentMethod, idempotencyKey string) (*Receipt, error) {
	snapshot := c.Snapshot()
	lines := snapshot.OrderLines()

	req, err := BuildOrderRequest(lines, addr, method)
	if err != nil {
		return nil, err
	}
	req.IdempotencyKey = idempotencyKey
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	conf, err := s.submitter.Submit(ctx, req)
	if err != nil {
		log.Printf("[Checkout] Order submission failed for cart %s: %v", c.ID(), err)
		return nil, err
	}

	out := c.RemoveOrdered(ctx, lines)
	log.Printf("[Checkout] Order %s placed for cart %s (%d items)", conf.OrderID, c.ID(), snapshot.Totals.ItemCount)

	return &Receipt{
		OrderID: conf.OrderID,
		Totals:  snapshot.Totals,
		Warning: out.Warning,
	}, nil
}
