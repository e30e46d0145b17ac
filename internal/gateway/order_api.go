package gateway

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Emmakaranja1/symatech-storefront/internal/domain"
)

// CreateOrderRequest uses the products/shipping_address contract. The backend
// historically accepted an items/street shape too; only this one is current.
type CreateOrderRequest struct {
	Products        []domain.OrderProduct  `json:"products"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
}

// OrderConfirmation is what order creation returns: the identifier and the
// total the backend computed from the submitted lines.
type OrderConfirmation struct {
	OrderID     int64           `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (OrderConfirmation, error) {
	var conf OrderConfirmation
	if err := c.post(ctx, "/orders", req, &conf); err != nil {
		return OrderConfirmation{}, fmt.Errorf("create order: %w", err)
	}
	return conf, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	var order domain.Order
	if err := c.get(ctx, "/orders/"+strconv.FormatInt(orderID, 10), nil, &order); err != nil {
		return domain.Order{}, fmt.Errorf("get order %d: %w", orderID, err)
	}
	return order, nil
}

// OrderPaymentStatus is the backend's answer to a payment status query; the
// client only needs success/failure/pending, not the full state machine.
type OrderPaymentStatus struct {
	OrderID       int64                `json:"order_id"`
	OrderStatus   domain.OrderStatus   `json:"order_status"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
}

func (c *Client) GetOrderPaymentStatus(ctx context.Context, orderID int64) (OrderPaymentStatus, error) {
	var status OrderPaymentStatus
	path := "/orders/" + strconv.FormatInt(orderID, 10) + "/payment-status"
	if err := c.get(ctx, path, nil, &status); err != nil {
		return OrderPaymentStatus{}, fmt.Errorf("get payment status for order %d: %w", orderID, err)
	}
	return status, nil
}

// StockCheck is advisory only; the authoritative check happens at order time.
type StockCheck struct {
	Available         bool   `json:"available"`
	CanPurchase       bool   `json:"can_purchase"`
	RequestedQuantity int32  `json:"requested_quantity"`
	Message           string `json:"message"`
}

func (c *Client) CheckStock(ctx context.Context, productID int64, quantity int32) (StockCheck, error) {
	payload := struct {
		ProductID int64 `json:"product_id"`
		Quantity  int32 `json:"quantity"`
	}{productID, quantity}

	var check StockCheck
	if err := c.post(ctx, "/stock/check", payload, &check); err != nil {
		return StockCheck{}, fmt.Errorf("check stock for product %d: %w", productID, err)
	}
	return check, nil
}

func (c *Client) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	var product domain.Product
	if err := c.get(ctx, "/products/"+strconv.FormatInt(productID, 10), nil, &product); err != nil {
		return domain.Product{}, fmt.Errorf("get product %d: %w", productID, err)
	}
	return product, nil
}
