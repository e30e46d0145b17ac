package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Emmakaranja1/symatech-storefront/internal/domain"
	"github.com/Emmakaranja1/symatech-storefront/internal/events"
	"github.com/Emmakaranja1/symatech-storefront/internal/gateway"
	"github.com/Emmakaranja1/symatech-storefront/internal/payment"
	"github.com/Emmakaranja1/symatech-storefront/internal/session"
)

const currency = "KES"

// FailureKind discriminates checkout outcomes so callers can tell a local
// validation error from a backend rejection.
type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureValidation FailureKind = "validation"
	FailureOrder      FailureKind = "order"
	FailurePayment    FailureKind = "payment"
)

// Request is the checkout entry point's input.
type Request struct {
	Shipping domain.ShippingAddress
	Method   domain.PaymentMethod
	Phone    string // mpesa only
}

// Outcome is the result of one checkout attempt. For the configured card
// method the first phase ends at PAYMENT_IN_FLIGHT with the payment link; the
// terminal outcome arrives through ResolveCard.
type Outcome struct {
	CheckoutID       string
	Status           Status
	Kind             FailureKind
	Reason           string
	OrderID          int64
	Total            decimal.Decimal
	CorrelationToken string
	PaymentLink      string
	CustomerMessage  string
}

func (o Outcome) Completed() bool {
	return o.Status == StatusCompleted
}

// AwaitingPayment reports whether the checkout is parked on the provider
// overlay and will be finished by the callback endpoint.
func (o Outcome) AwaitingPayment() bool {
	return o.Status == StatusPaymentInFlight
}

// CartStore is the slice of the cart store the orchestrator uses.
type CartStore interface {
	Snapshot(sess session.Session) domain.Cart
	Clear(ctx context.Context, sess session.Session) domain.Cart
}

type OrderGateway interface {
	CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (gateway.OrderConfirmation, error)
}

type MobilePush interface {
	Initiate(ctx context.Context, orderID int64, rawPhone string) (domain.PaymentAttempt, error)
}

type CardFlow interface {
	Configured() bool
	Initiate(ctx context.Context, orderID int64, amount decimal.Decimal, currency string, customer payment.Customer) (payment.CardPayment, error)
	Verify(ctx context.Context, transactionID string) (gateway.PaymentVerification, error)
}

type EventPublisher interface {
	CheckoutCompleted(ctx context.Context, ev events.CheckoutCompleted)
}

// pendingCard holds everything completion needs once the overlay reports
// back: the snapshot the order was built from, who to clear, and the totals
// the event carries.
type pendingCard struct {
	checkoutID string
	sess       session.Session
	orderID    int64
	snapshot   domain.Cart
	total      decimal.Decimal
	expire     *time.Timer
}

// Orchestrator converts one cart snapshot into exactly one order and drives
// the selected payment protocol to a terminal outcome.
type Orchestrator struct {
	cart   CartStore
	orders OrderGateway
	push   MobilePush
	card   CardFlow
	events EventPublisher // optional
	window time.Duration
	log    zerolog.Logger

	mu      sync.Mutex
	pending map[string]*pendingCard
}

func NewOrchestrator(cart CartStore, orders OrderGateway, push MobilePush, card CardFlow, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		cart:    cart,
		orders:  orders,
		push:    push,
		card:    card,
		window:  2 * time.Minute,
		log:     log,
		pending: make(map[string]*pendingCard),
	}
}

// WithEvents attaches a publisher for completed checkouts.
func (o *Orchestrator) WithEvents(pub EventPublisher) *Orchestrator {
	o.events = pub
	return o
}

// WithCallbackWindow bounds how long a card checkout stays resolvable after
// initiation. An expired attempt is abandoned with the cart kept.
func (o *Orchestrator) WithCallbackWindow(d time.Duration) *Orchestrator {
	if d > 0 {
		o.window = d
	}
	return o
}

// Checkout runs one attempt. It never panics into the caller: every failure
// comes back as a discriminated Outcome with a human-readable reason.
func (o *Orchestrator) Checkout(ctx context.Context, sess session.Session, req Request) Outcome {
	checkoutID := uuid.New().String()
	log := o.log.With().Str("checkout_id", checkoutID).Str("owner", sess.Owner).Logger()
	status := StatusIdle

	// Local preflight: reject before any network call.
	snapshot := o.cart.Snapshot(sess)
	if snapshot.IsEmpty() {
		return o.fail(checkoutID, FailureValidation, domain.ErrEmptyCart.Error())
	}
	if !req.Method.Valid() {
		return o.fail(checkoutID, FailureValidation, domain.ErrInvalidPaymentMethod.Error())
	}
	phone := ""
	if req.Method == domain.PaymentMethodMpesa {
		normalized, err := payment.NormalizePhone(req.Phone)
		if err != nil {
			return o.fail(checkoutID, FailureValidation, err.Error())
		}
		phone = normalized
	}

	status = o.advance(log, status, StatusOrderSubmitting)

	conf, err := o.orders.CreateOrder(ctx, buildOrderRequest(snapshot, req.Shipping))
	if err != nil {
		// No order, no payment attempt, cart untouched so the user can retry.
		log.Error().Err(err).Msg("order creation failed, aborting checkout")
		return o.fail(checkoutID, FailureOrder, reasonFrom(err))
	}
	status = o.advance(log, status, StatusOrderCreated)

	total := conf.TotalAmount
	if total.IsZero() {
		total = snapshot.TotalPrice()
	}
	log.Info().Int64("order_id", conf.OrderID).Str("total", total.String()).Msg("order created")

	status = o.advance(log, status, StatusPaymentInFlight)

	var token, customerMessage string
	switch req.Method {
	case domain.PaymentMethodMpesa:
		attempt, err := o.push.Initiate(ctx, conf.OrderID, phone)
		if err != nil {
			// Order stays pending in the backend; cart is kept for retry.
			log.Error().Err(err).Int64("order_id", conf.OrderID).Msg("mpesa initiation failed")
			return o.fail(checkoutID, FailurePayment, reasonFrom(err))
		}
		token = attempt.CorrelationToken
		customerMessage = "M-PESA push sent, check your phone to complete payment"

	case domain.PaymentMethodFlutterwave:
		if !o.card.Configured() {
			// Explicit fallback for environments without a payment provider.
			log.Warn().Int64("order_id", conf.OrderID).Msg("payment widget not configured, treating order as paid")
			break
		}
		cp, err := o.card.Initiate(ctx, conf.OrderID, total, currency, customerFrom(sess))
		if err != nil {
			log.Error().Err(err).Int64("order_id", conf.OrderID).Msg("card payment initiation failed")
			return o.fail(checkoutID, FailurePayment, reasonFrom(err))
		}
		// The checkout parks here. The UI opens the payment link; the overlay
		// callback carries the reference back and ResolveCard finishes the
		// attempt. The cart stays intact until then.
		o.registerCard(checkoutID, sess, conf.OrderID, snapshot, total, cp.TransactionReference)
		log.Info().Int64("order_id", conf.OrderID).
			Str("transaction_reference", cp.TransactionReference).Msg("awaiting card payment callback")
		return Outcome{
			CheckoutID:       checkoutID,
			Status:           status,
			OrderID:          conf.OrderID,
			Total:            total,
			CorrelationToken: cp.TransactionReference,
			PaymentLink:      cp.PaymentLink,
			CustomerMessage:  "complete payment in the provider window",
		}
	}

	o.cart.Clear(ctx, sess)
	status = o.advance(log, status, StatusCompleted)
	log.Info().Int64("order_id", conf.OrderID).Msg("checkout completed")

	o.publishCompleted(ctx, checkoutID, sess, conf.OrderID, snapshot, total)

	return Outcome{
		CheckoutID:       checkoutID,
		Status:           status,
		OrderID:          conf.OrderID,
		Total:            total,
		CorrelationToken: token,
		CustomerMessage:  customerMessage,
	}
}

// ResolveCard finishes the checkout waiting on the callback's transaction
// reference. ok is false when no attempt is pending for it because the
// checkout was never initiated, already resolved, or expired. A successful
// callback is verified against the backend before the cart clears; a
// verification outage is non-fatal because the backend reconciles from the
// provider webhook.
func (o *Orchestrator) ResolveCard(ctx context.Context, cb payment.ProviderCallback) (Outcome, bool) {
	p := o.takePending(cb.TransactionID)
	if p == nil {
		o.log.Warn().Str("transaction_id", cb.TransactionID).Msg("callback for unknown payment attempt, ignoring")
		return Outcome{}, false
	}
	log := o.log.With().Str("checkout_id", p.checkoutID).Str("owner", p.sess.Owner).Logger()

	if !cb.Successful() {
		log.Warn().Str("transaction_id", cb.TransactionID).Str("provider_status", cb.Status).
			Msg("card payment not completed")
		out := o.fail(p.checkoutID, FailurePayment, "payment was not completed")
		out.OrderID = p.orderID
		return out, true
	}

	if _, err := o.card.Verify(ctx, cb.TransactionID); err != nil {
		log.Warn().Err(err).Str("transaction_id", cb.TransactionID).
			Msg("payment verification unavailable, completing checkout optimistically")
	}

	o.cart.Clear(ctx, p.sess)
	status := o.advance(log, StatusPaymentInFlight, StatusCompleted)
	log.Info().Int64("order_id", p.orderID).Msg("checkout completed")

	o.publishCompleted(ctx, p.checkoutID, p.sess, p.orderID, p.snapshot, p.total)

	return Outcome{
		CheckoutID:       p.checkoutID,
		Status:           status,
		OrderID:          p.orderID,
		Total:            p.total,
		CorrelationToken: cb.TransactionID,
	}, true
}

func (o *Orchestrator) registerCard(checkoutID string, sess session.Session, orderID int64, snapshot domain.Cart, total decimal.Decimal, ref string) {
	p := &pendingCard{
		checkoutID: checkoutID,
		sess:       sess,
		orderID:    orderID,
		snapshot:   snapshot,
		total:      total,
	}
	o.mu.Lock()
	p.expire = time.AfterFunc(o.window, func() {
		if o.takePending(ref) != nil {
			o.log.Warn().Str("checkout_id", checkoutID).Str("transaction_reference", ref).
				Msg("card payment window elapsed, abandoning checkout")
		}
	})
	o.pending[ref] = p
	o.mu.Unlock()
}

func (o *Orchestrator) takePending(ref string) *pendingCard {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.pending[ref]
	if !ok {
		return nil
	}
	delete(o.pending, ref)
	p.expire.Stop()
	return p
}

func (o *Orchestrator) fail(checkoutID string, kind FailureKind, reason string) Outcome {
	return Outcome{CheckoutID: checkoutID, Status: StatusFailed, Kind: kind, Reason: reason}
}

func (o *Orchestrator) advance(log zerolog.Logger, from, to Status) Status {
	if !CanTransitionTo(from, to) {
		// Linear flow above makes this unreachable; log loudly if it ever isn't.
		log.Error().Stringer("from", from).Stringer("to", to).Msg("illegal checkout status transition")
		return from
	}
	return to
}

func (o *Orchestrator) publishCompleted(ctx context.Context, checkoutID string, sess session.Session, orderID int64, snapshot domain.Cart, total decimal.Decimal) {
	if o.events == nil {
		return
	}
	items := make([]events.CheckoutCompletedItem, len(snapshot.Lines))
	for i, line := range snapshot.Lines {
		items[i] = events.CheckoutCompletedItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.Product.Price,
		}
	}
	o.events.CheckoutCompleted(ctx, events.CheckoutCompleted{
		CheckoutID:  checkoutID,
		Owner:       sess.Owner,
		OrderID:     orderID,
		Items:       items,
		TotalAmount: total,
		Currency:    currency,
		CompletedAt: time.Now(),
	})
}

func customerFrom(sess session.Session) payment.Customer {
	if sess.Identity == nil {
		return payment.Customer{}
	}
	return payment.Customer{Name: sess.Identity.Name, Email: sess.Identity.Email}
}

func buildOrderRequest(snapshot domain.Cart, shipping domain.ShippingAddress) gateway.CreateOrderRequest {
	products := make([]domain.OrderProduct, len(snapshot.Lines))
	for i, line := range snapshot.Lines {
		products[i] = domain.OrderProduct{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
			Price:     line.Product.Price,
		}
	}
	return gateway.CreateOrderRequest{Products: products, ShippingAddress: shipping}
}

// reasonFrom prefers the backend's own message when one is available.
func reasonFrom(err error) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
