package checkout

// Status is the client-visible checkout state machine. Idle and Failed are the
// only states a new attempt may begin from; OrderCreated and PaymentInFlight
// run against a snapshot, so cart mutations cannot interrupt them.
type Status string

const (
	StatusIdle            Status = "IDLE"
	StatusOrderSubmitting Status = "ORDER_SUBMITTING"
	StatusOrderCreated    Status = "ORDER_CREATED"
	StatusPaymentInFlight Status = "PAYMENT_IN_FLIGHT"
	StatusCompleted       Status = "COMPLETED"
	StatusFailed          Status = "FAILED"
)

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}

var transitions = map[Status][]Status{
	StatusIdle:            {StatusOrderSubmitting},
	StatusOrderSubmitting: {StatusOrderCreated, StatusFailed},
	StatusOrderCreated:    {StatusPaymentInFlight, StatusFailed},
	StatusPaymentInFlight: {StatusCompleted, StatusFailed},
	StatusFailed:          {StatusOrderSubmitting},
}

func CanTransitionTo(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
