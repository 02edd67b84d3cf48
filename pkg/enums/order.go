package enums

// OrderStatus tracks fulfilment of a placed order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
	OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
}

var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

func (s OrderStatus) String() string { return string(s) }

func (s OrderStatus) IsValid() bool { return isOneOf(validOrderStatuses, s) }

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return len(orderStatusTransitions[s]) == 0
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return isOneOf(orderStatusTransitions[s], next)
}

func ParseOrderStatus(value string) (OrderStatus, error) {
	return parseOneOf(validOrderStatuses, value, "order status")
}

// PaymentStatus tracks settlement of an order.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded,
}

var paymentStatusTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusPaid:    {PaymentStatusRefunded},
	PaymentStatusFailed:  {PaymentStatusPending},
}

func (p PaymentStatus) String() string { return string(p) }

func (p PaymentStatus) IsValid() bool { return isOneOf(validPaymentStatuses, p) }

func (p PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return isOneOf(paymentStatusTransitions[p], next)
}

func ParsePaymentStatus(value string) (PaymentStatus, error) {
	return parseOneOf(validPaymentStatuses, value, "payment status")
}

// PaymentMethod is recorded on the order; no payment is captured.
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodOnline         PaymentMethod = "online"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCashOnDelivery, PaymentMethodOnline, PaymentMethodBankTransfer,
}

func (p PaymentMethod) String() string { return string(p) }

func (p PaymentMethod) IsValid() bool { return isOneOf(validPaymentMethods, p) }

func ParsePaymentMethod(value string) (PaymentMethod, error) {
	return parseOneOf(validPaymentMethods, value, "payment method")
}
