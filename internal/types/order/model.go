package order

import "time"

type Status string

const (
	StatusPending        Status = "pending"
	StatusConfirmed      Status = "confirmed"
	StatusPreparing      Status = "preparing"
	StatusShipped        Status = "shipped"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	StatusRefunded       Status = "refunded"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusShipped,
		StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodCard      PaymentMethod = "card"
	MethodUPI       PaymentMethod = "upi"
	MethodWallet    PaymentMethod = "wallet"
	MethodGooglePay PaymentMethod = "googlepay"
	MethodCOD       PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodUPI, MethodWallet, MethodGooglePay, MethodCOD:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type RefundStatus string

const (
	RefundNotApplicable RefundStatus = "not_applicable"
	RefundPending       RefundStatus = "pending"
	RefundProcessing    RefundStatus = "processing"
	RefundCompleted     RefundStatus = "completed"
)

// Item is a line item. Price is the unit price captured at checkout.
type Item struct {
	Product  string  `json:"product" bson:"product"`
	Quantity int     `json:"quantity" bson:"quantity"`
	Price    float64 `json:"price" bson:"price"`
}

type Location struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

type ShippingAddress struct {
	FullName    string    `json:"fullName" bson:"fullName"`
	Email       string    `json:"email" bson:"email"`
	Phone       string    `json:"phone" bson:"phone"`
	Address     string    `json:"address" bson:"address"`
	City        string    `json:"city" bson:"city"`
	State       string    `json:"state" bson:"state"`
	Pincode     string    `json:"pincode" bson:"pincode"`
	Country     string    `json:"country" bson:"country"`
	Coordinates *Location `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
}

type PaymentInfo struct {
	Method         PaymentMethod `json:"method" bson:"method"`
	Status         PaymentStatus `json:"status" bson:"status"`
	TransactionID  string        `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	GooglePayToken string        `json:"googlePayToken,omitempty" bson:"googlePayToken,omitempty"`
	CardLast4      string        `json:"cardLast4,omitempty" bson:"cardLast4,omitempty"`
	UpiID          string        `json:"upiId,omitempty" bson:"upiId,omitempty"`
}

type StatusEntry struct {
	Status    Status    `json:"status" bson:"status"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Note      string    `json:"note" bson:"note"`
}

type TrackingUpdate struct {
	Location  Location  `json:"location" bson:"location"`
	Status    Status    `json:"status" bson:"status"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Note      string    `json:"note" bson:"note"`
}

type DeliveryTracking struct {
	CurrentLocation     *Location        `json:"currentLocation,omitempty" bson:"currentLocation,omitempty"`
	DeliveryPersonName  string           `json:"deliveryPersonName,omitempty" bson:"deliveryPersonName,omitempty"`
	DeliveryPersonPhone string           `json:"deliveryPersonPhone,omitempty" bson:"deliveryPersonPhone,omitempty"`
	EstimatedDelivery   *time.Time       `json:"estimatedDelivery,omitempty" bson:"estimatedDelivery,omitempty"`
	ActualDelivery      *time.Time       `json:"actualDelivery,omitempty" bson:"actualDelivery,omitempty"`
	TrackingUpdates     []TrackingUpdate `json:"trackingUpdates" bson:"trackingUpdates"`
}

type CancellationInfo struct {
	CanCancel      bool         `json:"canCancel" bson:"canCancel"`
	CancelDeadline time.Time    `json:"cancelDeadline" bson:"cancelDeadline"`
	CancelledAt    *time.Time   `json:"cancelledAt,omitempty" bson:"cancelledAt,omitempty"`
	CancelReason   string       `json:"cancelReason,omitempty" bson:"cancelReason,omitempty"`
	RefundStatus   RefundStatus `json:"refundStatus" bson:"refundStatus"`
	RefundAmount   *float64     `json:"refundAmount,omitempty" bson:"refundAmount,omitempty"`
}

type Order struct {
	ID               string           `json:"_id" bson:"_id"`
	UserID           string           `json:"user" bson:"user"`
	Items            []Item           `json:"items" bson:"items"`
	Total            float64          `json:"total" bson:"total"`
	Subtotal         float64          `json:"subtotal" bson:"subtotal"`
	Shipping         float64          `json:"shipping" bson:"shipping"`
	Tax              float64          `json:"tax" bson:"tax"`
	Status           Status           `json:"status" bson:"status"`
	StatusHistory    []StatusEntry    `json:"statusHistory" bson:"statusHistory"`
	ShippingAddress  ShippingAddress  `json:"shippingAddress" bson:"shippingAddress"`
	PaymentInfo      PaymentInfo      `json:"paymentInfo" bson:"paymentInfo"`
	DeliveryTracking DeliveryTracking `json:"deliveryTracking" bson:"deliveryTracking"`
	CancellationInfo CancellationInfo `json:"cancellationInfo" bson:"cancellationInfo"`
	CreatedAt        time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt" bson:"updatedAt"`
}

// RefundInfo is reported to the owner when a cancellation triggers a refund.
type RefundInfo struct {
	Status RefundStatus `json:"status"`
	Amount float64      `json:"amount"`
}
