package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	CancelWindow    = time.Hour
	DeliveryLeadDay = 7 * 24 * time.Hour
)

var (
	ErrEmptyItems           = errors.New("order items are required")
	ErrInvalidItem          = errors.New("order item needs a product and a quantity of at least 1")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrIncompleteAddress    = errors.New("shipping address is incomplete")
	ErrInvalidStatus        = errors.New("unknown order status")
	ErrCancelWindowExpired  = errors.New("cancellation window expired")
	ErrAlreadyClosed        = errors.New("order is already delivered or cancelled")
)

// Draft carries checkout input. Totals are taken as sent by the client.
type Draft struct {
	UserID          string
	Items           []Item
	Subtotal        float64
	Shipping        float64
	Tax             float64
	Total           float64
	ShippingAddress ShippingAddress
	Payment         PaymentInfo
}

// InitialStatus derives the starting order and payment status from the
// payment method. Only a googlepay order carrying a gateway token counts as
// paid at checkout; cod is confirmed but paid on delivery.
func InitialStatus(p PaymentInfo) (Status, PaymentStatus) {
	switch {
	case p.Method == MethodCOD:
		return StatusConfirmed, PaymentPending
	case p.Method == MethodGooglePay && p.GooglePayToken != "":
		return StatusConfirmed, PaymentCompleted
	default:
		return StatusPending, PaymentPending
	}
}

// New builds a fully initialised order ready for its first write.
func New(d Draft, now time.Time) (*Order, error) {
	if len(d.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, it := range d.Items {
		if it.Product == "" || it.Quantity < 1 {
			return nil, ErrInvalidItem
		}
	}
	if !d.Payment.Method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	if !d.ShippingAddress.complete() {
		return nil, ErrIncompleteAddress
	}

	status, paymentStatus := InitialStatus(d.Payment)
	payment := d.Payment
	payment.Status = paymentStatus

	items := make([]Item, len(d.Items))
	copy(items, d.Items)

	estimated := now.Add(DeliveryLeadDay)
	return &Order{
		ID:              uuid.NewString(),
		UserID:          d.UserID,
		Items:           items,
		Total:           d.Total,
		Subtotal:        d.Subtotal,
		Shipping:        d.Shipping,
		Tax:             d.Tax,
		Status:          status,
		StatusHistory:   []StatusEntry{{Status: status, Timestamp: now, Note: "Order created"}},
		ShippingAddress: d.ShippingAddress,
		PaymentInfo:     payment,
		DeliveryTracking: DeliveryTracking{
			EstimatedDelivery: &estimated,
			TrackingUpdates:   []TrackingUpdate{},
		},
		CancellationInfo: CancellationInfo{
			CanCancel:      true,
			CancelDeadline: now.Add(CancelWindow),
			RefundStatus:   RefundNotApplicable,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (a ShippingAddress) complete() bool {
	for _, v := range []string{a.FullName, a.Email, a.Phone, a.Address, a.City, a.State, a.Pincode, a.Country} {
		if v == "" {
			return false
		}
	}
	return true
}

func (o *Order) closed() bool {
	return o.Status == StatusCancelled || o.Status == StatusDelivered
}

// CanBeCancelled reports whether the owner may still cancel at now.
func (o *Order) CanBeCancelled(now time.Time) bool {
	return !o.closed() && now.Before(o.CancellationInfo.CancelDeadline)
}

// hasFix is false for a missing location and for one with a zero
// coordinate.
func (l *Location) hasFix() bool {
	return l != nil && l.Lat != 0 && l.Lng != 0
}

// ApplyStatus sets the status without checking reachability from the
// current one.
func (o *Order) ApplyStatus(status Status, note string, loc *Location, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	o.Status = status
	historyNote := note
	if historyNote == "" {
		historyNote = fmt.Sprintf("Order status updated to %s", status)
	}
	o.StatusHistory = append(o.StatusHistory, StatusEntry{Status: status, Timestamp: now, Note: historyNote})

	if loc.hasFix() {
		l := *loc
		o.DeliveryTracking.CurrentLocation = &l
		trackNote := note
		if trackNote == "" {
			trackNote = fmt.Sprintf("Order %s", status)
		}
		o.DeliveryTracking.TrackingUpdates = append(o.DeliveryTracking.TrackingUpdates, TrackingUpdate{
			Location:  l,
			Status:    status,
			Timestamp: now,
			Note:      trackNote,
		})
	}

	if status == StatusDelivered {
		delivered := now
		o.DeliveryTracking.ActualDelivery = &delivered
		if o.PaymentInfo.Method == MethodCOD {
			o.PaymentInfo.Status = PaymentCompleted
		}
	}
	o.UpdatedAt = now
	return nil
}

// Cancel moves the order to cancelled and starts a refund when money was
// captured by a prepaid method. The order is left untouched on error.
func (o *Order) Cancel(reason string, now time.Time) (*RefundInfo, error) {
	if o.closed() {
		return nil, ErrAlreadyClosed
	}
	if !now.Before(o.CancellationInfo.CancelDeadline) {
		return nil, ErrCancelWindowExpired
	}
	if reason == "" {
		reason = "Cancelled by user"
	}

	cancelledAt := now
	o.Status = StatusCancelled
	o.CancellationInfo.CancelledAt = &cancelledAt
	o.CancellationInfo.CancelReason = reason
	o.CancellationInfo.CanCancel = false

	var refund *RefundInfo
	if o.PaymentInfo.Status == PaymentCompleted && o.PaymentInfo.Method != MethodCOD {
		amount := o.Total
		o.CancellationInfo.RefundStatus = RefundPending
		o.CancellationInfo.RefundAmount = &amount
		o.PaymentInfo.Status = PaymentRefunded
		refund = &RefundInfo{Status: RefundPending, Amount: amount}
	}

	o.StatusHistory = append(o.StatusHistory, StatusEntry{Status: StatusCancelled, Timestamp: now, Note: reason})
	o.UpdatedAt = now
	return refund, nil
}

// TrackingPatch holds the delivery fields an admin may change. Zero values
// are left alone.
type TrackingPatch struct {
	Location            *Location
	DeliveryPersonName  string
	DeliveryPersonPhone string
	Note                string
}

func (o *Order) UpdateTracking(p TrackingPatch, now time.Time) {
	if p.Location != nil {
		l := *p.Location
		note := p.Note
		if note == "" {
			note = "Location updated"
		}
		o.DeliveryTracking.CurrentLocation = &l
		o.DeliveryTracking.TrackingUpdates = append(o.DeliveryTracking.TrackingUpdates, TrackingUpdate{
			Location:  l,
			Status:    o.Status,
			Timestamp: now,
			Note:      note,
		})
	}
	if p.DeliveryPersonName != "" {
		o.DeliveryTracking.DeliveryPersonName = p.DeliveryPersonName
	}
	if p.DeliveryPersonPhone != "" {
		o.DeliveryTracking.DeliveryPersonPhone = p.DeliveryPersonPhone
	}
	o.UpdatedAt = now
}
