// Package workflow decides the side effects of an order moving between statuses.
package workflow

// Status is a step of the order lifecycle.
type Status string

const (
	StatusCreated             Status = "created"
	StatusOfferSent           Status = "offer_sent"
	StatusOfferAccepted       Status = "offer_accepted"
	StatusSupplyDesignProcess Status = "supply_design_process"
	StatusDesignPending       Status = "design_pending"
	StatusDesignRejected      Status = "design_rejected"
	StatusDesignApproved      Status = "design_approved"
	StatusSupplyPending       Status = "supply_pending"
	StatusSupplyCompleted     Status = "supply_completed"
	StatusProductionPlanned   Status = "production_planned"
	StatusProductionStarted   Status = "production_started"
	StatusProductionCompleted Status = "production_completed"
	StatusQualityCheck        Status = "quality_check"
	StatusInvoicePending      Status = "invoice_pending"
	StatusInvoiceAdded        Status = "invoice_added"
	StatusShippingPreparing   Status = "shipping_preparing"
	StatusShippingCompleted   Status = "shipping_completed"
	StatusOrderCompleted      Status = "order_completed"
	StatusCancelled           Status = "cancelled"
	StatusOnHold              Status = "on_hold"
)

// InitialStatus is assigned to orders created without a status.
const InitialStatus = StatusCreated

// Statuses lists every known status in lifecycle order.
var Statuses = []Status{
	StatusCreated,
	StatusOfferSent,
	StatusOfferAccepted,
	StatusSupplyDesignProcess,
	StatusDesignPending,
	StatusDesignRejected,
	StatusDesignApproved,
	StatusSupplyPending,
	StatusSupplyCompleted,
	StatusProductionPlanned,
	StatusProductionStarted,
	StatusProductionCompleted,
	StatusQualityCheck,
	StatusInvoicePending,
	StatusInvoiceAdded,
	StatusShippingPreparing,
	StatusShippingCompleted,
	StatusOrderCompleted,
	StatusCancelled,
	StatusOnHold,
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusOrderCompleted || s == StatusCancelled
}
