package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// Role names used by the notification table. Lookups are by human readable name.
const (
	RoleDesign     = "Tasarım"
	RoleSupply     = "Tedarik"
	RolePrinting   = "Matbaa"
	RoleProduction = "Üretim"
	RoleAccounting = "Muhasebe"
	RoleShipping   = "Sevkiyat"
	RoleGeneralMgr = "Genel Müdür"
	RoleAdmin      = "Admin"
)

// Target addresses one role. Roles are tried in order; the first that exists wins.
type Target struct {
	Roles   []string
	Title   string
	Message string // fmt template: %[1]s order id, %[2]s customer name
}

// Rule is the effect descriptor of entering a status.
type Rule struct {
	Targets []Target
}

// Table maps a status to the notifications sent when an order enters it.
type Table map[Status]Rule

// Adjacency lists the statuses reachable from each status.
type Adjacency map[Status][]Status

// DefaultTable returns the department hand-off table.
func DefaultTable() Table {
	return Table{
		StatusSupplyDesignProcess: {Targets: []Target{
			{
				Roles:   []string{RoleDesign},
				Title:   "Yeni Tasarım Talebi",
				Message: "%[1]s numaralı sipariş (%[2]s) için tasarım hazırlanması bekleniyor.",
			},
			{
				Roles:   []string{RoleSupply, RolePrinting},
				Title:   "Yeni Tedarik Talebi",
				Message: "%[1]s numaralı sipariş (%[2]s) için malzeme tedariki başlatılmalı.",
			},
		}},
		StatusDesignApproved: {Targets: []Target{{
			Roles:   []string{RoleSupply, RolePrinting},
			Title:   "Tasarım Onaylandı",
			Message: "%[1]s numaralı siparişin (%[2]s) tasarımı onaylandı, baskı ve tedarik süreci başlayabilir.",
		}}},
		StatusSupplyCompleted: {Targets: []Target{{
			Roles:   []string{RoleProduction},
			Title:   "Tedarik Tamamlandı",
			Message: "%[1]s numaralı sipariş (%[2]s) üretime hazır.",
		}}},
		StatusProductionCompleted: {Targets: []Target{{
			Roles:   []string{RoleAccounting},
			Title:   "Üretim Tamamlandı",
			Message: "%[1]s numaralı sipariş (%[2]s) için fatura kesilmesi bekleniyor.",
		}}},
		StatusInvoiceAdded: {Targets: []Target{{
			Roles:   []string{RoleShipping},
			Title:   "Fatura Eklendi",
			Message: "%[1]s numaralı sipariş (%[2]s) sevkiyata hazır.",
		}}},
		StatusShippingCompleted: {Targets: []Target{{
			Roles:   []string{RoleGeneralMgr, RoleAdmin},
			Title:   "Sevkiyat Tamamlandı",
			Message: "%[1]s numaralı sipariş (%[2]s) teslim edildi, kapanış onayı bekleniyor.",
		}}},
	}
}

// DefaultAdjacency returns the forward path of the lifecycle plus hold and cancel exits.
func DefaultAdjacency() Adjacency {
	active := func(next ...Status) []Status {
		return append(next, StatusCancelled, StatusOnHold)
	}
	resumable := make([]Status, 0, len(Statuses))
	for _, s := range Statuses {
		if !s.Terminal() && s != StatusOnHold {
			resumable = append(resumable, s)
		}
	}
	resumable = append(resumable, StatusCancelled)

	return Adjacency{
		StatusCreated:             active(StatusOfferSent, StatusOfferAccepted, StatusSupplyDesignProcess),
		StatusOfferSent:           active(StatusOfferAccepted),
		StatusOfferAccepted:       active(StatusSupplyDesignProcess),
		StatusSupplyDesignProcess: active(StatusDesignPending, StatusDesignApproved, StatusDesignRejected),
		StatusDesignPending:       active(StatusDesignApproved, StatusDesignRejected),
		StatusDesignRejected:      active(StatusSupplyDesignProcess, StatusDesignPending),
		StatusDesignApproved:      active(StatusSupplyPending, StatusSupplyCompleted),
		StatusSupplyPending:       active(StatusSupplyCompleted),
		StatusSupplyCompleted:     active(StatusProductionPlanned, StatusProductionStarted),
		StatusProductionPlanned:   active(StatusProductionStarted),
		StatusProductionStarted:   {StatusProductionCompleted, StatusOnHold},
		StatusProductionCompleted: {StatusQualityCheck, StatusInvoicePending, StatusInvoiceAdded, StatusOnHold},
		StatusQualityCheck:        {StatusInvoicePending, StatusInvoiceAdded, StatusProductionStarted, StatusOnHold},
		StatusInvoicePending:      {StatusInvoiceAdded, StatusOnHold},
		StatusInvoiceAdded:        {StatusShippingPreparing, StatusShippingCompleted, StatusOnHold},
		StatusShippingPreparing:   {StatusShippingCompleted, StatusOnHold},
		StatusShippingCompleted:   {StatusOrderCompleted},
		StatusOrderCompleted:      {},
		StatusCancelled:           {},
		StatusOnHold:              resumable,
	}
}

// Allows reports whether from -> to is in the adjacency set. Staying put is always allowed.
func (a Adjacency) Allows(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range a[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Validate checks the table and the adjacency set against the status enum.
func Validate(table Table, adjacency Adjacency) error {
	var errs []error

	for status, rule := range table {
		if !status.Valid() {
			errs = append(errs, fmt.Errorf("table: unknown status %q", status))
		}
		if len(rule.Targets) == 0 {
			errs = append(errs, fmt.Errorf("table: %s has no targets", status))
		}
		for i, target := range rule.Targets {
			if len(target.Roles) == 0 {
				errs = append(errs, fmt.Errorf("table: %s target %d has no roles", status, i))
			}
			for _, role := range target.Roles {
				if strings.TrimSpace(role) == "" {
					errs = append(errs, fmt.Errorf("table: %s target %d has a blank role", status, i))
				}
			}
			if target.Title == "" || target.Message == "" {
				errs = append(errs, fmt.Errorf("table: %s target %d has an empty template", status, i))
			}
		}
	}

	for _, status := range Statuses {
		if _, ok := adjacency[status]; !ok {
			errs = append(errs, fmt.Errorf("adjacency: missing entry for %s", status))
		}
	}
	for from, nexts := range adjacency {
		if !from.Valid() {
			errs = append(errs, fmt.Errorf("adjacency: unknown status %q", from))
		}
		for _, to := range nexts {
			if !to.Valid() {
				errs = append(errs, fmt.Errorf("adjacency: %s lists unknown status %q", from, to))
			}
		}
	}

	return errors.Join(errs...)
}
