package workflow

import (
	"fmt"
)

// Notice types stored on notification rows.
const (
	NoticeWorkflow   = "workflow"
	NoticeAssignment = "assignment"
)

// Snapshot is the part of an order the planner looks at.
type Snapshot struct {
	OrderID          string
	CustomerName     string
	Status           Status
	AssignedUserID   string
	AssignedRoleName string
}

// Notice is a notification to create. Exactly one of UserID or Roles is set.
// Roles holds the role names to try in order; the first that exists receives it.
type Notice struct {
	UserID  string
	Roles   []string
	Title   string
	Message string
	Type    string
}

// Effects are the side effects of moving from one snapshot to the next.
type Effects struct {
	Notifications []Notice
	DeductStock   bool
}

// Engine plans side effects against a table and optionally enforces an adjacency set.
type Engine struct {
	table     Table
	adjacency Adjacency
	strict    bool
}

// NewEngine builds an engine after validating the table and adjacency set.
func NewEngine(table Table, adjacency Adjacency, strict bool) (*Engine, error) {
	if err := Validate(table, adjacency); err != nil {
		return nil, fmt.Errorf("invalid workflow definition: %w", err)
	}
	return &Engine{table: table, adjacency: adjacency, strict: strict}, nil
}

// Default returns an engine over the built-in table and adjacency set.
func Default(strict bool) (*Engine, error) {
	return NewEngine(DefaultTable(), DefaultAdjacency(), strict)
}

// Strict reports whether transitions outside the adjacency set are rejected.
func (e *Engine) Strict() bool {
	return e.strict
}

// Check returns an error when the engine is strict and from -> to is not allowed.
// Unknown target statuses are always rejected.
func (e *Engine) Check(from, to Status) error {
	if !to.Valid() {
		return &TransitionError{From: from, To: to, Reason: "unknown status"}
	}
	if !e.strict || from == "" || from == to {
		return nil
	}
	if !e.adjacency.Allows(from, to) {
		return &TransitionError{From: from, To: to, Reason: "transition not allowed"}
	}
	return nil
}

// Next lists the statuses reachable from s.
func (e *Engine) Next(s Status) []Status {
	next := e.adjacency[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// Plan decides which notifications to send and whether to deduct stock.
func (e *Engine) Plan(before, after Snapshot) Effects {
	var effects Effects

	if after.Status != before.Status {
		if rule, ok := e.table[after.Status]; ok {
			for _, target := range rule.Targets {
				roles := make([]string, len(target.Roles))
				copy(roles, target.Roles)
				effects.Notifications = append(effects.Notifications, Notice{
					Roles:   roles,
					Title:   target.Title,
					Message: fmt.Sprintf(target.Message, after.OrderID, after.CustomerName),
					Type:    NoticeWorkflow,
				})
			}
		}
	}

	switch {
	case after.AssignedUserID != "" && after.AssignedUserID != before.AssignedUserID:
		effects.Notifications = append(effects.Notifications, Notice{
			UserID:  after.AssignedUserID,
			Title:   "Yeni Görev Ataması",
			Message: fmt.Sprintf("%s numaralı sipariş (%s) size atandı.", after.OrderID, after.CustomerName),
			Type:    NoticeAssignment,
		})
	case after.AssignedRoleName != "" && after.AssignedRoleName != before.AssignedRoleName:
		effects.Notifications = append(effects.Notifications, Notice{
			Roles:   []string{after.AssignedRoleName},
			Title:   "Yeni Görev Ataması",
			Message: fmt.Sprintf("%s numaralı sipariş (%s) biriminize atandı.", after.OrderID, after.CustomerName),
			Type:    NoticeAssignment,
		})
	}

	effects.DeductStock = after.Status == StatusShippingCompleted && before.Status != StatusShippingCompleted

	return effects
}

// TransitionError describes a rejected status change.
type TransitionError struct {
	From   Status
	To     Status
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", e.Reason, e.From, e.To)
}
