// Package checkout hosts the order-creation wizard as server-side
// sessions: three ordered steps (customer, order, payment) where each
// step's backend create must succeed before the next becomes reachable.
//
// The chain is a saga with compensation recorded but rarely run: every
// created backend record lands in the session's Completed list, and only
// an explicit Abandon drains that list with compensating deletes. Step
// failures and backward navigation leave prior records in place, matching
// the retry-in-place behavior of the storefront flow this replaces.
package checkout

import (
	"time"

	"github.com/tanvtse183061-eng/dealer-checkout/internal/dealer"
)

// Step is the wizard cursor. Exactly one step is active per session.
type Step int

const (
	StepCustomer Step = 1
	StepOrder    Step = 2
	StepPayment  Step = 3
)

func (s Step) String() string {
	switch s {
	case StepCustomer:
		return "customer"
	case StepOrder:
		return "order"
	case StepPayment:
		return "payment"
	}
	return "unknown"
}

// State is the session lifecycle state.
type State string

const (
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateAbandoned State = "abandoned"
)

// Resource identifies the kind of backend record a completed step created.
type Resource string

const (
	ResourceCustomer Resource = "customer"
	ResourceOrder    Resource = "order"
	ResourcePayment  Resource = "payment"
)

// CompletedStep is one entry of the saga compensation table: a backend
// record this session created, in creation order.
type CompletedStep struct {
	Resource Resource  `json:"resource"`
	ID       dealer.ID `json:"id"`
}

// Preselection carries the fuzzy-matched variant/color suggestion. It is
// advisory; the submitted order may pick anything else.
type Preselection struct {
	VariantID dealer.ID `json:"variantId,omitempty"`
	ColorID   dealer.ID `json:"colorId,omitempty"`
}

// References holds the catalog lists loaded when the session reached
// step 2. LoadError is set when the load failed; the step stays usable so
// the client can surface the error and retry by reopening.
type References struct {
	Variants  []dealer.Variant `json:"variants,omitempty"`
	Colors    []dealer.Color   `json:"colors,omitempty"`
	Preselect Preselection     `json:"preselect"`
	LoadError string           `json:"loadError,omitempty"`
}

// Session is one wizard run. It is persisted as a whole on every
// transition; Version implements optimistic concurrency in the store.
type Session struct {
	ID    string `json:"id"`
	Step  Step   `json:"step"`
	State State  `json:"state"`

	VehicleHint string `json:"vehicleHint,omitempty"`
	ColorHint   string `json:"colorHint,omitempty"`

	CustomerID  dealer.ID `json:"customerId,omitempty"`
	OrderID     dealer.ID `json:"orderId,omitempty"`
	OrderNumber string    `json:"orderNumber,omitempty"`
	PaymentID   dealer.ID `json:"paymentId,omitempty"`

	References *References     `json:"references,omitempty"`
	Completed  []CompletedStep `json:"completed,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// record appends a backend record to the compensation table.
func (s *Session) record(r Resource, id dealer.ID) {
	s.Completed = append(s.Completed, CompletedStep{Resource: r, ID: id})
}

// variantName resolves a variant id against the loaded references,
// falling back to the raw id when the catalog is not available.
func (s *Session) variantName(id dealer.ID) string {
	if s.References != nil {
		for _, v := range s.References.Variants {
			if v.ID == id {
				return v.Name
			}
		}
	}
	return string(id)
}

// colorName resolves a color id against the loaded references.
func (s *Session) colorName(id dealer.ID) string {
	if s.References != nil {
		for _, c := range s.References.Colors {
			if c.ID == id {
				return c.Name
			}
		}
	}
	return string(id)
}
