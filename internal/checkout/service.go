package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tanvtse183061-eng/dealer-checkout/internal/catalog"
	"github.com/tanvtse183061-eng/dealer-checkout/internal/dealer"
	"github.com/tanvtse183061-eng/dealer-checkout/internal/events"
)

// Backend is the slice of the dealership API the wizard consumes.
// *dealer.Client satisfies it; tests substitute recording fakes.
type Backend interface {
	CreateCustomer(ctx context.Context, form dealer.CustomerForm) (*dealer.Customer, error)
	DeleteCustomer(ctx context.Context, id dealer.ID) error
	CreateOrder(ctx context.Context, form dealer.OrderForm) (*dealer.Order, error)
	DeleteOrder(ctx context.Context, id dealer.ID) error
	CreatePayment(ctx context.Context, form dealer.PaymentForm) (*dealer.Payment, error)
	DeletePayment(ctx context.Context, id dealer.ID) error
	ListVariants(ctx context.Context) ([]dealer.Variant, error)
	ListColors(ctx context.Context) ([]dealer.Color, error)
	ListInventory(ctx context.Context, filter dealer.InventoryFilter) ([]dealer.InventoryUnit, error)
}

// Config holds the wizard's tunables.
type Config struct {
	// SessionTTL is how long an idle active session survives.
	SessionTTL time.Duration
	// CompletedTTL is how long a completed session (the receipt) stays
	// readable before expiring.
	CompletedTTL time.Duration
	// Producer names this service in published events.
	Producer string
}

// Service drives wizard sessions: it owns the step cursor, carries the
// identifiers each completed step produced, and never lets a step run
// before its predecessor's create call has succeeded.
type Service struct {
	backend Backend
	store   Store
	events  events.Publisher
	cfg     Config
}

// NewService wires a Service.
func NewService(backend Backend, store Store, pub events.Publisher, cfg Config) *Service {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if cfg.CompletedTTL == 0 {
		cfg.CompletedTTL = 3 * time.Second
	}
	if cfg.Producer == "" {
		cfg.Producer = "checkout-gateway"
	}
	return &Service{backend: backend, store: store, events: pub, cfg: cfg}
}

// StartRequest opens a session. The hints are the free-text product
// name/color of the storefront page that launched the checkout.
type StartRequest struct {
	VehicleHint string
	ColorHint   string
}

// Start creates a session at step 1.
func (s *Service) Start(ctx context.Context, req StartRequest) (*Session, error) {
	sess := &Session{
		ID:          uuid.NewString(),
		Step:        StepCustomer,
		State:       StateActive,
		VehicleHint: req.VehicleHint,
		ColorHint:   req.ColorHint,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Put(ctx, sess, s.cfg.SessionTTL); err != nil {
		return nil, errors.Wrap(err, "store session")
	}
	return sess, nil
}

// Get fetches a session, completed receipts included while they last.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

// SubmitCustomer runs step 1: local validation, then the backend create.
// On success the session advances to step 2 and the catalog references
// are loaded. On backend failure the session stays on step 1 untouched,
// ready for a corrected retry.
func (s *Service) SubmitCustomer(ctx context.Context, id string, form dealer.CustomerForm) (*Session, error) {
	sess, err := s.activeAt(ctx, id, StepCustomer)
	if err != nil {
		return nil, err
	}
	if err := validateCustomer(form); err != nil {
		return nil, err
	}

	cust, err := s.backend.CreateCustomer(ctx, form)
	if err != nil {
		return nil, err
	}
	// A second submit after Back lands here too: the previous customer is
	// not deduplicated, only remembered for compensation.
	sess.CustomerID = cust.ID
	sess.record(ResourceCustomer, cust.ID)

	return s.advanceToOrder(ctx, sess)
}

// SkipCustomer advances an anonymous checkout to step 2 without creating
// a customer record.
func (s *Service) SkipCustomer(ctx context.Context, id string) (*Session, error) {
	sess, err := s.activeAt(ctx, id, StepCustomer)
	if err != nil {
		return nil, err
	}
	return s.advanceToOrder(ctx, sess)
}

// advanceToOrder moves the cursor to step 2, loads the reference lists,
// and pre-selects from the hints.
func (s *Service) advanceToOrder(ctx context.Context, sess *Session) (*Session, error) {
	sess.Step = StepOrder
	sess.References = s.loadReferences(ctx, sess)
	if err := s.store.Put(ctx, sess, s.cfg.SessionTTL); err != nil {
		return nil, errors.Wrap(err, "store session")
	}
	return sess, nil
}

// loadReferences fetches variants and colors concurrently. A failure is
// recorded on the session instead of aborting the step: the step stays
// reachable with empty dropdowns, mirroring the error-banner behavior of
// the storefront.
func (s *Service) loadReferences(ctx context.Context, sess *Session) *References {
	refs := &References{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		variants, err := s.backend.ListVariants(gctx)
		if err != nil {
			return errors.Wrap(err, "load variants")
		}
		refs.Variants = variants
		return nil
	})
	g.Go(func() error {
		colors, err := s.backend.ListColors(gctx)
		if err != nil {
			return errors.Wrap(err, "load colors")
		}
		refs.Colors = colors
		return nil
	})
	if err := g.Wait(); err != nil {
		zctx.From(ctx).Warn("Reference load failed",
			zap.String("session", sess.ID),
			zap.Error(err),
		)
		refs.LoadError = err.Error()
		return refs
	}

	if v, ok := catalog.MatchVariant(sess.VehicleHint, refs.Variants); ok {
		refs.Preselect.VariantID = v.ID
	}
	if c, ok := catalog.MatchColor(sess.ColorHint, refs.Colors); ok {
		refs.Preselect.ColorID = c.ID
	}
	return refs
}

// Availability is the outcome of the inventory gate.
type Availability struct {
	// Units is the number of matching units in stock.
	Units int `json:"units"`
	// Blocked reports that submission must not proceed.
	Blocked bool `json:"blocked"`
	// Unknown reports that the inventory query itself failed. The gate
	// fails open: Blocked stays false.
	Unknown bool `json:"unknown"`
	// Message is the user-facing text when Blocked.
	Message string `json:"message,omitempty"`
}

// CheckAvailability re-runs the inventory gate for the current selection.
// Clients call it whenever the variant or color choice changes on step 2.
func (s *Service) CheckAvailability(ctx context.Context, id string, variantID, colorID dealer.ID) (*Availability, error) {
	sess, err := s.activeAt(ctx, id, StepOrder)
	if err != nil {
		return nil, err
	}
	if variantID == "" {
		return nil, &ValidationError{Field: "variantId", Reason: "is required"}
	}
	avail, _ := s.availability(ctx, sess, variantID, colorID)
	return avail, nil
}

// availability queries inventory for variant (+color) with status
// available and filters client-side as well, tolerating backends that
// ignore query parameters. A query failure fails open.
func (s *Service) availability(ctx context.Context, sess *Session, variantID, colorID dealer.ID) (*Availability, *AvailabilityError) {
	units, err := s.backend.ListInventory(ctx, dealer.InventoryFilter{
		VariantID: variantID,
		ColorID:   colorID,
		Status:    dealer.StatusAvailable,
	})
	if err != nil {
		zctx.From(ctx).Warn("Inventory check failed, allowing submission",
			zap.String("session", sess.ID),
			zap.String("variant", string(variantID)),
			zap.Error(err),
		)
		return &Availability{Unknown: true}, nil
	}

	count := 0
	for _, u := range units {
		if u.VariantID != variantID {
			continue
		}
		if colorID != "" && u.ColorID != colorID {
			continue
		}
		if !strings.EqualFold(u.Status, dealer.StatusAvailable) {
			continue
		}
		count++
	}
	if count == 0 {
		gateErr := &AvailabilityError{VariantName: sess.variantName(variantID)}
		if colorID != "" {
			gateErr.ColorName = sess.colorName(colorID)
		}
		return &Availability{Blocked: true, Message: gateErr.Error()}, gateErr
	}
	return &Availability{Units: count}, nil
}

// SubmitOrder runs step 2. The availability gate runs again at submit
// time; a blocked gate means no order create is issued at all. On backend
// failure the session stays on step 2 and the already-created customer is
// deliberately left in place (see Abandon for the compensation path).
func (s *Service) SubmitOrder(ctx context.Context, id string, form dealer.OrderForm) (*Session, error) {
	sess, err := s.activeAt(ctx, id, StepOrder)
	if err != nil {
		return nil, err
	}
	if form.VariantID == "" {
		return nil, &ValidationError{Field: "variantId", Reason: "is required"}
	}

	if _, gateErr := s.availability(ctx, sess, form.VariantID, form.ColorID); gateErr != nil {
		return nil, gateErr
	}

	form.CustomerID = sess.CustomerID
	order, err := s.backend.CreateOrder(ctx, form)
	if err != nil {
		return nil, err
	}
	sess.OrderID = order.ID
	sess.OrderNumber = order.Number
	sess.record(ResourceOrder, order.ID)
	sess.Step = StepPayment

	if err := s.store.Put(ctx, sess, s.cfg.SessionTTL); err != nil {
		return nil, errors.Wrap(err, "store session")
	}
	return sess, nil
}

// SubmitPayment runs step 3. The order id carried from step 2 is the only
// way a payment create can be issued. On success the session is completed
// and re-stored with the short receipt retention before it expires.
func (s *Service) SubmitPayment(ctx context.Context, id string, form dealer.PaymentForm) (*Session, error) {
	sess, err := s.activeAt(ctx, id, StepPayment)
	if err != nil {
		return nil, err
	}
	if !form.Amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	form.OrderID = sess.OrderID
	form.CustomerID = sess.CustomerID
	if form.Date.IsZero() {
		form.Date = time.Now().UTC()
	}

	payment, err := s.backend.CreatePayment(ctx, form)
	if err != nil {
		return nil, err
	}
	sess.PaymentID = payment.ID
	sess.record(ResourcePayment, payment.ID)
	sess.State = StateCompleted

	if err := s.store.Put(ctx, sess, s.cfg.CompletedTTL); err != nil {
		return nil, errors.Wrap(err, "store session")
	}

	s.publish(ctx, events.TypeCheckoutCompleted, sess.ID, events.CheckoutCompletedPayload{
		SessionID:   sess.ID,
		CustomerID:  string(sess.CustomerID),
		OrderID:     string(sess.OrderID),
		OrderNumber: sess.OrderNumber,
		PaymentID:   string(sess.PaymentID),
		Amount:      form.Amount.String(),
	})
	return sess, nil
}

// Back moves the cursor one step backward. It issues no compensating
// deletes: records created by the steps being walked away from stay on
// the backend, and a re-submitted step 1 will create a second customer.
func (s *Service) Back(ctx context.Context, id string) (*Session, error) {
	sess, err := s.active(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Step <= StepCustomer {
		return nil, &StepError{Current: sess.Step, Wanted: StepOrder}
	}
	sess.Step--
	if err := s.store.Put(ctx, sess, s.cfg.SessionTTL); err != nil {
		return nil, errors.Wrap(err, "store session")
	}
	return sess, nil
}

// Abandon closes the session and drains its compensation table: every
// backend record the session created is deleted, newest first, on a best
// effort basis. Failures are logged and counted, never retried.
func (s *Service) Abandon(ctx context.Context, id string) error {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess.State != StateActive {
		return ErrSessionClosed
	}

	lg := zctx.From(ctx)
	var released []events.ReleasedResource
	failures := 0
	for i := len(sess.Completed) - 1; i >= 0; i-- {
		step := sess.Completed[i]
		if err := s.compensate(ctx, step); err != nil {
			failures++
			lg.Error("Rollback delete failed",
				zap.String("session", sess.ID),
				zap.String("resource", string(step.Resource)),
				zap.String("id", string(step.ID)),
				zap.Error(err),
			)
			continue
		}
		released = append(released, events.ReleasedResource{
			Resource: string(step.Resource),
			ID:       string(step.ID),
		})
	}

	s.publish(ctx, events.TypeCheckoutAbandoned, sess.ID, events.CheckoutAbandonedPayload{
		SessionID:      sess.ID,
		LastStep:       int(sess.Step),
		Released:       released,
		RollbackErrors: failures,
	})

	if err := s.store.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}

func (s *Service) compensate(ctx context.Context, step CompletedStep) error {
	switch step.Resource {
	case ResourcePayment:
		return s.backend.DeletePayment(ctx, step.ID)
	case ResourceOrder:
		return s.backend.DeleteOrder(ctx, step.ID)
	case ResourceCustomer:
		return s.backend.DeleteCustomer(ctx, step.ID)
	}
	return errors.Errorf("unknown resource %q", step.Resource)
}

// publish sends a lifecycle event; a publish failure is logged, never
// surfaced to the wizard user.
func (s *Service) publish(ctx context.Context, eventType, sessionID string, payload any) {
	e, err := events.New(eventType, s.cfg.Producer, sessionID, payload)
	if err == nil {
		err = s.events.Publish(ctx, e)
	}
	if err != nil {
		zctx.From(ctx).Error("Event publish failed",
			zap.String("type", eventType),
			zap.String("session", sessionID),
			zap.Error(err),
		)
	}
}

// active fetches a session and ensures it is still open.
func (s *Service) active(ctx context.Context, id string) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.State != StateActive {
		return nil, ErrSessionClosed
	}
	return sess, nil
}

// activeAt additionally pins the expected step.
func (s *Service) activeAt(ctx context.Context, id string, step Step) (*Session, error) {
	sess, err := s.active(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Step != step {
		return nil, &StepError{Current: sess.Step, Wanted: step}
	}
	return sess, nil
}
