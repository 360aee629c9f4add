package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"mercadito/libs"
	"mercadito/models"
	"mercadito/repositories"
)

// Wizard steps, strictly linear. No step may be skipped forward without
// passing the previous step's validation; going back is allowed from
// Address and Payment.
const (
	StepUserInfo   = "user_info"
	StepAddress    = "address"
	StepPayment    = "payment"
	StepConfirming = "confirming"
	StepDone       = "done"
)

var (
	// ErrCartEmpty guards the whole flow: checkout is inaccessible until
	// the persisted cart has at least one line.
	ErrCartEmpty = errors.New("cart is empty")

	// ErrNoActiveCheckout means the profile never started (or already
	// finished) the wizard.
	ErrNoActiveCheckout = errors.New("no active checkout")

	// ErrWrongStep means the submitted form does not belong to the
	// current step.
	ErrWrongStep = errors.New("wrong checkout step")
)

var (
	cardNumberRe = regexp.MustCompile(`^\d{12,19}$`)
	expiryRe     = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvRe        = regexp.MustCompile(`^\d{3,4}$`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

type checkoutFlow struct {
	step    string
	user    models.UserInfoForm
	address models.AddressForm
	payment models.PaymentForm
}

// CheckoutService drives the 3-step wizard. Flow state is held in memory
// per profile (a reload of the original wizard loses it too); only the
// cart, the user record and the confirmed order snapshot are durable.
type CheckoutService struct {
	cartStorage repositories.CartStorage
	carts       *CartManager
	profiles    repositories.ProfileStorage
	orders      repositories.OrderStorage
	analytics   libs.Analytics

	mu    sync.Mutex
	flows map[string]*checkoutFlow
}

func NewCheckoutService(
	cartStorage repositories.CartStorage,
	carts *CartManager,
	profiles repositories.ProfileStorage,
	orders repositories.OrderStorage,
	analytics libs.Analytics,
) *CheckoutService {
	return &CheckoutService{
		cartStorage: cartStorage,
		carts:       carts,
		profiles:    profiles,
		orders:      orders,
		analytics:   analytics,
		flows:       make(map[string]*checkoutFlow),
	}
}

// Start opens the wizard at the user-info step. The guard reads the
// durably persisted cart, not the in-memory copy, so a freshly hydrating
// view cannot slip through with a stale empty cart.
func (s *CheckoutService) Start(ctx context.Context, profile string) (string, error) {
	cart, err := s.persistedCart(ctx, profile)
	if err != nil {
		return "", err
	}
	if len(cart.LineItems) == 0 {
		return "", ErrCartEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	flow := &checkoutFlow{step: StepUserInfo}

	// prefill from the stored user record when one exists
	if user, err := s.profiles.Read(ctx, profile); err == nil && user != nil {
		flow.user = models.UserInfoForm{
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			DOB:       user.DOB,
		}
	}

	s.flows[profile] = flow
	return flow.step, nil
}

// Step reports the current step without advancing.
func (s *CheckoutService) Step(profile string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flow, ok := s.flows[profile]
	if !ok {
		return "", ErrNoActiveCheckout
	}
	return flow.step, nil
}

func (s *CheckoutService) SubmitUserInfo(ctx context.Context, profile string, form models.UserInfoForm) (string, error) {
	if err := validateUserInfo(form); err != nil {
		return "", err
	}

	s.mu.Lock()
	flow, ok := s.flows[profile]
	if !ok {
		s.mu.Unlock()
		return "", ErrNoActiveCheckout
	}
	if flow.step != StepUserInfo {
		step := flow.step
		s.mu.Unlock()
		return step, ErrWrongStep
	}
	flow.user = form
	flow.step = StepAddress
	step := flow.step
	s.mu.Unlock()

	// convenience record; failure to store it never blocks the wizard
	user := &models.UserProfile{
		Email:     strings.TrimSpace(form.Email),
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
		DOB:       strings.TrimSpace(form.DOB),
	}
	if err := s.profiles.Write(ctx, profile, user); err != nil {
		log.Printf("checkout %s: user record not persisted: %v", profile, err)
	}

	return step, nil
}

func (s *CheckoutService) SubmitAddress(profile string, form models.AddressForm) (string, error) {
	if err := validateAddress(form); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	flow, ok := s.flows[profile]
	if !ok {
		return "", ErrNoActiveCheckout
	}
	if flow.step != StepAddress {
		return flow.step, ErrWrongStep
	}
	flow.address = form
	flow.step = StepPayment
	return flow.step, nil
}

func (s *CheckoutService) SubmitPayment(profile string, form models.PaymentForm) (string, error) {
	if err := validatePayment(form); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	flow, ok := s.flows[profile]
	if !ok {
		return "", ErrNoActiveCheckout
	}
	if flow.step != StepPayment {
		return flow.step, ErrWrongStep
	}
	flow.payment = form
	flow.step = StepConfirming
	return flow.step, nil
}

// Back steps backward where allowed; at the first step it is a no-op.
func (s *CheckoutService) Back(profile string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flow, ok := s.flows[profile]
	if !ok {
		return "", ErrNoActiveCheckout
	}
	switch flow.step {
	case StepAddress:
		flow.step = StepUserInfo
	case StepPayment:
		flow.step = StepAddress
	}
	return flow.step, nil
}

// Confirm materializes the order: snapshot the persisted cart under a
// fresh order id, emit the Purchase event, clear the cart. The wizard is
// done afterwards.
func (s *CheckoutService) Confirm(ctx context.Context, profile string) (string, error) {
	s.mu.Lock()
	flow, ok := s.flows[profile]
	if !ok {
		s.mu.Unlock()
		return "", ErrNoActiveCheckout
	}
	if flow.step != StepConfirming {
		step := flow.step
		s.mu.Unlock()
		return step, ErrWrongStep
	}
	s.mu.Unlock()

	cart, err := s.persistedCart(ctx, profile)
	if err != nil {
		return "", err
	}
	if len(cart.LineItems) == 0 {
		return "", ErrCartEmpty
	}

	orderID := generateOrderID()
	order := models.Order{
		OrderID:   orderID,
		LineItems: cart.LineItems,
		UpdatedAt: time.Now().UnixMilli(),
	}
	if err := s.orders.Save(ctx, order); err != nil {
		// still hand the order id back; the thank-you view degrades
		log.Printf("checkout %s: order snapshot not persisted: %v", profile, err)
	}

	s.analytics.SendEvent("Purchase", purchasePayload(order))

	s.carts.Store(profile).Clear(ctx)

	s.mu.Lock()
	flow.step = StepDone
	delete(s.flows, profile)
	s.mu.Unlock()

	return orderID, nil
}

// GetOrder loads a transient order snapshot for the thank-you view.
func (s *CheckoutService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.orders.Get(ctx, orderID)
}

// Acknowledge deletes the snapshot after display and clears the cart once
// more as an idempotent safety net.
func (s *CheckoutService) Acknowledge(ctx context.Context, profile, orderID string) error {
	if err := s.orders.Delete(ctx, orderID); err != nil {
		log.Printf("checkout %s: order %s not deleted: %v", profile, orderID, err)
	}
	s.carts.Store(profile).Clear(ctx)
	return nil
}

// persistedCart prefers the durable copy and falls back to the in-memory
// store only when storage is unreachable.
func (s *CheckoutService) persistedCart(ctx context.Context, profile string) (models.Cart, error) {
	cart, err := s.cartStorage.Read(ctx, profile)
	if err != nil {
		log.Printf("checkout %s: persisted cart unreadable, using in-memory view: %v", profile, err)
		return s.carts.Store(profile).Cart(ctx), nil
	}
	return cart, nil
}

func validateUserInfo(form models.UserInfoForm) error {
	fields := map[string]string{}
	if len(strings.TrimSpace(form.Email)) <= 3 {
		fields["email"] = "email must be longer than 3 characters"
	}
	if strings.TrimSpace(form.FirstName) == "" {
		fields["firstName"] = "first name is required"
	}
	if strings.TrimSpace(form.LastName) == "" {
		fields["lastName"] = "last name is required"
	}
	if strings.TrimSpace(form.DOB) == "" {
		fields["dob"] = "date of birth is required"
	}
	if len(fields) > 0 {
		return &models.ValidationError{Fields: fields}
	}
	return nil
}

func validateAddress(form models.AddressForm) error {
	fields := map[string]string{}
	required := map[string]string{
		"street": form.Street,
		"number": form.Number,
		"city":   form.City,
		"state":  form.State,
		"zip":    form.Zip,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			fields[name] = name + " is required"
		}
	}
	if len(fields) > 0 {
		return &models.ValidationError{Fields: fields}
	}
	return nil
}

func validatePayment(form models.PaymentForm) error {
	fields := map[string]string{}
	if strings.TrimSpace(form.CardName) == "" {
		fields["cardName"] = "cardholder name is required"
	}
	if !cardNumberRe.MatchString(whitespaceRe.ReplaceAllString(form.CardNumber, "")) {
		fields["cardNumber"] = "card number must be 12 to 19 digits"
	}
	if !expiryRe.MatchString(form.Expiry) {
		fields["expiry"] = "expiry must be MM/YY"
	}
	if !cvvRe.MatchString(form.CVV) {
		fields["cvv"] = "cvv must be 3 or 4 digits"
	}
	if len(fields) > 0 {
		return &models.ValidationError{Fields: fields}
	}
	return nil
}

const orderIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// generateOrderID builds ids like "K3F9-4821-QZ0M": unique enough for a
// transient reference, not cryptographically unique.
func generateOrderID() string {
	seg := func() string {
		b := make([]byte, 4)
		for i := range b {
			b[i] = orderIDAlphabet[rand.Intn(len(orderIDAlphabet))]
		}
		return string(b)
	}
	millis := fmt.Sprintf("%d", time.Now().UnixMilli())
	return seg() + "-" + millis[len(millis)-4:] + "-" + seg()
}

func purchasePayload(order models.Order) map[string]interface{} {
	total := 0.0
	currency := ""
	lines := make([]map[string]interface{}, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		if li.Product.Price != nil {
			total += *li.Product.Price * float64(li.Quantity)
		}
		if currency == "" {
			currency = li.Product.Currency
		}
		lines = append(lines, map[string]interface{}{
			"catalogObjectType": "Product",
			"catalogObjectId":   li.Product.ID,
			"quantity":          li.Quantity,
			"price":             li.Product.Price,
			"currency":          li.Product.Currency,
		})
	}
	return map[string]interface{}{
		"order": map[string]interface{}{
			"id":         order.OrderID,
			"totalValue": total,
			"currency":   currency,
			"lineItems":  lines,
		},
	}
}
