package models

// Order is the snapshot taken from the cart at checkout confirmation.
// It lives in transient storage until the thank-you view acknowledges it.
type Order struct {
	OrderID   string     `json:"orderId"`
	LineItems []LineItem `json:"lineItems"`
	UpdatedAt int64      `json:"updatedAt"`
}

type UserInfoForm struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	DOB       string `json:"dob"`
}

type AddressForm struct {
	Street string `json:"street"`
	Number string `json:"number"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
	Notes  string `json:"notes"`
}

type PaymentForm struct {
	CardName   string `json:"cardName"`
	CardNumber string `json:"cardNumber"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}
