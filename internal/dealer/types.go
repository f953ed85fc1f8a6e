package dealer

import (
	"bytes"
	"time"

	"github.com/shopspring/decimal"
)

// ID is a backend-issued identifier. The dealership backend is not
// consistent about encoding identifiers as JSON strings or numbers, so ID
// accepts both and always renders as a string.
type ID string

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts "42", 42, and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	*id = ID(bytes.Trim(b, `"`))
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + string(id) + `"`), nil
}

// Customer is a dealership customer record. All entities in this package
// are owned and persisted by the backend; the gateway only holds transient
// copies.
type Customer struct {
	ID          ID     `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	CreditScore int    `json:"creditScore"`
}

// CustomerForm is the input for creating a customer.
type CustomerForm struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address,omitempty"`
}

// Order is a vehicle order. CustomerID is empty for anonymous orders.
type Order struct {
	ID         ID              `json:"id"`
	Number     string          `json:"orderNumber"`
	CustomerID ID              `json:"customerId"`
	VariantID  ID              `json:"variantId"`
	ColorID    ID              `json:"colorId"`
	Total      decimal.Decimal `json:"total"`
	Deposit    decimal.Decimal `json:"deposit"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// OrderForm is the input for creating an order.
type OrderForm struct {
	CustomerID ID              `json:"customerId,omitempty"`
	VariantID  ID              `json:"variantId"`
	ColorID    ID              `json:"colorId,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Deposit    decimal.Decimal `json:"deposit"`
}

// Payment is a payment against an order.
type Payment struct {
	ID         ID              `json:"id"`
	OrderID    ID              `json:"orderId"`
	CustomerID ID              `json:"customerId"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Date       time.Time       `json:"paymentDate"`
}

// PaymentForm is the input for creating a payment.
type PaymentForm struct {
	OrderID    ID              `json:"orderId"`
	CustomerID ID              `json:"customerId,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Date       time.Time       `json:"paymentDate"`
}

// Variant is a trim/configuration of a vehicle model.
type Variant struct {
	ID    ID              `json:"id"`
	Name  string          `json:"variantName"`
	Model string          `json:"modelName"`
	Price decimal.Decimal `json:"price"`
}

// Color is a catalog color.
type Color struct {
	ID   ID     `json:"id"`
	Name string `json:"colorName"`
}

// Inventory unit statuses as reported by the backend. Comparison is
// case-insensitive everywhere.
const (
	StatusAvailable = "available"
	StatusSold      = "sold"
	StatusReserved  = "reserved"
	StatusInTransit = "in_transit"
)

// InventoryUnit is a physical vehicle in stock, identified by VIN.
type InventoryUnit struct {
	VIN       string `json:"vin"`
	VariantID ID     `json:"variantId"`
	ColorID   ID     `json:"colorId"`
	Status    string `json:"status"`
}

// InventoryUnitForm is the input for registering an inventory unit.
type InventoryUnitForm struct {
	VIN       string `json:"vin"`
	VariantID ID     `json:"variantId"`
	ColorID   ID     `json:"colorId"`
	Status    string `json:"status"`
}

// InventoryFilter narrows an inventory listing. Zero-valued fields are
// omitted from the query.
type InventoryFilter struct {
	VariantID ID
	ColorID   ID
	Status    string
}
