package ledger

import (
	"github.com/google/uuid"
	"github.com/govalues/money"
)

// VATType classifies an expense for VAT reporting.
type VATType string

const (
	// VATStandard marks an expense that carries recoverable VAT.
	VATStandard VATType = "VAT"
	// VATExempt marks an expense without VAT.
	VATExempt VATType = "NO_VAT"
)

// Valid reports whether v is one of the known classifications.
func (v VATType) Valid() bool {
	return v == VATStandard || v == VATExempt
}

// Entity is implemented by every identifier-keyed business object.
type Entity interface {
	EntityID() uuid.UUID
}

// Contact holds the postal and fiscal details shared by the company,
// its clients and its suppliers.
type Contact struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	VATNumber string `json:"vat_number"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	// Country is an ISO-3166 country code.
	Country string `json:"country"`
}

// Company describes the business that owns the ledger. A store holds at most one.
type Company struct {
	ID uuid.UUID `json:"id"`
	Contact
}

// Bank is a bank account the company holds. Banks are seeded, never created by actions.
type Bank struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Currency string    `json:"currency"`
	IBAN     string    `json:"iban"`
}

// BankTransaction is a single booked movement on a bank account.
// Amount is signed: negative for outflows, in the owning bank's currency.
type BankTransaction struct {
	ID          uuid.UUID
	Amount      money.Amount
	Date        Date
	Description string
}

// Client is a customer the company invoices.
type Client struct {
	ID uuid.UUID `json:"id"`
	Contact
}

// Supplier is a vendor the company buys from.
type Supplier struct {
	ID uuid.UUID `json:"id"`
	Contact
}

// Document is an ingested file (receipt, contract, statement) with its OCR'd text.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
}

// Invoice is an amount billed to a client.
type Invoice struct {
	ID          uuid.UUID
	ClientID    uuid.UUID
	Amount      money.Amount
	Created     Date
	DueDate     Date
	Description string
}

// Currency returns the ISO-4217 code of the invoiced amount.
func (i Invoice) Currency() string { return i.Amount.Curr().Code() }

// Expense reconciles bank transactions with supporting documents and a supplier.
type Expense struct {
	ID          uuid.UUID   `json:"id"`
	BankTxIDs   []uuid.UUID `json:"bank_txs"`
	DocumentIDs []uuid.UUID `json:"docs_ids"`
	SupplierID  uuid.UUID   `json:"supplier_id"`
	Description string      `json:"description"`
	VAT         VATType     `json:"vat_type"`
}

// Clone returns a copy of e that shares no slices with it.
func (e Expense) Clone() Expense {
	out := e
	out.BankTxIDs = cloneIDs(e.BankTxIDs)
	out.DocumentIDs = cloneIDs(e.DocumentIDs)
	return out
}

func cloneIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out
}

func (c Company) EntityID() uuid.UUID         { return c.ID }
func (b Bank) EntityID() uuid.UUID            { return b.ID }
func (t BankTransaction) EntityID() uuid.UUID { return t.ID }
func (c Client) EntityID() uuid.UUID          { return c.ID }
func (s Supplier) EntityID() uuid.UUID        { return s.ID }
func (d Document) EntityID() uuid.UUID        { return d.ID }
func (i Invoice) EntityID() uuid.UUID         { return i.ID }
func (e Expense) EntityID() uuid.UUID         { return e.ID }
