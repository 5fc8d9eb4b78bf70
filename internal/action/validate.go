package action

import (
	"strings"

	"github.com/google/uuid"
	"github.com/govalues/money"
	"golang.org/x/text/language"

	"github.com/tinoosan/accta/internal/errs"
	"github.com/tinoosan/accta/internal/ledger"
)

// CountryValidator reports whether code is an acceptable country code.
type CountryValidator func(code string) bool

// ISOCountry accepts ISO-3166 alpha-2 codes of real countries, in any case.
// Private-use codes and macro regions are rejected.
func ISOCountry(code string) bool {
	if len(code) != 2 {
		return false
	}
	r, err := language.ParseRegion(code)
	if err != nil {
		return false
	}
	return r.IsCountry()
}

// Validator builds actions, rejecting malformed input before it reaches a ledger.
// The zero value validates countries with ISOCountry.
type Validator struct {
	Country CountryValidator
}

func (v Validator) contact(c ledger.Contact) (ledger.Contact, error) {
	valid := v.Country
	if valid == nil {
		valid = ISOCountry
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, errs.Invalid("name", "", "must not be empty")
	}
	code := strings.ToUpper(strings.TrimSpace(c.Country))
	if !valid(code) {
		return c, errs.Invalid("country", c.Country, "not a valid country code")
	}
	c.Country = code
	return c, nil
}

// UpdateClient validates c and returns the action. A nil id creates a new client.
func (v Validator) UpdateClient(id uuid.UUID, c ledger.Contact) (UpdateClient, error) {
	c, err := v.contact(c)
	if err != nil {
		return UpdateClient{}, err
	}
	return UpdateClient{ClientID: id, Contact: c}, nil
}

// UpdateSupplier validates c and returns the action. A nil id creates a new supplier.
func (v Validator) UpdateSupplier(id uuid.UUID, c ledger.Contact) (UpdateSupplier, error) {
	c, err := v.contact(c)
	if err != nil {
		return UpdateSupplier{}, err
	}
	return UpdateSupplier{SupplierID: id, Contact: c}, nil
}

// NewInvoice requires a client, a positive amount and a due date.
func (v Validator) NewInvoice(clientID uuid.UUID, amount money.Amount, due ledger.Date, description string) (NewInvoice, error) {
	if clientID == uuid.Nil {
		return NewInvoice{}, errs.Invalid("client_id", "", "required")
	}
	if !amount.IsPos() {
		return NewInvoice{}, errs.Invalid("amount", amount.Decimal().String(), "must be > 0")
	}
	if due.IsZero() {
		return NewInvoice{}, errs.Invalid("due_date", "", "required")
	}
	return NewInvoice{ClientID: clientID, Amount: amount, DueDate: due, Description: description}, nil
}

// Expense requires a supplier and a known VAT classification, and rejects an
// id listed twice in either list.
func (v Validator) Expense(bankTxs, docs []uuid.UUID, supplierID uuid.UUID, vat ledger.VATType, description string) (Expense, error) {
	if supplierID == uuid.Nil {
		return Expense{}, errs.Invalid("supplier_id", "", "required")
	}
	if !vat.Valid() {
		return Expense{}, errs.Invalid("vat_type", string(vat), "must be VAT or NO_VAT")
	}
	if id, dup := firstDuplicate(bankTxs); dup {
		return Expense{}, errs.Invalid("bank_txs", id.String(), "listed more than once")
	}
	if id, dup := firstDuplicate(docs); dup {
		return Expense{}, errs.Invalid("docs_ids", id.String(), "listed more than once")
	}
	return Expense{
		BankTxIDs:   cloneIDs(bankTxs),
		DocumentIDs: cloneIDs(docs),
		SupplierID:  supplierID,
		VAT:         vat,
		Description: description,
	}, nil
}

func firstDuplicate(ids []uuid.UUID) (uuid.UUID, bool) {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return uuid.Nil, false
}
