// Package seed populates a base store before any session starts, from the
// built-in demo data, a YAML fixture, or a snapshot read from Postgres.
package seed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tinoosan/accta/internal/action"
	"github.com/tinoosan/accta/internal/errs"
	"github.com/tinoosan/accta/internal/ledger"
	"github.com/tinoosan/accta/internal/state"
)

// Fixture is a complete committed snapshot: the company record plus every entity kind.
type Fixture struct {
	Company   *Party     `yaml:"company,omitempty"`
	Banks     []Bank     `yaml:"banks,omitempty"`
	Clients   []Party    `yaml:"clients,omitempty"`
	Suppliers []Party    `yaml:"suppliers,omitempty"`
	Documents []Document `yaml:"documents,omitempty"`
	Invoices  []Invoice  `yaml:"invoices,omitempty"`
	Expenses  []Expense  `yaml:"expenses,omitempty"`
}

// Party is the company, a client or a supplier.
type Party struct {
	ID        uuid.UUID `yaml:"id"`
	Name      string    `yaml:"name"`
	Address   string    `yaml:"address,omitempty"`
	VATNumber string    `yaml:"vat_number,omitempty"`
	Email     string    `yaml:"email,omitempty"`
	Phone     string    `yaml:"phone,omitempty"`
	Country   string    `yaml:"country"`
}

type Bank struct {
	ID           uuid.UUID     `yaml:"id"`
	Name         string        `yaml:"name"`
	Currency     string        `yaml:"currency"`
	IBAN         string        `yaml:"iban,omitempty"`
	Transactions []Transaction `yaml:"transactions,omitempty"`
}

// Transaction amounts are decimal strings in the bank's currency; outflows are negative.
type Transaction struct {
	ID          uuid.UUID   `yaml:"id"`
	Date        ledger.Date `yaml:"date"`
	Amount      string      `yaml:"amount"`
	Description string      `yaml:"description,omitempty"`
}

type Document struct {
	ID          uuid.UUID `yaml:"id"`
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Content     string    `yaml:"content,omitempty"`
}

type Invoice struct {
	ID          uuid.UUID   `yaml:"id"`
	ClientID    uuid.UUID   `yaml:"client_id"`
	Amount      string      `yaml:"amount"`
	Currency    string      `yaml:"currency"`
	Created     ledger.Date `yaml:"created"`
	DueDate     ledger.Date `yaml:"due_date"`
	Description string      `yaml:"description,omitempty"`
}

type Expense struct {
	ID          uuid.UUID      `yaml:"id"`
	BankTxIDs   []uuid.UUID    `yaml:"bank_txs"`
	DocumentIDs []uuid.UUID    `yaml:"docs_ids"`
	SupplierID  uuid.UUID      `yaml:"supplier_id"`
	VAT         ledger.VATType `yaml:"vat_type"`
	Description string         `yaml:"description,omitempty"`
}

// Target is the store a fixture is applied to.
type Target interface {
	state.State
	SetCompany(c ledger.Company)
	SetBank(b ledger.Bank, txs []ledger.BankTransaction)
	StoreDocument(d ledger.Document)
}

// ReadYAML decodes a fixture. Unknown keys are rejected.
func ReadYAML(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixture
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &f, nil
}

// LoadYAML reads a fixture file from disk.
func LoadYAML(path string) (*Fixture, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	defer fh.Close()
	return ReadYAML(fh)
}

// Save writes f to path as YAML.
func Save(path string, f *Fixture) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	return nil
}

// Apply validates f and loads it into st, in dependency order. Missing ids
// are generated. Invoices and expenses are checked against what has been
// loaded before them, with the same rules actions follow.
func Apply(st Target, f *Fixture, valid action.CountryValidator) error {
	if valid == nil {
		valid = action.ISOCountry
	}
	if f.Company != nil {
		c, err := party(*f.Company, valid)
		if err != nil {
			return fmt.Errorf("seed company: %w", err)
		}
		st.SetCompany(ledger.Company{ID: orNew(f.Company.ID), Contact: c})
	}
	for i, b := range f.Banks {
		bank, txs, err := bankOf(b)
		if err != nil {
			return fmt.Errorf("seed bank %d (%s): %w", i, b.Name, err)
		}
		st.SetBank(bank, txs)
	}
	for i, p := range f.Clients {
		c, err := party(p, valid)
		if err != nil {
			return fmt.Errorf("seed client %d: %w", i, err)
		}
		st.StoreClient(ledger.Client{ID: orNew(p.ID), Contact: c})
	}
	for i, p := range f.Suppliers {
		c, err := party(p, valid)
		if err != nil {
			return fmt.Errorf("seed supplier %d: %w", i, err)
		}
		st.StoreSupplier(ledger.Supplier{ID: orNew(p.ID), Contact: c})
	}
	for _, d := range f.Documents {
		st.StoreDocument(ledger.Document{ID: orNew(d.ID), Name: d.Name, Description: d.Description, Content: d.Content})
	}
	for i, inv := range f.Invoices {
		amount, err := ledger.ParseAmount(inv.Amount, inv.Currency)
		if err != nil {
			return fmt.Errorf("seed invoice %d: %w", i, errs.Invalid("amount", inv.Amount, err.Error()))
		}
		if err := state.CheckClientID(st, inv.ClientID); err != nil {
			return fmt.Errorf("seed invoice %d: %w", i, err)
		}
		st.StoreInvoice(ledger.Invoice{
			ID:          orNew(inv.ID),
			ClientID:    inv.ClientID,
			Amount:      amount,
			Created:     inv.Created,
			DueDate:     inv.DueDate,
			Description: inv.Description,
		})
	}
	for i, e := range f.Expenses {
		exp, err := action.Validator{Country: valid}.Expense(e.BankTxIDs, e.DocumentIDs, e.SupplierID, e.VAT, e.Description)
		if err != nil {
			return fmt.Errorf("seed expense %d: %w", i, err)
		}
		exp.ExpenseID = orNew(e.ID)
		if _, err := action.Apply(exp, st); err != nil {
			return fmt.Errorf("seed expense %d: %w", i, err)
		}
	}
	return nil
}

// FromState captures everything r holds as a fixture.
func FromState(r state.Reader) *Fixture {
	f := &Fixture{}
	company := r.Company()
	f.Company = partyOf(company.ID, company.Contact)
	for _, b := range r.ListBanks() {
		fb := Bank{ID: b.ID, Name: b.Name, Currency: b.Currency, IBAN: b.IBAN}
		for _, tx := range r.ListTransactions(b.ID) {
			value, _ := ledger.FormatAmount(tx.Amount)
			fb.Transactions = append(fb.Transactions, Transaction{ID: tx.ID, Date: tx.Date, Amount: value, Description: tx.Description})
		}
		f.Banks = append(f.Banks, fb)
	}
	for _, c := range r.ListClients() {
		f.Clients = append(f.Clients, *partyOf(c.ID, c.Contact))
	}
	for _, s := range r.ListSuppliers() {
		f.Suppliers = append(f.Suppliers, *partyOf(s.ID, s.Contact))
	}
	for _, d := range r.ListDocuments() {
		f.Documents = append(f.Documents, Document{ID: d.ID, Name: d.Name, Description: d.Description, Content: d.Content})
	}
	for _, inv := range r.ListInvoices() {
		value, curr := ledger.FormatAmount(inv.Amount)
		f.Invoices = append(f.Invoices, Invoice{
			ID:          inv.ID,
			ClientID:    inv.ClientID,
			Amount:      value,
			Currency:    curr,
			Created:     inv.Created,
			DueDate:     inv.DueDate,
			Description: inv.Description,
		})
	}
	for _, e := range r.ListExpenses() {
		f.Expenses = append(f.Expenses, Expense{
			ID:          e.ID,
			BankTxIDs:   e.BankTxIDs,
			DocumentIDs: e.DocumentIDs,
			SupplierID:  e.SupplierID,
			VAT:         e.VAT,
			Description: e.Description,
		})
	}
	return f
}

func party(p Party, valid action.CountryValidator) (ledger.Contact, error) {
	country := strings.ToUpper(strings.TrimSpace(p.Country))
	if !valid(country) {
		return ledger.Contact{}, errs.Invalid("country", p.Country, "not a valid country code")
	}
	return ledger.Contact{
		Name:      p.Name,
		Address:   p.Address,
		VATNumber: p.VATNumber,
		Email:     p.Email,
		Phone:     p.Phone,
		Country:   country,
	}, nil
}

func partyOf(id uuid.UUID, c ledger.Contact) *Party {
	return &Party{ID: id, Name: c.Name, Address: c.Address, VATNumber: c.VATNumber, Email: c.Email, Phone: c.Phone, Country: c.Country}
}

func bankOf(b Bank) (ledger.Bank, []ledger.BankTransaction, error) {
	bank := ledger.Bank{ID: orNew(b.ID), Name: b.Name, Currency: strings.ToUpper(b.Currency), IBAN: b.IBAN}
	txs := make([]ledger.BankTransaction, 0, len(b.Transactions))
	for i, tx := range b.Transactions {
		amount, err := ledger.ParseAmount(tx.Amount, bank.Currency)
		if err != nil {
			return ledger.Bank{}, nil, fmt.Errorf("transaction %d: %w", i, errs.Invalid("amount", tx.Amount, err.Error()))
		}
		txs = append(txs, ledger.BankTransaction{ID: orNew(tx.ID), Amount: amount, Date: tx.Date, Description: tx.Description})
	}
	return bank, txs, nil
}

func orNew(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
