package action

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/tinoosan/accta/internal/errs"
	"github.com/tinoosan/accta/internal/ledger"
)

// Envelope is the wire form of an action: {"kind": "invoice", "args": {...}}.
type Envelope struct {
	Kind Kind            `json:"kind"`
	Args json.RawMessage `json:"args"`
}

type clientArgs struct {
	ClientID uuid.UUID `json:"client_id"`
	ledger.Contact
}

type supplierArgs struct {
	SupplierID uuid.UUID `json:"supplier_id"`
	ledger.Contact
}

type invoiceArgs struct {
	InvoiceID   uuid.UUID   `json:"invoice_id"`
	ClientID    uuid.UUID   `json:"client_id"`
	Amount      json.Number `json:"amount"`
	Currency    string      `json:"currency"`
	DueDate     ledger.Date `json:"due_date"`
	Description string      `json:"description"`
	Created     ledger.Date `json:"created"`
}

type expenseArgs struct {
	ExpenseID   uuid.UUID      `json:"expense_id"`
	BankTxIDs   []uuid.UUID    `json:"bank_txs"`
	DocumentIDs []uuid.UUID    `json:"docs_ids"`
	SupplierID  uuid.UUID      `json:"supplier_id"`
	VAT         ledger.VATType `json:"vat_type"`
	Description string         `json:"description"`
}

// Encode returns the envelope for a. Pinned ids and dates are included so a
// decoded envelope replays to the same entities.
func Encode(a Action) (Envelope, error) {
	var args any
	switch a := a.(type) {
	case UpdateClient:
		args = clientArgs{ClientID: a.ClientID, Contact: a.Contact}
	case UpdateSupplier:
		args = supplierArgs{SupplierID: a.SupplierID, Contact: a.Contact}
	case NewInvoice:
		value, curr := ledger.FormatAmount(a.Amount)
		args = invoiceArgs{
			InvoiceID:   a.InvoiceID,
			ClientID:    a.ClientID,
			Amount:      json.Number(value),
			Currency:    curr,
			DueDate:     a.DueDate,
			Description: a.Description,
			Created:     a.Created,
		}
	case Expense:
		args = expenseArgs{
			ExpenseID:   a.ExpenseID,
			BankTxIDs:   cloneIDs(a.BankTxIDs),
			DocumentIDs: cloneIDs(a.DocumentIDs),
			SupplierID:  a.SupplierID,
			VAT:         a.VAT,
			Description: a.Description,
		}
	default:
		return Envelope{}, errs.Invalid("kind", string(kindOf(a)), "unknown action kind")
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Kind: a.Kind(), Args: raw}, nil
}

// Decode rebuilds the action in env, running the same validation as the
// Validator constructors. Unknown fields in args are rejected.
func (v Validator) Decode(env Envelope) (Action, error) {
	switch env.Kind {
	case KindClient:
		var args clientArgs
		if err := decodeArgs(env.Args, &args); err != nil {
			return nil, err
		}
		a, err := v.UpdateClient(args.ClientID, args.Contact)
		if err != nil {
			return nil, err
		}
		return a, nil
	case KindSupplier:
		var args supplierArgs
		if err := decodeArgs(env.Args, &args); err != nil {
			return nil, err
		}
		a, err := v.UpdateSupplier(args.SupplierID, args.Contact)
		if err != nil {
			return nil, err
		}
		return a, nil
	case KindInvoice:
		var args invoiceArgs
		if err := decodeArgs(env.Args, &args); err != nil {
			return nil, err
		}
		amount, err := ledger.ParseAmount(args.Amount.String(), args.Currency)
		if err != nil {
			return nil, errs.Invalid("amount", args.Amount.String()+" "+args.Currency, err.Error())
		}
		inv, err := v.NewInvoice(args.ClientID, amount, args.DueDate, args.Description)
		if err != nil {
			return nil, err
		}
		inv.InvoiceID = args.InvoiceID
		inv.Created = args.Created
		return inv, nil
	case KindExpense:
		var args expenseArgs
		if err := decodeArgs(env.Args, &args); err != nil {
			return nil, err
		}
		exp, err := v.Expense(args.BankTxIDs, args.DocumentIDs, args.SupplierID, args.VAT, args.Description)
		if err != nil {
			return nil, err
		}
		exp.ExpenseID = args.ExpenseID
		return exp, nil
	default:
		return nil, errs.Invalid("kind", string(env.Kind), "unknown action kind")
	}
}

// Decode is Validator{}.Decode.
func Decode(env Envelope) (Action, error) { return Validator{}.Decode(env) }

func decodeArgs(raw json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errs.Invalid("args", "", "required")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.Invalid("args", "", err.Error())
	}
	return nil
}
