package ledger

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/govalues/money"
)

// ParseAmount builds a money amount from its decimal string and ISO-4217 code.
func ParseAmount(value, currency string) (money.Amount, error) {
	amt, err := money.ParseAmount(strings.ToUpper(strings.TrimSpace(currency)), strings.TrimSpace(value))
	if err != nil {
		return money.Amount{}, fmt.Errorf("invalid amount %q %q: %w", value, currency, err)
	}
	return amt, nil
}

// FormatAmount splits a money amount into its decimal string and currency code.
func FormatAmount(a money.Amount) (value, currency string) {
	return a.Decimal().String(), a.Curr().Code()
}

type bankTransactionJSON struct {
	ID          uuid.UUID `json:"id"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	Date        Date      `json:"date"`
	Description string    `json:"description"`
}

func (t BankTransaction) MarshalJSON() ([]byte, error) {
	value, curr := FormatAmount(t.Amount)
	return json.Marshal(bankTransactionJSON{
		ID:          t.ID,
		Amount:      value,
		Currency:    curr,
		Date:        t.Date,
		Description: t.Description,
	})
}

func (t *BankTransaction) UnmarshalJSON(b []byte) error {
	var raw bankTransactionJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	amt, err := ParseAmount(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*t = BankTransaction{ID: raw.ID, Amount: amt, Date: raw.Date, Description: raw.Description}
	return nil
}

type invoiceJSON struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	Created     Date      `json:"created"`
	DueDate     Date      `json:"due_date"`
	Description string    `json:"description"`
}

func (i Invoice) MarshalJSON() ([]byte, error) {
	value, curr := FormatAmount(i.Amount)
	return json.Marshal(invoiceJSON{
		ID:          i.ID,
		ClientID:    i.ClientID,
		Amount:      value,
		Currency:    curr,
		Created:     i.Created,
		DueDate:     i.DueDate,
		Description: i.Description,
	})
}

func (i *Invoice) UnmarshalJSON(b []byte) error {
	var raw invoiceJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	amt, err := ParseAmount(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*i = Invoice{
		ID:          raw.ID,
		ClientID:    raw.ClientID,
		Amount:      amt,
		Created:     raw.Created,
		DueDate:     raw.DueDate,
		Description: raw.Description,
	}
	return nil
}
