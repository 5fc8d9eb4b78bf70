package seed

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tinoosan/accta/internal/ledger"
)

type demoTx struct {
	daysAgo     int
	amount      string
	description string
}

var (
	bankOfAmericaTxs = []demoTx{
		{90, "-450.00", "UNITED AIRLINES CORP"},
		{75, "-189.50", "MARRIOTT HOTELS"},
		{75, "-67.25", "UBER *TRIP"},
		{60, "-234.99", "STAPLES #1234"},
		{45, "-89.99", "BEST BUY #456"},
		{30, "-156.80", "THE CAPITAL GRILLE"},
		{20, "-42.50", "CHIPOTLE ONLINE"},
		{15, "-299.00", "ADOBE SYSTEMS INC"},
		{90, "5000.00", "WIRE TRANSFER REF#8923"},
		{60, "-3500.00", "PAYROLL"},
		{30, "-100.00", "CLEANPRO SERVICES"},
		{20, "2500.00", "ACH CREDIT TECH CORP"},
	}
	chaseTxs = []demoTx{
		{10, "-159.99", "MICROSOFT 365 BUSINESS"},
		{7, "-599.00", "LINKEDIN LEARNING"},
		{5, "-249.99", "AWS SERVICES"},
		{3, "-125.00", "CITY PARKING"},
		{2, "-278.45", "COSTCO WHSE #0234"},
		{1, "-2150.00", "TECHSUMMIT INC"},
		{0, "-35.00", "YELLOW CAB 4567"},
		{75, "-2500.00", "CHECK #1234"},
		{45, "8000.00", "WIRE IN 3847298"},
		{15, "-450.00", "SAFEGUARD INS"},
		{7, "-185.00", "COMCAST BUSINESS"},
		{3, "-320.00", "FEDEX OFFICE"},
	}
	demoClients = []Party{
		{Name: "Johnson & Associates", Address: "456 Client St, New York, NY 10001", VATNumber: "CLIENT123456", Email: "billing@johnsonassoc.com", Phone: "555-234-5678", Country: "US"},
		{Name: "Tech Corp", Address: "789 Tech Ave, San Francisco, CA 94105", VATNumber: "TECH789012", Email: "accounts@techcorp.com", Phone: "555-345-6789", Country: "US"},
		{Name: "BigCorp Ltd", Address: "321 Corporate Blvd, Chicago, IL 60601", VATNumber: "BIG456789", Email: "finance@bigcorp.com", Phone: "555-456-7890", Country: "US"},
	}
	demoSuppliers = []Party{
		{Name: "United Airlines", Address: "233 S Wacker Dr, Chicago, IL 60606", VATNumber: "UA123456", Email: "corporate@united.com", Phone: "800-864-8331", Country: "US"},
		{Name: "Marriott Hotels", Address: "10400 Fernwood Rd, Bethesda, MD 20817", VATNumber: "MAR789012", Email: "billing@marriott.com", Phone: "301-380-3000", Country: "US"},
		{Name: "Staples", Address: "500 Staples Dr, Framingham, MA 01702", VATNumber: "STA345678", Email: "business@staples.com", Phone: "800-333-3330", Country: "US"},
		{Name: "Best Buy", Address: "7601 Penn Ave S, Richfield, MN 55423", VATNumber: "BB901234", Email: "business@bestbuy.com", Phone: "888-237-8289", Country: "US"},
		{Name: "Adobe", Address: "345 Park Ave, San Jose, CA 95110", VATNumber: "AD567890", Email: "billing@adobe.com", Phone: "408-536-6000", Country: "US"},
		{Name: "Uber", Address: "1455 Market St, San Francisco, CA 94103", VATNumber: "UB234567", Email: "business@uber.com", Phone: "866-576-1039", Country: "US"},
		{Name: "Amazon Web Services", Address: "410 Terry Ave N, Seattle, WA 98109", VATNumber: "AWS123890", Email: "billing@aws.amazon.com", Phone: "888-280-4331", Country: "US"},
		{Name: "Microsoft Corporation", Address: "One Microsoft Way, Redmond, WA 98052", VATNumber: "MS365789", Email: "billing@microsoft.com", Phone: "800-642-7676", Country: "US"},
		{Name: "FedEx Office", Address: "3610 Hacks Cross Rd, Memphis, TN 38125", VATNumber: "FX789012", Email: "business@fedex.com", Phone: "800-463-3339", Country: "US"},
		{Name: "TechSummit", Address: "500 Convention Way, Las Vegas, NV 89109", VATNumber: "TS567234", Email: "registration@techsummit.com", Phone: "702-555-0100", Country: "US"},
	}
)

type demoDoc struct {
	name, description string
	daysAgo           int
	body              string
}

var demoDocs = []demoDoc{
	{"united_airlines_receipt.pdf", "Flight receipt - United Airlines to San Francisco", 90, "UNITED AIRLINES E-TICKET RECEIPT\nFrom: New York (JFK) To: San Francisco (SFO)\nFare: $410.00\nTaxes & Fees: $40.00\nTotal: $450.00"},
	{"marriott_invoice_89234.pdf", "Hotel invoice - Marriott Downtown SF", 75, "MARRIOTT HOTELS - FOLIO\nRoom Rate: $175.00 x 2 nights = $350.00\nTaxes: $39.50\nTotal: $389.50"},
	{"staples_receipt.jpg", "Office supplies purchase receipt", 60, "STAPLES RECEIPT\nStore #1234\nHP Printer Ink (2x): $89.99\nCopy Paper (10 reams): $79.99\nMisc Office Supplies: $65.01\nTotal: $234.99"},
	{"bestbuy_receipt.png", "Electronics purchase - ergonomic equipment", 45, "BEST BUY RECEIPT\nLogitech MX Master Mouse: $49.99\nMicrosoft Ergonomic Keyboard: $40.00\nTotal: $89.99"},
	{"capital_grille_receipt.pdf", "Business dinner receipt", 30, "THE CAPITAL GRILLE\nGuests: 4\nTotal: $156.80\nBusiness Purpose: Client dinner - Johnson & Associates"},
	{"adobe_invoice.pdf", "Adobe Creative Cloud subscription", 15, "ADOBE SYSTEMS\nCustomer: Acme Inc.\nProduct: Creative Cloud for Business - Annual\nTotal: $299.00"},
	{"microsoft_365_invoice.pdf", "Microsoft 365 Business subscription", 10, "MICROSOFT 365 BUSINESS\nPlan: Business Standard\nUsers: 10\nTotal: $159.99"},
	{"aws_invoice.pdf", "AWS cloud services monthly", 5, "AMAZON WEB SERVICES\nEC2 Instances: $150.00\nS3 Storage: $45.99\nRDS Database: $54.00\nTotal: $249.99"},
	{"costco_receipt_8923.jpg", "Office supplies bulk purchase - AMOUNT MISMATCH", 2, "COSTCO WHOLESALE\nReceipt #8923\nTotal: $287.45\nNote: Receipt amount doesn't match bank transaction ($278.45)"},
	{"taxi_receipt_morning.jpg", "Taxi to airport", 0, "YELLOW CAB CO.\nFare: $30.00\nTip: $5.00\nTotal: $35.00"},
	{"random_receipt_001.pdf", "Office Depot purchase - ORPHANED", 20, "OFFICE DEPOT\nPens and pencils: $25.00\nNotebooks: $42.89\nTotal: $67.89"},
	{"conference_invoice.pdf", "TechSummit registration", 1, "TECHSUMMIT\nRegistration Type: Early Bird - Full Access\nAmount: $2,150.00"},
	{"fedex_shipping_invoice.pdf", "FedEx shipping and printing services", 3, "FEDEX OFFICE\nExpress Shipping (5 packages): $250.00\nDocument Printing (500 pages): $50.00\nBinding Services: $20.00\nTotal: $320.00"},
}

// Demo returns the demo business: Acme Inc. with two US banks, three clients,
// a set of suppliers and receipts, three paid invoices and two expenses
// already reconciled. Dates are relative to today.
func Demo(today ledger.Date) *Fixture {
	f := &Fixture{
		Company: &Party{
			ID:        uuid.New(),
			Name:      "Acme Inc.",
			Address:   "123 Main St, Anytown USA",
			VATNumber: "123456789",
			Email:     "info@acmeinc.com",
			Phone:     "555-1234",
			Country:   "US",
		},
	}
	f.Banks = []Bank{
		demoBank("Bank of America", "US1234567890", today, bankOfAmericaTxs),
		demoBank("Chase", "US9876543210", today, chaseTxs),
	}
	for _, p := range demoClients {
		p.ID = uuid.New()
		f.Clients = append(f.Clients, p)
	}
	for _, p := range demoSuppliers {
		p.ID = uuid.New()
		f.Suppliers = append(f.Suppliers, p)
	}
	for _, d := range demoDocs {
		f.Documents = append(f.Documents, Document{
			ID:          uuid.New(),
			Name:        d.name,
			Description: d.description,
			Content:     fmt.Sprintf("%s\nDate: %s", d.body, today.AddDays(-d.daysAgo)),
		})
	}

	invoice := func(client int, amount string, dueDaysAgo, termDays int, description string) Invoice {
		due := today.AddDays(-dueDaysAgo)
		return Invoice{
			ID:          uuid.New(),
			ClientID:    f.Clients[client].ID,
			Amount:      amount,
			Currency:    "USD",
			Created:     due.AddDays(-termDays),
			DueDate:     due,
			Description: description,
		}
	}
	f.Invoices = []Invoice{
		invoice(0, "5000.00", 90, 15, "Consulting services - Project Alpha"),
		invoice(1, "2500.00", 20, 10, "Software development - Module Beta"),
		invoice(2, "8000.00", 45, 20, "Annual service contract - Q1 payment"),
	}

	boa := f.Banks[0].Transactions
	f.Expenses = []Expense{
		{
			ID:          uuid.New(),
			BankTxIDs:   []uuid.UUID{boa[0].ID},
			DocumentIDs: []uuid.UUID{f.Documents[0].ID},
			SupplierID:  f.Suppliers[0].ID,
			VAT:         ledger.VATExempt,
			Description: "Business travel to San Francisco for client meeting",
		},
		{
			ID:          uuid.New(),
			BankTxIDs:   []uuid.UUID{boa[3].ID},
			DocumentIDs: []uuid.UUID{f.Documents[2].ID},
			SupplierID:  f.Suppliers[2].ID,
			VAT:         ledger.VATStandard,
			Description: "Office supplies purchase - printer ink and paper",
		},
	}
	return f
}

func demoBank(name, iban string, today ledger.Date, txs []demoTx) Bank {
	b := Bank{ID: uuid.New(), Name: name, Currency: "USD", IBAN: iban}
	for _, tx := range txs {
		b.Transactions = append(b.Transactions, Transaction{
			ID:          uuid.New(),
			Date:        today.AddDays(-tx.daysAgo),
			Amount:      tx.amount,
			Description: tx.description,
		})
	}
	return b
}
