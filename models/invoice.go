package models

import "github.com/shopspring/decimal"

// RawPayload is the untyped request body. Numbers arrive as json.Number.
type RawPayload map[string]any

// Invoice is the canonical record produced by the normalizer. It is built once
// per request and never mutated afterwards.
type Invoice struct {
	InvoiceNumber   string     `json:"invoiceNumber"`
	IssueDate       string     `json:"issueDate"`
	DueDate         string     `json:"dueDate"`
	Currency        string     `json:"currency"`
	Company         Company    `json:"company"`
	BillTo          BillTo     `json:"billTo"`
	LineItems       []LineItem `json:"lineItems"`
	Totals          Totals     `json:"totals"`
	Notes           string     `json:"notes"`
	Payment         Payment    `json:"payment"`
	ShowBankDetails bool       `json:"showBankDetails"`
}

type Company struct {
	Name          string `json:"name"`
	CompanyNumber string `json:"companyNumber"`
	VATNumber     string `json:"vatNumber"`
	Address       string `json:"address"`
	Domain        string `json:"domain"`
	Email         string `json:"email"`
	Website       string `json:"website"`
	LogoURL       string `json:"logoUrl"`
	BrandColor    string `json:"brandColor"`
}

// BillTo is passed through from the payload without defaults.
type BillTo struct {
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
}

type LineItem struct {
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Total returns qty x unit price for the line.
func (li LineItem) Total() decimal.Decimal {
	return li.Qty.Mul(li.UnitPrice)
}

type Totals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Discount   decimal.Decimal `json:"discount"`
	Paid       decimal.Decimal `json:"paid"`
	BalanceDue decimal.Decimal `json:"balanceDue"`
}

type Payment struct {
	Bank          string `json:"bank"`
	AccountName   string `json:"accountName"`
	SortCode      string `json:"sortCode"`
	AccountNumber string `json:"accountNumber"`
	IBAN          string `json:"iban"`
	SWIFT         string `json:"swift"`
	QRImage       string `json:"qrImage"`
}
