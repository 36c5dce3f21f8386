package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Alias tables list every key a canonical field may arrive under, in priority
// order. The first key present with a non-null value wins.
var (
	invoiceNumberKeys   = []string{"invoiceNumber", "invoice_number"}
	issueDateKeys       = []string{"issueDate", "issue_date"}
	dueDateKeys         = []string{"dueDate", "due_date"}
	currencyKeys        = []string{"currency"}
	itemsKeys           = []string{"items", "lineItems", "line_items"}
	notesKeys           = []string{"notes"}
	companyKeys         = []string{"company"}
	billToKeys          = []string{"billTo", "bill_to"}
	paymentKeys         = []string{"payment"}
	totalsKeys          = []string{"totals"}
	showBankDetailsKeys = []string{"showBankDetails", "show_bank_details"}

	descriptionKeys = []string{"description"}
	qtyKeys         = []string{"qty", "quantity"}
	unitPriceKeys   = []string{"unitPrice", "unit_price"}

	taxKeys        = []string{"tax"}
	discountKeys   = []string{"discount"}
	paidKeys       = []string{"paid"}
	balanceDueKeys = []string{"balanceDue", "balance_due"}

	nameKeys          = []string{"name"}
	companyNameKeys   = []string{"company"}
	addressKeys       = []string{"address"}
	emailKeys         = []string{"email"}
	companyNumberKeys = []string{"companyNumber", "company_number"}
	vatNumberKeys     = []string{"vatNumber", "vat_number"}
	domainKeys        = []string{"domain"}
	websiteKeys       = []string{"website"}
	logoURLKeys       = []string{"logoUrl", "logo_url"}
	brandColorKeys    = []string{"brandColor", "brand_color"}

	bankKeys          = []string{"bank"}
	accountNameKeys   = []string{"accountName", "account_name"}
	sortCodeKeys      = []string{"sortCode", "sort_code"}
	accountNumberKeys = []string{"accountNumber", "account_number"}
	ibanKeys          = []string{"iban"}
	swiftKeys         = []string{"swift"}
	qrImageKeys       = []string{"qrImage", "qr_image"}
)

// lookup returns the first non-null value stored under any of keys.
func lookup(obj map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// object returns the nested object stored under keys, or nil.
func object(obj map[string]any, keys []string) map[string]any {
	v, ok := lookup(obj, keys)
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}

// text resolves a display string. Numbers are rendered as written; anything
// else that is not a string yields "".
func text(obj map[string]any, keys []string) string {
	v, ok := lookup(obj, keys)
	if !ok {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

// number resolves a numeric field. ok is false when the field is absent or
// cannot be read as a number.
func number(obj map[string]any, keys []string) (decimal.Decimal, bool) {
	v, present := lookup(obj, keys)
	if !present {
		return decimal.Zero, false
	}
	return toDecimal(v)
}

// numberOrZero is number with the non-numeric case folded into zero.
func numberOrZero(obj map[string]any, keys []string) decimal.Decimal {
	d, _ := number(obj, keys)
	return d
}

// Numbers outside these bounds are treated as non-numeric. Arithmetic on
// decimals rescales operands to a common exponent, so an unbounded exponent
// would cost memory proportional to its magnitude.
const (
	maxExponent = 64
	maxDigits   = 64
)

func toDecimal(v any) (decimal.Decimal, bool) {
	var (
		d  decimal.Decimal
		ok bool
	)
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, false
		}
		d, ok = decimal.NewFromFloat(x), true
	case int:
		d, ok = decimal.NewFromInt(int64(x)), true
	case int64:
		d, ok = decimal.NewFromInt(x), true
	case string:
		d, ok = parseDecimal(x)
	case fmt.Stringer:
		// json.Number
		d, ok = parseDecimal(x.String())
	}
	if !ok || !inRange(d) {
		return decimal.Zero, false
	}
	return d, true
}

func inRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -maxExponent && exp <= maxExponent && d.NumDigits() <= maxDigits
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	if len(s) > 2*maxDigits {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// flag resolves a boolean field, returning def when absent.
func flag(obj map[string]any, keys []string, def bool) bool {
	v, ok := lookup(obj, keys)
	if !ok {
		return def
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(x)); err == nil {
			return b
		}
		return x != ""
	default:
		if d, ok := toDecimal(x); ok {
			return !d.IsZero()
		}
		return true
	}
}

// override returns the payload value when non-empty, else def.
func override(obj map[string]any, keys []string, def string) string {
	if s := text(obj, keys); s != "" {
		return s
	}
	return def
}
