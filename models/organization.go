package models

// Brand holds presentation defaults used when the payload supplies none.
type Brand struct {
	Color      string
	FontFamily string
	LogoURL    string
	LogoAlt    string
}

// Organization bundles the issuing organization's defaults. It is a plain value
// handed to the normalizer and composer, never shared mutable state.
type Organization struct {
	Brand   Brand
	Company Company
	Bank    Payment
}

// DefaultOrganization returns the compiled-in organization constants.
func DefaultOrganization() Organization {
	const domain = "createwith.com"
	return Organization{
		Brand: Brand{
			Color:      "#3C296D",
			FontFamily: "'Inter', 'Helvetica Neue', sans-serif",
			LogoURL:    "https://228b0d41a70826a298630413a3775f84.cdn.bubble.io/cdn-cgi/image/w=96,h=52,f=auto,dpr=2,fit=contain/f1740613307556x552233112811189500/Create%20With_%E2%80%A8%20%285%29.png",
			LogoAlt:    "Create With logo",
		},
		Company: Company{
			Name:          "CREATE WITH LTD",
			CompanyNumber: "15934640",
			VATNumber:     "499197417",
			Address:       "71-75 Shelton Street, London, England, WC2H 9JQ",
			Domain:        domain,
			Email:         "accounts@" + domain,
			Website:       "https://" + domain,
		},
		Bank: Payment{
			Bank:          "Monzo",
			AccountName:   "CREATE WITH LTD",
			SortCode:      "04-00-03",
			AccountNumber: "94728077",
			IBAN:          "GB93 MONZ 0400 0394 7280 77",
			SWIFT:         "MONZGB2L",
		},
	}
}
