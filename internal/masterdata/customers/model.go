package customers

// Customer is a customer record.
type Customer struct {
	Code         string `json:"code"`
	UserCode     string `json:"user_code"`
	Category     string `json:"category"`
	Type         string `json:"type"`
	Name         string `json:"name"`
	NameEN       string `json:"name_en"`
	NameKOR      string `json:"name_kor"`
	Buyer        string `json:"buyer"`
	TaxCode      string `json:"tax_code"`
	BankCode     string `json:"bank_code"`
	Owner        string `json:"owner"`
	BusinessType string `json:"business_type"`
	KindBusiness string `json:"kind_business"`
	Tel          string `json:"tel"`
	Fax          string `json:"fax"`
	Zip          string `json:"zip"`
	Address      string `json:"address"`
	Email        string `json:"email"`
}

// Customer types accepted by the API.
const (
	TypeDomestic = "1"
	TypeForeign  = "2"
)

// Form field names.
const (
	FieldCode         = "code"
	FieldUserCode     = "user_code"
	FieldCategory     = "category"
	FieldType         = "type"
	FieldName         = "name"
	FieldNameEN       = "name_en"
	FieldNameKOR      = "name_kor"
	FieldTax          = "tax"
	FieldEmail        = "email"
	FieldBuyer        = "buyer"
	FieldBank         = "bank"
	FieldOwner        = "owner"
	FieldBusinessType = "business_type"
	FieldKindBusiness = "kind_business"
	FieldTel          = "tel"
	FieldFax          = "fax"
	FieldZip          = "zip"
	FieldAddress      = "address"
)

func values(c Customer) map[string]string {
	return map[string]string{
		FieldCode:         c.Code,
		FieldUserCode:     c.UserCode,
		FieldCategory:     c.Category,
		FieldType:         c.Type,
		FieldName:         c.Name,
		FieldNameEN:       c.NameEN,
		FieldNameKOR:      c.NameKOR,
		FieldTax:          c.TaxCode,
		FieldEmail:        c.Email,
		FieldBuyer:        c.Buyer,
		FieldBank:         c.BankCode,
		FieldOwner:        c.Owner,
		FieldBusinessType: c.BusinessType,
		FieldKindBusiness: c.KindBusiness,
		FieldTel:          c.Tel,
		FieldFax:          c.Fax,
		FieldZip:          c.Zip,
		FieldAddress:      c.Address,
	}
}
