package customers

import "github.com/odyssey-erp/masterdesk/internal/masterdata"

var fields = []masterdata.Field{
	{Name: FieldCode, Label: "customers.col.code", Kind: masterdata.KindText, Key: true, Generated: true},
	{Name: FieldUserCode, Label: "customers.field.user_code", Kind: masterdata.KindText, Rules: "omitempty,max=50", MaxLen: 50},
	{Name: FieldCategory, Label: "customers.field.category", Kind: masterdata.KindText, Rules: "required,max=50", MaxLen: 50},
	{Name: FieldType, Label: "customers.field.type", Kind: masterdata.KindSelect, Rules: "required,oneof=1 2", Options: []masterdata.Option{
		{Value: TypeDomestic, Label: "customers.type.domestic"},
		{Value: TypeForeign, Label: "customers.type.foreign"},
	}},
	{Name: FieldName, Label: "customers.field.name", Kind: masterdata.KindText, Rules: "required,max=200", MaxLen: 200},
	{Name: FieldNameEN, Label: "customers.field.name_en", Kind: masterdata.KindText, Rules: "omitempty,max=200", MaxLen: 200},
	{Name: FieldTax, Label: "customers.field.tax", Kind: masterdata.KindText, Rules: "required,max=50", MaxLen: 50},
	{Name: FieldNameKOR, Label: "customers.field.name_kor", Kind: masterdata.KindText, Rules: "omitempty,max=200", MaxLen: 200},
	{Name: FieldEmail, Label: "customers.col.email", Kind: masterdata.KindEmail, Rules: "omitempty,email"},
	{Name: FieldBuyer, Label: "customers.field.buyer", Kind: masterdata.KindText},
	{Name: FieldBank, Label: "customers.field.bank", Kind: masterdata.KindText},
	{Name: FieldOwner, Label: "customers.field.owner", Kind: masterdata.KindText},
	{Name: FieldBusinessType, Label: "customers.field.business_type", Kind: masterdata.KindText},
	{Name: FieldKindBusiness, Label: "customers.field.kind_business", Kind: masterdata.KindText},
	{Name: FieldTel, Label: "customers.field.tel", Kind: masterdata.KindText},
	{Name: FieldFax, Label: "customers.field.fax", Kind: masterdata.KindText},
	{Name: FieldZip, Label: "customers.field.zip", Kind: masterdata.KindText},
	{Name: FieldAddress, Label: "customers.field.address", Kind: masterdata.KindTextArea, Rules: "required"},
}
