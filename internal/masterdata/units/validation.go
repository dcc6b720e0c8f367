package units

import "github.com/odyssey-erp/masterdesk/internal/masterdata"

const maxNameLen = 100

var fields = []masterdata.Field{
	{Name: FieldCode, Label: "units.col.code", Kind: masterdata.KindText, Key: true, Generated: true},
	{Name: FieldName, Label: "units.col.name", Kind: masterdata.KindText, Rules: "required,max=100", MaxLen: maxNameLen},
	{Name: FieldCreator, Label: "units.field.creator", Kind: masterdata.KindText, ReadOnly: true},
}
