package inventory

import (
	"strconv"

	"github.com/odyssey-erp/masterdesk/internal/masterdata"
)

func number(name, label string) masterdata.Field {
	return masterdata.Field{Name: name, Label: label, Kind: masterdata.KindNumber, Rules: "omitempty,numeric"}
}

func text(name, label string) masterdata.Field {
	return masterdata.Field{Name: name, Label: label, Kind: masterdata.KindText}
}

func required(name, label string, maxLen int) masterdata.Field {
	return masterdata.Field{Name: name, Label: label, Kind: masterdata.KindText, Rules: "required,max=" + strconv.Itoa(maxLen), MaxLen: maxLen}
}

var fields = []masterdata.Field{
	{Name: FieldCode, Label: "inventory.field.code", Kind: masterdata.KindText, Key: true, Rules: "required,max=50", MaxLen: 50},
	required(FieldStore, "inventory.field.store", 50),
	required(FieldKind, "inventory.field.kind", 50),
	text(FieldDepartment, "inventory.field.department"),
	required(FieldName, "inventory.field.name", 200),
	text(FieldNameEN, "inventory.field.name_en"),
	text(FieldNameKOR, "inventory.field.name_kor"),
	required(FieldStockUnit, "inventory.col.unit", 20),
	text(FieldDivision, "inventory.field.division"),
	text(FieldInboundUnit, "inventory.field.inbound_unit"),
	text(FieldOutboundUnit, "inventory.field.outbound_unit"),
	text(FieldMaterialUnit, "inventory.field.material_unit"),
	number(FieldInboundQty, "inventory.field.inbound_qty"),
	number(FieldOutboundQty, "inventory.field.outbound_qty"),
	number(FieldMaterialQty, "inventory.field.material_qty"),
	text(FieldStandard, "inventory.field.standard"),
	number(FieldFitnessStock, "inventory.field.fitness_stock"),
	number(FieldUnitPrice, "inventory.field.unit_price"),
	number(FieldUnitPriceFC, "inventory.field.unit_price_fc"),
	number(FieldExRate, "inventory.field.ex_rate"),
	text(FieldCCType, "inventory.field.cc_type"),
	text(FieldFCType, "inventory.field.fc_type"),
	text(FieldInUse, "inventory.field.is_use"),
	text(FieldChildBOM, "inventory.field.child_bom"),
	text(FieldOrigin, "inventory.field.origin"),
	{Name: FieldSummary, Label: "inventory.field.summary", Kind: masterdata.KindTextArea},
}
