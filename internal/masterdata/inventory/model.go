package inventory

import "strconv"

// Item is an inventory item.
type Item struct {
	Code         string  `json:"code"`
	Store        string  `json:"store"`
	Kind         string  `json:"kind"`
	Department   string  `json:"department"`
	Division     string  `json:"division"`
	Name         string  `json:"name"`
	NameEN       string  `json:"name_en"`
	NameKOR      string  `json:"name_kor"`
	StockUnit    string  `json:"stock_unit"`
	InboundUnit  string  `json:"inbound_unit"`
	OutboundUnit string  `json:"outbound_unit"`
	MaterialUnit string  `json:"material_unit"`
	InboundQty   float64 `json:"inbound_qty"`
	OutboundQty  float64 `json:"outbound_qty"`
	MaterialQty  float64 `json:"material_qty"`
	Standard     string  `json:"standard"`
	FitnessStock float64 `json:"fitness_stock"`
	UnitPrice    float64 `json:"unit_price"`
	UnitPriceFC  float64 `json:"unit_price_fc"`
	ExRate       float64 `json:"ex_rate"`
	CCType       string  `json:"cc_type"`
	FCType       string  `json:"fc_type"`
	Summary      string  `json:"summary"`
	InUse        string  `json:"in_use"`
	Origin       string  `json:"origin"`
}

// Form field names.
const (
	FieldCode         = "code"
	FieldStore        = "store"
	FieldKind         = "kind"
	FieldDepartment   = "department"
	FieldName         = "name"
	FieldNameEN       = "name_en"
	FieldNameKOR      = "name_kor"
	FieldStockUnit    = "stock_unit"
	FieldDivision     = "division"
	FieldInboundUnit  = "inbound_unit"
	FieldOutboundUnit = "outbound_unit"
	FieldMaterialUnit = "material_unit"
	FieldInboundQty   = "inbound_qty"
	FieldOutboundQty  = "outbound_qty"
	FieldMaterialQty  = "material_qty"
	FieldStandard     = "standard"
	FieldFitnessStock = "fitness_stock"
	FieldUnitPrice    = "unit_price"
	FieldUnitPriceFC  = "unit_price_fc"
	FieldExRate       = "ex_rate"
	FieldCCType       = "cc_type"
	FieldFCType       = "fc_type"
	FieldInUse        = "is_use"
	FieldChildBOM     = "child_bom"
	FieldOrigin       = "origin"
	FieldSummary      = "summary"
)

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func values(it Item) map[string]string {
	return map[string]string{
		FieldCode:         it.Code,
		FieldStore:        it.Store,
		FieldKind:         it.Kind,
		FieldDepartment:   it.Department,
		FieldName:         it.Name,
		FieldNameEN:       it.NameEN,
		FieldNameKOR:      it.NameKOR,
		FieldStockUnit:    it.StockUnit,
		FieldDivision:     it.Division,
		FieldInboundUnit:  it.InboundUnit,
		FieldOutboundUnit: it.OutboundUnit,
		FieldMaterialUnit: it.MaterialUnit,
		FieldInboundQty:   formatNumber(it.InboundQty),
		FieldOutboundQty:  formatNumber(it.OutboundQty),
		FieldMaterialQty:  formatNumber(it.MaterialQty),
		FieldStandard:     it.Standard,
		FieldFitnessStock: formatNumber(it.FitnessStock),
		FieldUnitPrice:    formatNumber(it.UnitPrice),
		FieldUnitPriceFC:  formatNumber(it.UnitPriceFC),
		FieldExRate:       formatNumber(it.ExRate),
		FieldCCType:       it.CCType,
		FieldFCType:       it.FCType,
		FieldInUse:        it.InUse,
		FieldChildBOM:     "",
		FieldOrigin:       it.Origin,
		FieldSummary:      it.Summary,
	}
}
