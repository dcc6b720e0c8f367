package inventory

import (
	"context"
	"strconv"
	"strings"

	"github.com/odyssey-erp/masterdesk/internal/backend"
)

// Gateway is the part of backend.Client used by the repository.
type Gateway interface {
	ListProducts(ctx context.Context, creds backend.Credentials) ([]backend.ProductDTO, error)
	InsertProduct(ctx context.Context, creds backend.Credentials, payload backend.ProductPayload) error
	UpdateProduct(ctx context.Context, creds backend.Credentials, payload backend.ProductPayload) error
	DeleteProduct(ctx context.Context, creds backend.Credentials, code string) error
}

// Repository reads and writes inventory items through the API.
type Repository struct {
	gateway Gateway
}

// NewRepository constructs a Repository.
func NewRepository(gateway Gateway) *Repository {
	return &Repository{gateway: gateway}
}

// List returns every inventory item.
func (r *Repository) List(ctx context.Context, creds backend.Credentials) ([]Item, error) {
	rows, err := r.gateway.ListProducts(ctx, creds)
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromDTO(row))
	}
	return out, nil
}

// Create adds an inventory item.
func (r *Repository) Create(ctx context.Context, creds backend.Credentials, values map[string]string) error {
	return r.gateway.InsertProduct(ctx, creds, toPayload(values))
}

// Update replaces the inventory item identified by code.
func (r *Repository) Update(ctx context.Context, creds backend.Credentials, code string, values map[string]string) error {
	payload := toPayload(values)
	payload.ProductCD = code
	return r.gateway.UpdateProduct(ctx, creds, payload)
}

// Delete removes the inventory item identified by code.
func (r *Repository) Delete(ctx context.Context, creds backend.Credentials, code string) error {
	return r.gateway.DeleteProduct(ctx, creds, code)
}

func fromDTO(row backend.ProductDTO) Item {
	return Item{
		Code:         row.ProductCD,
		Store:        row.StoreCD,
		Kind:         row.ProductKindCD,
		Department:   row.DepartmentCD,
		Division:     row.DivisionCD,
		Name:         row.ProductNM,
		NameEN:       row.ProductNMEng,
		NameKOR:      row.ProductNMKor,
		StockUnit:    row.StockUnit,
		InboundUnit:  row.InboundUnit,
		OutboundUnit: row.OutboundUnit,
		MaterialUnit: row.MaterialInputUnit,
		InboundQty:   row.InboundQuantity.Float(),
		OutboundQty:  row.OutboundQuantity.Float(),
		MaterialQty:  row.MaterialInputQuantity.Float(),
		Standard:     row.StandardCD,
		FitnessStock: row.FitnessStock.Float(),
		UnitPrice:    row.UnitPriceCC.Float(),
		UnitPriceFC:  row.UnitPriceFC.Float(),
		ExRate:       row.ExRate.Float(),
		CCType:       row.CCType,
		FCType:       row.FCType,
		Summary:      row.Summary,
		InUse:        row.IsUse,
		Origin:       row.Origin,
	}
}

// parseNumber reads a submitted number. Blank and unparseable input is 0;
// the form validates numeric fields before they get here.
func parseNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func toPayload(v map[string]string) backend.ProductPayload {
	return backend.ProductPayload{
		DivisionCD:            v[FieldDivision],
		ProductKindCD:         v[FieldKind],
		DepartmentCD:          v[FieldDepartment],
		ProductCD:             v[FieldCode],
		ProductNM:             v[FieldName],
		ProductNMEng:          v[FieldNameEN],
		ProductNMKor:          v[FieldNameKOR],
		InboundUnitCD:         v[FieldInboundUnit],
		OutboundUnitCD:        v[FieldOutboundUnit],
		MaterialInputUnitCD:   v[FieldMaterialUnit],
		StockUnitCD:           v[FieldStockUnit],
		InboundQuantity:       parseNumber(v[FieldInboundQty]),
		OutboundQuantity:      parseNumber(v[FieldOutboundQty]),
		MaterialInputQuantity: parseNumber(v[FieldMaterialQty]),
		StoreCD:               v[FieldStore],
		StandardCD:            v[FieldStandard],
		FitnessStock:          parseNumber(v[FieldFitnessStock]),
		UnitPrice:             parseNumber(v[FieldUnitPrice]),
		FcUnitPrice:           parseNumber(v[FieldUnitPriceFC]),
		ExRate:                parseNumber(v[FieldExRate]),
		CCType:                v[FieldCCType],
		FCType:                v[FieldFCType],
		Summary:               v[FieldSummary],
		UseNotUse:             v[FieldInUse],
		HaveChildBOM:          v[FieldChildBOM],
		Origin:                v[FieldOrigin],
	}
}
