package customers

import (
	"context"

	"github.com/odyssey-erp/masterdesk/internal/backend"
)

// Gateway is the part of backend.Client used by the repository.
type Gateway interface {
	ListCustomers(ctx context.Context, creds backend.Credentials) ([]backend.CustomerDTO, error)
	InsertCustomer(ctx context.Context, creds backend.Credentials, payload backend.CustomerPayload) error
	UpdateCustomer(ctx context.Context, creds backend.Credentials, payload backend.CustomerPayload) error
	DeleteCustomer(ctx context.Context, creds backend.Credentials, code string) error
}

// Repository reads and writes customers through the API.
type Repository struct {
	gateway Gateway
}

// NewRepository constructs a Repository.
func NewRepository(gateway Gateway) *Repository {
	return &Repository{gateway: gateway}
}

// List returns every customer.
func (r *Repository) List(ctx context.Context, creds backend.Credentials) ([]Customer, error) {
	rows, err := r.gateway.ListCustomers(ctx, creds)
	if err != nil {
		return nil, err
	}
	out := make([]Customer, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromDTO(row))
	}
	return out, nil
}

// Create adds a customer. The API assigns the customer code.
func (r *Repository) Create(ctx context.Context, creds backend.Credentials, values map[string]string) error {
	payload := toPayload(values)
	payload.CustomerCD = ""
	return r.gateway.InsertCustomer(ctx, creds, payload)
}

// Update replaces the customer identified by code.
func (r *Repository) Update(ctx context.Context, creds backend.Credentials, code string, values map[string]string) error {
	payload := toPayload(values)
	payload.CustomerCD = code
	return r.gateway.UpdateCustomer(ctx, creds, payload)
}

// Delete removes the customer identified by code.
func (r *Repository) Delete(ctx context.Context, creds backend.Credentials, code string) error {
	return r.gateway.DeleteCustomer(ctx, creds, code)
}

func fromDTO(row backend.CustomerDTO) Customer {
	return Customer{
		Code:         row.CustomerCD,
		UserCode:     row.CustomerUserCD,
		Category:     row.CategoryCD,
		Type:         row.CustomerType,
		Name:         row.CustomerNM,
		NameEN:       row.CustomerNMEN,
		NameKOR:      row.CustomerNMKOR,
		Buyer:        row.BuyerNM,
		TaxCode:      row.TaxCD,
		BankCode:     row.BankCD,
		Owner:        row.OwnerNM,
		BusinessType: row.BusinessType,
		KindBusiness: row.KindBusiness,
		Tel:          row.Tel,
		Fax:          row.Fax,
		Zip:          row.ZipCD,
		Address:      row.Address,
		Email:        row.Email,
	}
}

// toPayload maps form values to the API body. BRN, SSN and AddressDO are
// not edited on this page and are sent empty.
func toPayload(v map[string]string) backend.CustomerPayload {
	return backend.CustomerPayload{
		CustomerCD:     v[FieldCode],
		CategoryCD:     v[FieldCategory],
		CustomerType:   v[FieldType],
		CustomerNM:     v[FieldName],
		CustomerNMEN:   v[FieldNameEN],
		CustomerNMKOR:  v[FieldNameKOR],
		BuyerNM:        v[FieldBuyer],
		CustomerUserCD: v[FieldUserCode],
		TaxCD:          v[FieldTax],
		BankCD:         v[FieldBank],
		OwnerNM:        v[FieldOwner],
		BusinessType:   v[FieldBusinessType],
		KindBusiness:   v[FieldKindBusiness],
		Tel:            v[FieldTel],
		Fax:            v[FieldFax],
		ZipCD:          v[FieldZip],
		Address:        v[FieldAddress],
		Email:          v[FieldEmail],
	}
}
