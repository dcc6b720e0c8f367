package backend

import (
	"context"
	"net/http"
)

const customersPath = "/api/CustomerInfo"

// CustomerDTO is a customer as returned by the API.
type CustomerDTO struct {
	CustomerCD     string `json:"CustomerCD"`
	CategoryCD     string `json:"CategoryCD"`
	CustomerType   string `json:"CustomerType"`
	CustomerNM     string `json:"CustomerNM"`
	CustomerNMEN   string `json:"CustomerNM_EN"`
	CustomerNMKOR  string `json:"CustomerNM_KOR"`
	BuyerNM        string `json:"BuyerNM"`
	CustomerUserCD string `json:"CustomerUserCD"`
	TaxCD          string `json:"TaxCD"`
	BankCD         string `json:"BankCD"`
	OwnerNM        string `json:"OwnerNM"`
	BusinessType   string `json:"BusinessType"`
	KindBusiness   string `json:"KindBusiness"`
	Tel            string `json:"Tel"`
	Fax            string `json:"Fax"`
	ZipCD          string `json:"ZipCD"`
	Address        string `json:"Address"`
	Email          string `json:"Email"`
}

// CustomerPayload is the body of insert and update calls.
type CustomerPayload struct {
	CustomerCD     string `json:"CustomerCD"`
	CategoryCD     string `json:"CategoryCD"`
	CustomerType   string `json:"CustomerType"`
	CustomerNM     string `json:"CustomerNM"`
	CustomerNMEN   string `json:"CustomerNM_EN"`
	CustomerNMKOR  string `json:"CustomerNM_KOR"`
	BuyerNM        string `json:"BuyerNM"`
	CustomerUserCD string `json:"CustomerUserCD"`
	TaxCD          string `json:"TaxCD"`
	BankCD         string `json:"BankCD"`
	BRN            string `json:"BRN"`
	SSN            string `json:"SSN,omitempty"`
	OwnerNM        string `json:"OwnerNM"`
	BusinessType   string `json:"BusinessType"`
	KindBusiness   string `json:"KindBusiness"`
	Tel            string `json:"Tel"`
	Fax            string `json:"Fax"`
	ZipCD          string `json:"ZipCD"`
	AddressDO      string `json:"AddressDO"`
	Address        string `json:"Address"`
	Email          string `json:"Email"`
}

// ListCustomers returns every customer.
func (c *Client) ListCustomers(ctx context.Context, creds Credentials) ([]CustomerDTO, error) {
	env, err := c.do(ctx, creds, call{
		op:       "customers.list",
		method:   http.MethodGet,
		path:     customersPath + "/getAll",
		fallback: "cannot load customers",
	})
	if err != nil {
		return nil, err
	}
	return decodeResult[CustomerDTO](env)
}

// InsertCustomer creates a customer.
func (c *Client) InsertCustomer(ctx context.Context, creds Credentials, payload CustomerPayload) error {
	_, err := c.do(ctx, creds, call{
		op:       "customers.insert",
		method:   http.MethodPost,
		path:     customersPath + "/insert",
		body:     payload,
		fallback: "cannot create customer",
	})
	return err
}

// UpdateCustomer updates the customer identified by payload.CustomerCD.
func (c *Client) UpdateCustomer(ctx context.Context, creds Credentials, payload CustomerPayload) error {
	_, err := c.do(ctx, creds, call{
		op:       "customers.update",
		method:   http.MethodPost,
		path:     customersPath + "/update",
		body:     payload,
		fallback: "cannot update customer",
	})
	return err
}

// DeleteCustomer removes the customer identified by code.
func (c *Client) DeleteCustomer(ctx context.Context, creds Credentials, code string) error {
	_, err := c.do(ctx, creds, call{
		op:       "customers.delete",
		method:   http.MethodPost,
		path:     customersPath + "/delete",
		body:     map[string]string{"CustomerCD": code},
		fallback: "cannot delete customer",
	})
	return err
}
