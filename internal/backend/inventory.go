package backend

import (
	"context"
	"net/http"
)

const productsPath = "/api/ProductInfo"

// ProductDTO is an inventory item as returned by the API.
type ProductDTO struct {
	DivisionCD            string `json:"DIVISION_CD"`
	ProductKindCD         string `json:"PRODUCTKIND_CD"`
	DepartmentCD          string `json:"DEPARTMENT_CD"`
	ProductCD             string `json:"PRODUCT_CD"`
	ProductNM             string `json:"PRODUCT_NM"`
	ProductNMEng          string `json:"PRODUCT_NM_ENG"`
	ProductNMKor          string `json:"PRODUCT_NM_KOR"`
	StockUnit             string `json:"STOCK_UNIT"`
	InboundUnit           string `json:"INBOUND_UNIT"`
	OutboundUnit          string `json:"OUTBOUND_UNIT"`
	MaterialInputUnit     string `json:"MATERIALINPUT_UNIT"`
	InboundQuantity       Number `json:"INBOUND_QUANTITY"`
	OutboundQuantity      Number `json:"OUTBOUND_QUANTITY"`
	MaterialInputQuantity Number `json:"MATERIALINPUT_QUANTITY"`
	StoreCD               string `json:"STORE_CD"`
	StandardCD            string `json:"STANDARD_CD"`
	FitnessStock          Number `json:"FITNESS_STOCK"`
	UnitPriceCC           Number `json:"UNIT_PRICE_CC"`
	UnitPriceFC           Number `json:"UNIT_PRICE_FC"`
	ExRate                Number `json:"EX_RATE"`
	CCType                string `json:"CC_TYPE"`
	FCType                string `json:"FC_TYPE"`
	Summary               string `json:"SUMMARY"`
	IsUse                 string `json:"ISUSE"`
	Origin                string `json:"ORIGIN"`
}

// ProductPayload is the body of insert and update calls. Its field names
// differ from ProductDTO; the API accepts them as-is.
type ProductPayload struct {
	DivisionCD            string  `json:"DivisionCD"`
	ProductKindCD         string  `json:"PRODUCTKIND_CD"`
	DepartmentCD          string  `json:"DepartmentCD"`
	ProductCD             string  `json:"PRODUCT_CD"`
	ProductNM             string  `json:"PRODUCT_NM"`
	ProductNMEng          string  `json:"PRODUCT_NM_ENG"`
	ProductNMKor          string  `json:"PRODUCT_NM_KOR"`
	InboundUnitCD         string  `json:"InboundUnitCD"`
	OutboundUnitCD        string  `json:"OutboundUnitCD"`
	MaterialInputUnitCD   string  `json:"materialInputUnitCD"`
	StockUnitCD           string  `json:"StockUnitCD"`
	InboundQuantity       float64 `json:"InboundQuantity"`
	OutboundQuantity      float64 `json:"OutboundQuantity"`
	MaterialInputQuantity float64 `json:"MaterialInputQuantity"`
	StoreCD               string  `json:"StoreCD"`
	StandardCD            string  `json:"StandardCD"`
	FitnessStock          float64 `json:"FitnessStock"`
	UnitPrice             float64 `json:"UnitPrice"`
	FcUnitPrice           float64 `json:"FcUnitPirce"`
	ExRate                float64 `json:"ExRate"`
	CCType                string  `json:"lblCCType"`
	FCType                string  `json:"lblFCType"`
	Summary               string  `json:"txtSummary"`
	UseNotUse             string  `json:"rgUseNotUse"`
	HaveChildBOM          string  `json:"HaveChildBOM"`
	Origin                string  `json:"Origin"`
}

// ListProducts returns every inventory item.
func (c *Client) ListProducts(ctx context.Context, creds Credentials) ([]ProductDTO, error) {
	env, err := c.do(ctx, creds, call{
		op:       "inventory.list",
		method:   http.MethodGet,
		path:     productsPath + "/getDataProduct",
		fallback: "cannot load inventory items",
	})
	if err != nil {
		return nil, err
	}
	return decodeResult[ProductDTO](env)
}

// InsertProduct creates an inventory item.
func (c *Client) InsertProduct(ctx context.Context, creds Credentials, payload ProductPayload) error {
	_, err := c.do(ctx, creds, call{
		op:       "inventory.insert",
		method:   http.MethodPost,
		path:     productsPath + "/insert",
		body:     payload,
		fallback: "cannot create inventory item",
	})
	return err
}

// UpdateProduct updates the inventory item identified by payload.ProductCD.
func (c *Client) UpdateProduct(ctx context.Context, creds Credentials, payload ProductPayload) error {
	_, err := c.do(ctx, creds, call{
		op:       "inventory.update",
		method:   http.MethodPost,
		path:     productsPath + "/update",
		body:     payload,
		fallback: "cannot update inventory item",
	})
	return err
}

// DeleteProduct removes the inventory item identified by code.
func (c *Client) DeleteProduct(ctx context.Context, creds Credentials, code string) error {
	_, err := c.do(ctx, creds, call{
		op:       "inventory.delete",
		method:   http.MethodPost,
		path:     productsPath + "/delete",
		body:     map[string]string{"PRODUCT_CD": code},
		fallback: "cannot delete inventory item",
	})
	return err
}
