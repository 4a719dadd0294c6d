package ecommerce

import (
	"encoding/json"
	"strconv"

	"github.com/channelbridge/backend/internal/domain/integration"
)

// Wire types for the WooCommerce REST API (v3)

type wcImage struct {
	Src  string `json:"src"`
	Name string `json:"name,omitempty"`
	Alt  string `json:"alt,omitempty"`
}

type wcAttribute struct {
	Name      string   `json:"name"`
	Options   []string `json:"options"`
	Position  int      `json:"position"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
}

type wcVariationAttribute struct {
	Name   string `json:"name"`
	Option string `json:"option"`
}

type wcMetaData struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type wcTerm struct {
	Name string `json:"name"`
}

// wcProductRequest is the outbound product body. Optional fields use
// omitempty so a sanitized-away field disappears from the payload instead of
// clearing the remote value.
type wcProductRequest struct {
	Name          string        `json:"name,omitempty"`
	Slug          string        `json:"slug,omitempty"`
	Type          string        `json:"type,omitempty"`
	Status        string        `json:"status,omitempty"`
	Description   string        `json:"description,omitempty"`
	SKU           string        `json:"sku,omitempty"`
	RegularPrice  string        `json:"regular_price,omitempty"`
	ManageStock   bool          `json:"manage_stock"`
	StockQuantity int64         `json:"stock_quantity,omitempty"`
	StockStatus   string        `json:"stock_status,omitempty"`
	Images        []wcImage     `json:"images,omitempty"`
	Attributes    []wcAttribute `json:"attributes,omitempty"`
	Categories    []wcTerm      `json:"categories,omitempty"`
	Tags          []wcTerm      `json:"tags,omitempty"`
	MetaData      []wcMetaData  `json:"meta_data,omitempty"`
}

type wcProductResponse struct {
	ID     int64  `json:"id"`
	SKU    string `json:"sku"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

type wcVariationRequest struct {
	SKU           string                 `json:"sku,omitempty"`
	RegularPrice  string                 `json:"regular_price,omitempty"`
	ManageStock   bool                   `json:"manage_stock"`
	StockQuantity int64                  `json:"stock_quantity,omitempty"`
	StockStatus   string                 `json:"stock_status,omitempty"`
	Image         *wcImage               `json:"image,omitempty"`
	Attributes    []wcVariationAttribute `json:"attributes,omitempty"`
	MetaData      []wcMetaData           `json:"meta_data,omitempty"`
}

type wcVariationResponse struct {
	ID       int64        `json:"id"`
	SKU      string       `json:"sku"`
	MetaData []wcMetaData `json:"meta_data"`
}

// wcErrorResponse is the standard WooCommerce error body
type wcErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int             `json:"status"`
		Params json.RawMessage `json:"params"`
	} `json:"data"`
}

// Conversions between domain payloads and wire types

func toWCImages(images []integration.Image) []wcImage {
	if len(images) == 0 {
		return nil
	}
	out := make([]wcImage, len(images))
	for i, img := range images {
		out[i] = wcImage{Src: img.Src, Name: img.Name, Alt: img.Alt}
	}
	return out
}

func toWCAttributes(attrs []integration.Attribute) []wcAttribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]wcAttribute, len(attrs))
	for i, a := range attrs {
		out[i] = wcAttribute{
			Name:      a.Name,
			Options:   a.Options,
			Position:  a.Position,
			Visible:   a.Visible,
			Variation: a.Variation,
		}
	}
	return out
}

func toWCTerms(terms []integration.TermRef) []wcTerm {
	if len(terms) == 0 {
		return nil
	}
	out := make([]wcTerm, len(terms))
	for i, t := range terms {
		out[i] = wcTerm{Name: t.Name}
	}
	return out
}

func toWCMetaData(meta []integration.MetaData) []wcMetaData {
	if len(meta) == 0 {
		return nil
	}
	out := make([]wcMetaData, len(meta))
	for i, m := range meta {
		value, _ := json.Marshal(m.Value)
		out[i] = wcMetaData{Key: m.Key, Value: value}
	}
	return out
}

func fromWCMetaData(meta []wcMetaData) []integration.MetaData {
	out := make([]integration.MetaData, 0, len(meta))
	for _, m := range meta {
		// Values written by us are JSON strings; anything else is kept raw
		var s string
		if err := json.Unmarshal(m.Value, &s); err != nil {
			s = string(m.Value)
		}
		out = append(out, integration.MetaData{Key: m.Key, Value: s})
	}
	return out
}

// toWCProductRequest builds the outbound product body, applying the
// sanitization rules on images and attributes.
func toWCProductRequest(p *integration.ProductPayload) *wcProductRequest {
	req := &wcProductRequest{
		Name:        p.Name,
		Slug:        p.Slug,
		Type:        string(p.Type),
		Status:      p.Status,
		Description: p.Description,
		Images:      toWCImages(sanitizeImages(p.Images)),
		Attributes:  toWCAttributes(sanitizeAttributes(p.Attributes)),
		Categories:  toWCTerms(p.Categories),
		Tags:        toWCTerms(p.Tags),
		MetaData:    toWCMetaData(p.MetaData),
	}

	if p.Type == integration.ProductTypeSimple {
		req.SKU = p.SKU
		req.RegularPrice = p.RegularPrice
		req.ManageStock = p.ManageStock
		req.StockQuantity = p.StockQuantity
		req.StockStatus = string(p.StockStatus)
	}

	return req
}

func toWCVariationRequest(v *integration.VariationPayload) *wcVariationRequest {
	req := &wcVariationRequest{
		SKU:           v.SKU,
		RegularPrice:  v.RegularPrice,
		ManageStock:   v.ManageStock,
		StockQuantity: v.StockQuantity,
		StockStatus:   string(v.StockStatus),
		MetaData:      toWCMetaData(v.MetaData),
	}

	if v.Image != nil {
		if imgs := sanitizeImages([]integration.Image{*v.Image}); len(imgs) > 0 {
			req.Image = &wcImage{Src: imgs[0].Src, Name: imgs[0].Name, Alt: imgs[0].Alt}
		}
	}

	if len(v.Attributes) > 0 {
		req.Attributes = make([]wcVariationAttribute, len(v.Attributes))
		for i, a := range v.Attributes {
			req.Attributes[i] = wcVariationAttribute{Name: a.Name, Option: a.Option}
		}
	}

	return req
}

func (r *wcProductResponse) toDomain() *integration.RemoteProduct {
	return &integration.RemoteProduct{
		ID:     strconv.FormatInt(r.ID, 10),
		SKU:    r.SKU,
		Type:   integration.ProductType(r.Type),
		Status: r.Status,
	}
}

func (r *wcVariationResponse) toDomain() *integration.RemoteVariation {
	return &integration.RemoteVariation{
		ID:       strconv.FormatInt(r.ID, 10),
		SKU:      r.SKU,
		MetaData: fromWCMetaData(r.MetaData),
	}
}
