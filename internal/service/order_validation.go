package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"foodcart/internal/model"

	"github.com/nyaruka/phonenumbers"
)

var jsonNull = []byte("null")

// Column widths of the orders table, counted in characters.
const (
	maxNameLength    = 50
	maxAddressLength = 200
	maxPhoneLength   = 128
)

type orderLinePayload struct {
	Product  json.RawMessage `json:"product"`
	Quantity json.RawMessage `json:"quantity"`
}

// validateOrderPayload checks every field and returns the typed request.
// All problems are collected rather than stopping at the first one.
func validateOrderPayload(payload *model.OrderPayload, region string) (*model.OrderRequest, model.ValidationErrors) {
	var errs model.ValidationErrors
	if payload == nil {
		errs.Add("", "request body is required")
		return nil, errs
	}

	req := &model.OrderRequest{
		Firstname: requiredString(&errs, "firstname", payload.Firstname, maxNameLength),
		Lastname:  requiredString(&errs, "lastname", payload.Lastname, maxNameLength),
		Address:   requiredString(&errs, "address", payload.Address, maxAddressLength),
	}

	if phone := requiredString(&errs, "phonenumber", payload.Phonenumber, maxPhoneLength); phone != "" {
		normalised, err := normalisePhone(phone, region)
		if err != nil {
			errs.Add("phonenumber", err.Error())
		} else {
			req.Phonenumber = normalised
		}
	}

	req.Items = orderLines(&errs, payload.Products)

	if len(errs) > 0 {
		return nil, errs
	}
	return req, nil
}

// requiredString decodes a non-blank JSON string of at most maxLen runes.
func requiredString(errs *model.ValidationErrors, field string, raw json.RawMessage, maxLen int) string {
	if len(raw) == 0 {
		errs.Add(field, "this field is required")
		return ""
	}
	if bytes.Equal(raw, jsonNull) {
		errs.Add(field, "this field may not be null")
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		errs.Add(field, "not a valid string")
		return ""
	}
	if s == "" {
		errs.Add(field, "this field may not be blank")
		return ""
	}
	if utf8.RuneCountInString(s) > maxLen {
		errs.Add(field, fmt.Sprintf("ensure this field has no more than %d characters", maxLen))
		return ""
	}
	return s
}

// normalisePhone parses number for region and formats it as E.164.
func normalisePhone(number, region string) (string, error) {
	parsed, err := phonenumbers.Parse(number, region)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("enter a valid phone number")
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

func orderLines(errs *model.ValidationErrors, raw json.RawMessage) []model.OrderItemRequest {
	if len(raw) == 0 {
		errs.Add("products", "this field is required")
		return nil
	}
	if bytes.Equal(raw, jsonNull) {
		errs.Add("products", "this field may not be null")
		return nil
	}

	var lines []orderLinePayload
	if err := json.Unmarshal(raw, &lines); err != nil {
		errs.Add("products", "expected a list of items")
		return nil
	}
	if len(lines) == 0 {
		errs.Add("products", "this list may not be empty")
		return nil
	}

	items := make([]model.OrderItemRequest, 0, len(lines))
	for i, line := range lines {
		field := fmt.Sprintf("products[%d]", i)

		var item model.OrderItemRequest
		if len(line.Product) == 0 || json.Unmarshal(line.Product, &item.ProductID) != nil || bytes.Equal(line.Product, jsonNull) {
			errs.Add(field+".product", "a valid product id is required")
			continue
		}
		if len(line.Quantity) == 0 || json.Unmarshal(line.Quantity, &item.Quantity) != nil || bytes.Equal(line.Quantity, jsonNull) {
			errs.Add(field+".quantity", "a valid integer is required")
			continue
		}
		if item.Quantity < 1 {
			errs.Add(field+".quantity", "ensure this value is greater than or equal to 1")
			continue
		}
		items = append(items, item)
	}
	return items
}
