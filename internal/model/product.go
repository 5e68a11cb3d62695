package model

import "github.com/shopspring/decimal"

// ProductCategory groups products in the public catalogue.
type ProductCategory struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Product represents a dish sold by one or more restaurants.
type Product struct {
	ID            int64            `json:"id" db:"id"`
	Name          string           `json:"name" db:"name"`
	Category      *ProductCategory `json:"category" db:"-"`
	Price         decimal.Decimal  `json:"price" db:"price"`
	Image         string           `json:"-" db:"image"`
	SpecialStatus bool             `json:"special_status" db:"special_status"`
	Description   string           `json:"description" db:"description"`
}

// CatalogProduct is the public representation of an available product.
type CatalogProduct struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	SpecialStatus bool             `json:"special_status"`
	Description   string           `json:"description"`
	Category      *ProductCategory `json:"category"`
	Image         string           `json:"image"`
}

// Banner is a promotional block shown on the storefront.
type Banner struct {
	Title string `json:"title"`
	Src   string `json:"src"`
	Text  string `json:"text"`
}
