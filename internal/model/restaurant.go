package model

// Restaurant is static reference data for a kitchen that fulfils orders.
type Restaurant struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Address      string `json:"address" db:"address"`
	ContactPhone string `json:"contact_phone" db:"contact_phone"`
}

// MenuEntry marks a product as carried (or not) by a restaurant.
type MenuEntry struct {
	ID           int64 `json:"id" db:"id"`
	RestaurantID int64 `json:"restaurant_id" db:"restaurant_id"`
	ProductID    int64 `json:"product_id" db:"product_id"`
	Availability bool  `json:"availability" db:"availability"`
}

// RestaurantCandidate is a restaurant able to cook every product of an order.
type RestaurantCandidate struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// AvailabilityRow holds a product and its availability per restaurant,
// aligned with AvailabilityGrid.Restaurants.
type AvailabilityRow struct {
	Product      Product `json:"product"`
	Availability []bool  `json:"availability"`
}

// AvailabilityGrid is the product-by-restaurant stock table of the staff dashboard.
type AvailabilityGrid struct {
	Restaurants []Restaurant      `json:"restaurants"`
	Rows        []AvailabilityRow `json:"rows"`
}
