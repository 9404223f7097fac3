package domain

// Product is a catalog entry. Disabled products are excluded from the
// order-creation picker but stay visible and editable in the product
// list. Price changes never propagate to existing orders.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit"`
	Description string  `json:"description"`
	ImageURL    string  `json:"image_url"`
	Enable      bool    `json:"enable"`
}
