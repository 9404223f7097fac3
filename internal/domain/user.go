package domain

// User matches an external auth identity by ID. Referenced by orders
// via UserID, never embedded in them.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Role    string `json:"role"`
}
