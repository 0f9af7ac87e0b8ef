package models

// Staff represents a bookable staff member.
// Records are maintained through the staff administration path and are only read by booking logic.
type Staff struct {
	ID     string   `json:"id"     validate:"required,max=64"` // Externally assigned unique identifier
	Name   string   `json:"name"   validate:"required"`        // Display name of the staff member
	Email  string   `json:"email"  validate:"required,email"`  // Contact email address
	Phone  string   `json:"phone"`                             // Contact phone number
	Skills []string `json:"skills"`                            // Free-text skill tags, may be empty
}
