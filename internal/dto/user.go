package dto

// UpdateDetailsRequest is the JSON body for PUT /users/updatedetails.
// Omitted fields keep their current values.
type UpdateDetailsRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
}

// MeResponse is returned by GET /users/me.
type MeResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
}
