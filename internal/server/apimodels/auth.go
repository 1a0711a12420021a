package apimodels

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

// SetHomeRequest carries a home location change. The account password is
// re-verified before the location is saved.
type SetHomeRequest struct {
	Lat      float64 `json:"lat" binding:"required"`
	Lng      float64 `json:"lng" binding:"required"`
	Address  string  `json:"address"`
	Password string  `json:"password" binding:"required"`
}
