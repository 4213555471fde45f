package auth

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
	// Role is customer (default) or owner; admins are seeded.
	Role string `json:"role" binding:"omitempty,oneof=customer owner"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerificationRequest struct {
	Status string `json:"status" binding:"required,oneof=pending verified rejected"`
}

type LoginResult struct {
	User        *UserPublic `json:"user"`
	AccessToken string      `json:"access_token"`
}

type UserPublic struct {
	ID                 int64  `json:"id"`
	Email              string `json:"email"`
	Name               string `json:"name"`
	Phone              string `json:"phone,omitempty"`
	Role               string `json:"role"`
	VerificationStatus string `json:"verification_status"`
}
