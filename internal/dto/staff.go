package dto

type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StaffResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type StaffLoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt int64         `json:"expiresAt"`
	Staff     StaffResponse `json:"staff"`
}
