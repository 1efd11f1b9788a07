package validator

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,phone"`
}

func (RegisterInput) ValidationMessages() map[string]string {
	return map[string]string{
		"name.required":     "Name is required",
		"name.min":          "Name should have at least 2 characters",
		"name.max":          "Name should not exceed 50 characters",
		"email.required":    "Email is required",
		"email.email":       "Invalid email format",
		"password.required": "Password is required",
		"password.min":      "Password should be at least 6 characters long",
		"phone.phone":       "Phone number must be between 10 to 15 digits",
	}
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (LoginInput) ValidationMessages() map[string]string {
	return map[string]string{
		"email.required":    "Email is required",
		"email.email":       "Invalid email format",
		"password.required": "Password is required",
		"password.min":      "Password must be at least 6 characters",
	}
}
