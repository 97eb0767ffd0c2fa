package handlers

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nameRegex  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	otpRegex   = regexp.MustCompile(`^\d{6}$`)
)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

func validateName(field, value string, errs []FieldError) []FieldError {
	value = strings.TrimSpace(value)
	if len(value) < 2 || len(value) > 50 {
		return append(errs, FieldError{Field: field, Message: field + " must be between 2 and 50 characters"})
	}
	if !nameRegex.MatchString(value) {
		return append(errs, FieldError{Field: field, Message: field + " can only contain letters and spaces"})
	}
	return errs
}

func validatePassword(password string, errs []FieldError) []FieldError {
	if len(password) < 8 {
		return append(errs, FieldError{Field: "password", Message: "Password must be at least 8 characters long"})
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return append(errs, FieldError{
			Field:   "password",
			Message: "Password must contain at least one uppercase letter, one lowercase letter, and one number",
		})
	}
	return errs
}

func validateSignup(req *SignupRequest) []FieldError {
	var errs []FieldError

	errs = validateName("firstName", req.FirstName, errs)
	errs = validateName("lastName", req.LastName, errs)

	if !isValidEmail(req.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "Please provide a valid email address"})
	}

	company := strings.TrimSpace(req.Company)
	if len(company) < 2 || len(company) > 100 {
		errs = append(errs, FieldError{Field: "company", Message: "Company name must be between 2 and 100 characters"})
	}

	errs = validatePassword(req.Password, errs)

	if req.ConfirmPassword != req.Password {
		errs = append(errs, FieldError{Field: "confirmPassword", Message: "Password confirmation does not match password"})
	}

	if !req.AgreeToTerms {
		errs = append(errs, FieldError{Field: "agreeToTerms", Message: "You must agree to the terms and conditions"})
	}

	return errs
}

func validateSignin(req *SigninRequest) []FieldError {
	var errs []FieldError
	if !isValidEmail(req.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "Please provide a valid email address"})
	}
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	}
	return errs
}

func validateVerifyOTP(req *VerifyOTPRequest) []FieldError {
	var errs []FieldError
	if !isValidEmail(req.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "Please provide a valid email address"})
	}
	if !otpRegex.MatchString(strings.TrimSpace(req.OTP)) {
		errs = append(errs, FieldError{Field: "otp", Message: "OTP must be a 6-digit number"})
	}
	return errs
}

func validateProfileUpdate(req *UpdateProfileRequest) []FieldError {
	var errs []FieldError
	if req.FirstName != nil {
		errs = validateName("firstName", *req.FirstName, errs)
	}
	if req.LastName != nil {
		errs = validateName("lastName", *req.LastName, errs)
	}
	if req.Company != nil {
		company := strings.TrimSpace(*req.Company)
		if len(company) < 2 || len(company) > 100 {
			errs = append(errs, FieldError{Field: "company", Message: "Company name must be between 2 and 100 characters"})
		}
	}
	return errs
}
