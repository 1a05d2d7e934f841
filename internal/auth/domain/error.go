package domain

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidPassword     = errors.New("invalid_password")
	ErrInvalidFullName     = errors.New("invalid_full_name")
	ErrInvalidToken        = errors.New("invalid_token")
	ErrInvalidRefreshToken = errors.New("invalid_refresh_token")
	ErrUserNotFound        = errors.New("not_found")
	ErrUserExists          = errors.New("user_exists")
	ErrUserInactive        = errors.New("user_inactive")
)
