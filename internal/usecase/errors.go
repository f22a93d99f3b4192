package usecase

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrInternal            = errors.New("internal error")
	ErrInvalidInput        = errors.New("invalid input")

	ErrRoleNotFound      = errors.New("role not found")
	ErrRoleNotScorable   = errors.New("role has no usable requirements")
	ErrCatalogEmpty      = errors.New("skill catalog is empty")
	ErrAnalysisNotFound  = errors.New("analysis not found")
	ErrTaskNotFound      = errors.New("learning task not found")
	ErrResumeUnsupported = errors.New("unsupported resume type")
	ErrResumeEmpty       = errors.New("resume is empty")
	ErrResumeTooLarge    = errors.New("resume too large")
)
