package jwtoken

import (
	authmw "tome/pkg/platform/middleware/auth"
)

// MiddlewareAdapter exposes the Service as the validator interface the auth
// middleware consumes.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*authmw.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.Claims{
		UserID: claims.UserID,
		JTI:    claims.ID,
	}, nil
}
