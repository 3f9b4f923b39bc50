package handler

import "vitrina-autos/internal/service"

type Handlers struct {
	Auth  *AuthHandler
	Media *MediaHandler
	Audit *AuditHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:  NewAuthHandler(services.Auth),
		Media: NewMediaHandler(services.Media),
		Audit: NewAuditHandler(services.Audit),
	}
}
