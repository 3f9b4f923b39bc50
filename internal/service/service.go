package service

import (
	"github.com/redis/go-redis/v9"

	"vitrina-autos/internal/config"
	"vitrina-autos/internal/repository"
)

type Services struct {
	Auth  AuthService
	Media MediaService
	Email EmailService
	Audit AuditService
}

func NewServices(repos *repository.Repositories, redisClient *redis.Client, store MediaStore, processor MediaProcessor, cfg *config.Config) *Services {
	emailService := NewEmailService(cfg)
	authService := NewAuthService(repos.User, repos.Session, emailService, cfg)
	mediaService := NewMediaService(repos.Media, repos.Vehicle, repos.AuditLog, store, processor, redisClient, cfg.MaxUploadMB)
	auditService := NewAuditService(repos.AuditLog)

	return &Services{
		Auth:  authService,
		Media: mediaService,
		Email: emailService,
		Audit: auditService,
	}
}
