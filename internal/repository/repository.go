package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	User     UserRepository
	Session  SessionRepository
	Vehicle  VehicleRepository
	Media    MediaRepository
	AuditLog AuditLogRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Session:  NewSessionRepository(db),
		Vehicle:  NewVehicleRepository(db),
		Media:    NewMediaRepository(db),
		AuditLog: NewAuditLogRepository(db),
	}
}
