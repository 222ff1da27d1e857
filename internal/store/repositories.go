package store

import "github.com/MKhiriev/go-vault-trust/internal/logger"

// Repositories bundles every persistence interface the service layer needs.
type Repositories struct {
	UserRepository      UserRepository
	VaultRepository     VaultRepository
	ShareRepository     ShareRepository
	GrantRepository     GrantRepository
	SessionRepository   SessionRepository
	AuditRepository     AuditRepository
	WillRepository      WillRepository
	EmergencyRepository EmergencyRepository
}

// NewRepositories constructs all PostgreSQL-backed repositories on top of a
// single shared connection.
func NewRepositories(db *DB, log *logger.Logger) *Repositories {
	return &Repositories{
		UserRepository:      NewUserRepository(db, log),
		VaultRepository:     NewVaultRepository(db, log),
		ShareRepository:     NewShareRepository(db, log),
		GrantRepository:     NewGrantRepository(db, log),
		SessionRepository:   NewSessionRepository(db, log),
		AuditRepository:     NewAuditRepository(db, log),
		WillRepository:      NewWillRepository(db, log),
		EmergencyRepository: NewEmergencyRepository(db, log),
	}
}
