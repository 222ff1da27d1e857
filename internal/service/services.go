package service

import (
	"github.com/MKhiriev/go-vault-trust/internal/bus"
	"github.com/MKhiriev/go-vault-trust/internal/config"
	"github.com/MKhiriev/go-vault-trust/internal/crypto"
	"github.com/MKhiriev/go-vault-trust/internal/logger"
	"github.com/MKhiriev/go-vault-trust/internal/store"
)

type Services struct {
	AuthService      AuthService
	VaultService     VaultService
	ShareService     ShareService
	GrantService     GrantService
	WillService      WillService
	EmergencyService EmergencyService
}

func NewServices(repos *store.Repositories, revocationBus bus.RevocationBus, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	keychain := crypto.NewKeyChainService()

	return &Services{
		AuthService:      NewAuthService(repos.UserRepository, cfg.App, logger),
		VaultService:     NewVaultService(repos.VaultRepository, logger),
		ShareService:     NewShareService(repos.ShareRepository, repos.UserRepository, logger),
		GrantService:     NewGrantService(repos, keychain, revocationBus, cfg, logger),
		WillService:      NewWillService(repos.WillRepository, repos.UserRepository, repos.AuditRepository, logger),
		EmergencyService: NewEmergencyService(repos, logger),
	}
}
