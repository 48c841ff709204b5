package configs

import (
	"github.com/rs/zerolog"
)

type passwordHasher interface {
	Hash(plain string) (string, error)
}

// ProvisionAdmin settles the admin credential at boot: a configured hash is
// used as is, otherwise ADMIN_PASSWORD is hashed and the plaintext dropped.
// With nothing configured admin login stays disabled.
func ProvisionAdmin(cfg *Config, hasher passwordHasher, log zerolog.Logger) error {
	if cfg.AdminUsername == "" || (cfg.AdminPasswordHash == "" && cfg.AdminPassword == "") {
		log.Warn().Msg("skip admin provisioning: missing ADMIN_USERNAME/ADMIN_PASSWORD_HASH, admin login disabled")
		cfg.AdminPasswordHash = ""
		cfg.AdminPassword = ""
		return nil
	}

	if cfg.AdminPasswordHash == "" {
		hash, err := hasher.Hash(cfg.AdminPassword)
		if err != nil {
			return err
		}
		cfg.AdminPasswordHash = hash
		log.Warn().Msg("ADMIN_PASSWORD is set in plaintext; prefer ADMIN_PASSWORD_HASH")
	}
	cfg.AdminPassword = ""

	log.Info().Str("admin", cfg.AdminUsername).Msg("admin principal provisioned")
	return nil
}
