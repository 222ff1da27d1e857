// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup, and fills in
// defaults for optional timing knobs.
//
// Returns nil if the configuration is valid, or a descriptive error
// otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.App.TokenSignKey == "" || cfg.App.TokenIssuer == "" || cfg.App.TokenDuration == 0 {
		return ErrInvalidAppConfigs
	}

	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.Workers.SweepInterval == 0 {
		cfg.Workers.SweepInterval = DefaultSweepInterval
	}
	if cfg.Workers.SessionIdleTimeout == 0 {
		cfg.Workers.SessionIdleTimeout = DefaultSessionIdleTimeout
	}
	if cfg.Share.AutoRevokeGrace == 0 {
		cfg.Share.AutoRevokeGrace = DefaultAutoRevokeGrace
	}

	return nil
}
