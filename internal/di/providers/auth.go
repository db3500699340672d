package providers

import (
	"encoding/hex"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/readtrack/readtrack-server/internal/auth"
	"github.com/readtrack/readtrack-server/internal/clock"
	"github.com/readtrack/readtrack-server/internal/config"
	"github.com/readtrack/readtrack-server/internal/logger"
)

// ProvideTokenService builds the PASETO token service. The symmetric key
// lives next to the database and is created on first start, so tokens stay
// valid across restarts.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	clk := do.MustInvoke[clock.Clock](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.Path)
	if err != nil {
		return nil, fmt.Errorf("load token key: %w", err)
	}

	tokens, err := auth.NewTokenService(hex.EncodeToString(key), cfg.Auth.AccessTokenDuration, clk)
	if err != nil {
		return nil, err
	}

	log.Info("Token service ready", "token_lifetime", cfg.Auth.AccessTokenDuration)
	return tokens, nil
}
