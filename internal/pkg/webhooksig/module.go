package webhooksig

import (
	"go.uber.org/fx"

	"github.com/tgreer/familysite/internal/config"
)

// Module provides the webhook signature verifier via fx.
var Module = fx.Options(
	fx.Provide(newVerifier),
)

type verifierParams struct {
	fx.In

	Config *config.Config
}

func newVerifier(p verifierParams) *Verifier {
	return NewVerifier(p.Config.WebhookSecret, p.Config.NotificationURL)
}
