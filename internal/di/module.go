package di

import (
	"go.uber.org/fx"

	"github.com/tgreer/familysite/internal/app"
	"github.com/tgreer/familysite/internal/config"
	"github.com/tgreer/familysite/internal/logger"
	"github.com/tgreer/familysite/internal/metrics"
	"github.com/tgreer/familysite/internal/pkg/auth"
	"github.com/tgreer/familysite/internal/pkg/webhooksig"
	"github.com/tgreer/familysite/internal/server/http/handlers"
	"github.com/tgreer/familysite/internal/server/http/router"
	"github.com/tgreer/familysite/internal/storage/postgres"
	"github.com/tgreer/familysite/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		webhooksig.Module,
		metrics.Module,
		postgres.Module,
		usecase.Module,
		fx.Provide(
			func(f *app.PaymentsFacade) handlers.PaymentsFacade { return f },
			func(v *webhooksig.Verifier) handlers.SignatureVerifier { return v },
			func(r *metrics.Recorder) usecase.MetricsRecorder { return r },
			func(s *postgres.Storage) router.HealthChecker { return s },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
