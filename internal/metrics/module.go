package metrics

import "go.uber.org/fx"

// Module provides the metrics recorder via fx.
var Module = fx.Options(
	fx.Provide(NewRecorder),
)
