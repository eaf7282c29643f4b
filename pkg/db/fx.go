package db

import "go.uber.org/fx"

// Module provides the shared connection Provider.
var Module = fx.Module("db",
	fx.Provide(NewProvider),
)
