//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"dupescan/internal"
	"dupescan/internal/media"
	"dupescan/internal/models"
	"dupescan/internal/providers"
	"dupescan/internal/scan"
	"dupescan/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewCacheProvider,
		providers.NewMetricsProvider,

		models.NewCatalog,
		scan.NewZstdCompressor,
		scan.NewCatalogFile,
		scan.NewScheduler,
		media.NewFFTools,
		scan.NewEngine,
		internal.NewApp,
	)

	return nil, nil
}
