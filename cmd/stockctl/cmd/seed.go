package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vikasavnish/mandacarubroker/internal/db"
	"github.com/vikasavnish/mandacarubroker/internal/models"
	"github.com/vikasavnish/mandacarubroker/internal/repository"
	"github.com/vikasavnish/mandacarubroker/internal/services"
	"github.com/vikasavnish/mandacarubroker/internal/validation"
)

// referenceStocks are inserted by seed
var referenceStocks = []models.StockRequest{
	{Symbol: "RPM3", CompanyName: "3R PETROLEUM", Price: 90.45},
	{Symbol: "ALL3", CompanyName: "ALLOS", Price: 121.60},
	{Symbol: "AZL4", CompanyName: "AZUL", Price: 230.20},
}

var migrateFirst bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the reference stocks, skipping symbols already present",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&migrateFirst, "migrate", false, "migrate the schema before seeding")
}

func runSeed(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	if migrateFirst {
		if err := db.Migrate(database); err != nil {
			return err
		}
	}

	validate, err := validation.Compile(cfg.Validation.Rules)
	if err != nil {
		return err
	}

	repo := repository.NewStockRepository(database)
	created, err := seed(cmd.Context(), repo, services.NewStockService(repo, validate, nil), referenceStocks)
	if err != nil {
		return err
	}

	log.Info().Int("created", created).Int("total", len(referenceStocks)).Msg("Seed finished")
	return nil
}

type symbolFinder interface {
	FindBySymbol(ctx context.Context, symbol string) (models.Stock, bool, error)
}

// seed creates every request whose symbol is not stored yet and returns how
// many were created
func seed(ctx context.Context, finder symbolFinder, service *services.StockService, stocks []models.StockRequest) (int, error) {
	created := 0
	for _, req := range stocks {
		_, exists, err := finder.FindBySymbol(ctx, req.Symbol)
		if err != nil {
			return created, err
		}
		if exists {
			log.Debug().Str("symbol", req.Symbol).Msg("Stock already present, skipping")
			continue
		}

		if _, err := service.Create(ctx, req); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
