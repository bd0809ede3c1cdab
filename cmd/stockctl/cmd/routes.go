package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vikasavnish/mandacarubroker/internal/api"
	"github.com/vikasavnish/mandacarubroker/internal/config"
	"github.com/vikasavnish/mandacarubroker/internal/repository"
	"github.com/vikasavnish/mandacarubroker/internal/services"
	"github.com/vikasavnish/mandacarubroker/internal/websocket"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the HTTP routes served by the server",
	RunE:  runRoutes,
}

func runRoutes(cmd *cobra.Command, args []string) error {
	// Routes do not depend on storage, so an in-memory service is enough
	router := api.SetupRouter(api.Dependencies{
		Hub:          websocket.NewHub(),
		StockService: services.NewStockService(repository.NewMemoryStockRepository(), nil, nil),
		Version:      config.Version,
	})
	return api.PrintRoutes(cmd.OutOrStdout(), router)
}
