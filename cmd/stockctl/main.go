// Command stockctl runs operator tasks against the stock database.
//
// Usage:
//
//	go run ./cmd/stockctl migrate
//	go run ./cmd/stockctl seed
//	go run ./cmd/stockctl routes
package main

import (
	"os"

	"github.com/vikasavnish/mandacarubroker/cmd/stockctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
