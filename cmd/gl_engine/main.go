package main

import (
	"os"
)

// @title GL Engine API
// @version 1.0
// @description Double-entry general ledger: chart of accounts, vouchers, balances and financial statements.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
