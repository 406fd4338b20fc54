package main

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"farm-loan-ledger/internal/config"
	infradb "farm-loan-ledger/internal/infrastructure/db"
	"farm-loan-ledger/pkg/logger"
)

var Version = "dev"

func main() {
	root := newRootCmd(func(envFile string) (*gorm.DB, *config.Config, error) {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		cfg := config.Load(files...)
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
		db, err := infradb.OpenGorm(cfg.DBDriver, cfg.DSN(), cfg.DBLogLevel)
		if err != nil {
			return nil, nil, err
		}
		return db, cfg, nil
	})

	logger.Init("development")
	defer logger.Sync()

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
