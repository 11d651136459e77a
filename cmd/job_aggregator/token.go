package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-aggregator/internal/server"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an admin JWT for the maintenance endpoints",
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not configured")
	}

	svc := server.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTExpirationHours)*time.Hour)
	token, err := svc.GenerateAdminToken()
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
