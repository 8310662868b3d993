package main

import (
	"github.com/spf13/cobra"

	"leadgen/models"
	"leadgen/services"
	"leadgen/storage"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize every lead stored in PostgreSQL",
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	pg, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		return err
	}
	defer pg.Close()

	leads, err := pg.FetchAll()
	if err != nil {
		return err
	}

	insights := services.NewInsightService(logger)
	report := models.NewBatchReport("stored")
	report.References = len(leads)
	insights.Print(cmd.OutOrStdout(), insights.Summarize(report, leads))
	return nil
}
