package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/kpiadvisor/internal/model"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the built-in SaaS churn example",
	Long:  "Asks how to reduce churn for an example 1000-person SaaS company and prints the answer.",
	RunE:  runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

var (
	demoContext = model.BusinessContext{
		"industry":     "SaaS",
		"company_size": "1000 empleados",
		"main_product": "Plataforma de gestión de proyectos",
	}
	demoKPIs = model.KPISnapshot{
		"churn_rate":            "15%",
		"target_churn_rate":     "5%",
		"current_mrr":           "$100,000",
		"target_mrr":            "$150,000",
		"customer_satisfaction": "7.2/10",
	}
	demoQuery = "¿Cómo puedo reducir el churn rate de nuestros clientes?"
)

func runDemo(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	recorder, err := setupRecorder(cfg, logger)
	if err != nil {
		logger.Error("failed to set up metrics", "error", err)
		os.Exit(1)
	}

	advisor, closeMemory, err := setupAdvisor(cfg, logger, recorder)
	if err != nil {
		logger.Error("failed to set up advisor", "error", err)
		os.Exit(1)
	}
	defer closeMemory()

	ctx, stop := signalContext()
	defer stop()

	response := advisor.ProcessQuery(ctx, demoQuery, demoContext, demoKPIs)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Respuesta del asistente:")
	fmt.Fprintln(out, response)
	return nil
}
