package main

import (
	"fmt"
	"log"
	"os"

	"github.com/membervault/api/app"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "membervault",
	Short: "MemberVault membership management API",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the REST API server",
	Run: func(cmd *cobra.Command, args []string) {
		configName, _ := cmd.Flags().GetString("config-name")
		configPath, _ := cmd.Flags().GetString("config-path")

		restApp, err := app.NewRestApp(configName, configPath)
		if err != nil {
			log.Fatalf("failed to init rest app: %v", err)
		}
		restApp.Run()
	},
}

func init() {
	serveCmd.Flags().String("config-name", "", "config file name without extension")
	serveCmd.Flags().String("config-path", "", "directory holding the config file")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
