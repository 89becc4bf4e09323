/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/carbnb/apiserver/config"
	"github.com/carbnb/apiserver/internal/notify"
	"github.com/carbnb/apiserver/internal/server"
	"github.com/spf13/cobra"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Runs the email notification worker",
	Long: `Runs the email notification worker. It consumes queued
notification events and delivers them over SMTP. Usage:

	carbnb worker
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()

		queue, err := server.OpenMQ(cmd.Context(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start worker: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = queue.Close()
		}()

		mailer := notify.NewSMTPMailer(cfg.SMTP)
		worker := notify.NewWorker(queue, mailer)
		if err := worker.Run(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "worker error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
