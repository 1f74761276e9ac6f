package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/procboost/boostd/internal/boost"
	"github.com/procboost/boostd/internal/history"
	"github.com/procboost/boostd/internal/logger"
	"github.com/procboost/boostd/internal/monitor"
	"github.com/procboost/boostd/internal/priority"
	"github.com/procboost/boostd/internal/server"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "boostd",
	Short: "boostd watches processes and boosts the busy ones",
	Long: `boostd monitors local processes, scores each one by resource
pressure, and can automatically raise the scheduling priority of processes
whose score crosses a threshold. Results stream to consumers over HTTP.`,
	RunE: runDaemon,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(scanCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.boostd.yaml)")

	rootCmd.Flags().Duration("interval", monitor.DefaultInterval, "monitoring tick interval")
	rootCmd.Flags().String("listen", ":8080", "HTTP listen address")
	rootCmd.Flags().Bool("auto-boost", false, "enable auto-boost at startup")
	rootCmd.Flags().Float64("threshold", 50, "auto-boost score threshold")
	rootCmd.Flags().String("level", "high", "auto-boost priority level")
	rootCmd.Flags().Int("action-history", history.DefaultActionCapacity, "action log capacity")
	rootCmd.Flags().Int("stat-history", history.DefaultStatCapacity, "system-stat sample capacity")

	viper.BindPFlag("interval", rootCmd.Flags().Lookup("interval"))
	viper.BindPFlag("listen", rootCmd.Flags().Lookup("listen"))
	viper.BindPFlag("auto_boost", rootCmd.Flags().Lookup("auto-boost"))
	viper.BindPFlag("threshold", rootCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("level", rootCmd.Flags().Lookup("level"))
	viper.BindPFlag("action_history", rootCmd.Flags().Lookup("action-history"))
	viper.BindPFlag("stat_history", rootCmd.Flags().Lookup("stat-history"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".boostd")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	logger.Initialize()

	level, err := priority.ParseLevel(viper.GetString("level"))
	if err != nil {
		return err
	}
	cfg := boost.Config{
		Enabled:   viper.GetBool("auto_boost"),
		Threshold: viper.GetFloat64("threshold"),
		Level:     level,
	}

	hub := server.NewHub()
	engine := monitor.NewEngine(monitor.Options{
		Interval: viper.GetDuration("interval"),
		Config:   monitor.NewConfigStore(cfg),
		History:  history.NewStore(viper.GetInt("action_history"), viper.GetInt("stat_history")),
		Sink:     hub,
	})

	engine.Start()
	defer engine.Stop()

	srv := server.New(engine, hub)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		logger.Info("shutting down")
		srv.Close()
	}()

	if err := srv.Start(viper.GetString("listen")); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
