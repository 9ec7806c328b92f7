package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	pkg "git.hoarder.pics/hoarder/gateway/pkg/internal"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/http"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/services"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/upstream"
	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString(" _   _                     _\n| | | | ___   __ _ _ __ __| | ___ _ __\n| |_| |/ _ \\ / _` | '__/ _` |/ _ \\ '__|\n|  _  | (_) | (_| | | | (_| |  __/ |\n|_| |_|\\___/ \\__,_|_|  \\__,_|\\___|_|"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Hoarder Gateway"), pkg.AppVersion)
	fmt.Printf("The browser-facing gateway of the Hoarder catalogue\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")
	viper.BindEnv("api_url", "API_URL")
	viper.BindEnv("public_url", "PUBLIC_URL")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Connect to the backend and build the cache
	if err := upstream.Initialize(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when wiring the backend upstream.")
	}

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 15m", services.DoCacheWarmup)
	quartz.Start()

	// Server
	go http.NewServer().Listen()

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	quartz.Stop()
}
