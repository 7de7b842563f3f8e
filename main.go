package main

import (
	"flag"
	"os"

	"github.com/avstrong/discovertours/internal/app"
	"github.com/avstrong/discovertours/internal/config"
	"github.com/avstrong/discovertours/internal/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	conf, err := config.New(*configPath)
	if err != nil {
		logger.New(os.Stderr, "error").LogErrorf("Failed to load config: %v", err.Error())
		os.Exit(1)
	}

	l := logger.New(os.Stdout, conf.Log.Level)

	var exitCode int

	if err := app.Run(conf, l); err != nil {
		l.LogErrorf("Failed to run app: %v", err.Error())

		exitCode = 1
	}

	os.Exit(exitCode)
}
