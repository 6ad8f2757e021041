package main

import (
	"github.com/barcastaff/cTAKES-mCODE/api"
	"github.com/barcastaff/cTAKES-mCODE/batch"
	"github.com/barcastaff/cTAKES-mCODE/llm"
	"github.com/barcastaff/cTAKES-mCODE/logger"
	"github.com/barcastaff/cTAKES-mCODE/mcode"
	"github.com/barcastaff/cTAKES-mCODE/types"
	"github.com/barcastaff/cTAKES-mCODE/worker"
	"github.com/barcastaff/cTAKES-mCODE/xmi"
	"flag"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"net/http"
	"os"
	"time"
)

type Config struct {
	ConfigPath    string `envconfig:"MCODE_CONFIG_PATH" default:"config.yaml"`
	RestAPIActive bool   `envconfig:"MCODE_REST_API_ACTIVE" default:"false"`
	RestAPIPort   string `envconfig:"MCODE_REST_API_PORT" default:"10000"`
}

func main() {
	envErr := godotenv.Load()
	logger.SetupLogging()
	mcodeLogger := logger.NewLogger("Main")
	fatalErrLogger := mcodeLogger.Fatal().Caller()
	if envErr != nil {
		mcodeLogger.Debug().Msg("No .env file found, relying on process environment")
	}

	configPath := flag.String("config", "", "path to the configuration file")
	input := flag.String("input", "", "clinical note file or directory to process")
	workerMode := flag.Bool("worker", false, "a bool")
	flag.Parse()

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}
	if *configPath != "" {
		config.ConfigPath = *configPath
	}

	cfg, err := types.LoadConfig(config.ConfigPath)
	if err != nil {
		fatalErrLogger.Err(err).Str("path", config.ConfigPath).Msg("Failed to load configuration")
		os.Exit(1)
	}

	var completer mcode.Completer
	if cfg.LLM.EnableDisambiguation {
		completer = llm.NewClient(cfg.LLM.Ollama)
	}
	engine := mcode.NewEngine(mcode.Options{
		EnableDisambiguation: cfg.LLM.EnableDisambiguation,
		SentenceWindow:       cfg.LLM.SentenceWindow,
	}, completer)
	extract := func(annotation []byte) (types.FieldTable, error) {
		doc, err := xmi.Parse(annotation)
		if err != nil {
			return nil, err
		}
		return engine.Extract(doc), nil
	}

	if config.RestAPIActive {
		go func() {
			mcodeLogger.Info().Msg("Starting API service")
			apiRequest := &api.Request{
				Extract: extract,
			}
			http.HandleFunc("/", apiRequest.ProcessData)
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			mcodeLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, nil)
			fatalErrLogger.Err(err).Msg("REST API stopped with error")
		}()
	}

	if *workerMode {
		fingerprint := fmt.Sprintf(
			"disambiguation=%t;window=%d;model=%s",
			cfg.LLM.EnableDisambiguation,
			cfg.LLM.SentenceWindow,
			cfg.LLM.Ollama.Model,
		)
		mcodeLogger.Info().Msg("Start mCODE Worker")
		for {
			rmqWorker, err := worker.New(extract, fingerprint)
			if err != nil {
				mcodeLogger.Fatal().Err(err).Msg("Could not initialize RMQ worker")
				os.Exit(1)
			}
			err = rmqWorker.StartWorker()
			if err != nil {
				mcodeLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
				time.Sleep(5 * time.Second)
			}
		}
	}

	if err := cfg.LoadUMLSKey(); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to load UMLS API key")
		os.Exit(1)
	}
	inputPath := *input
	if inputPath == "" {
		inputPath = cfg.Paths.InputDir
	}
	if _, err := os.Stat(inputPath); err != nil {
		fatalErrLogger.Err(err).Str("path", inputPath).Msg("Input path is not accessible")
		os.Exit(1)
	}

	driver := batch.NewDriver(cfg)
	processed, err := driver.Run(inputPath)
	if err != nil {
		mcodeLogger.Fatal().Err(err).Int("processed", processed).Msg("Batch processing failed")
		os.Exit(1)
	}
	mcodeLogger.Info().Int("processed", processed).Msg("Batch processing completed")
}
