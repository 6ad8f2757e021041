package worker

import (
	"github.com/barcastaff/cTAKES-mCODE/logger"
	"github.com/barcastaff/cTAKES-mCODE/rmq"
	"github.com/barcastaff/cTAKES-mCODE/s3client"
	"github.com/barcastaff/cTAKES-mCODE/tasks"
	"github.com/barcastaff/cTAKES-mCODE/types"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Extractor turns raw XMI annotation content into the extracted field table.
type Extractor func(annotation []byte) (types.FieldTable, error)

type Config struct {
	TaskMaxRetries int `envconfig:"MCODE_COMN_RETRY_TASK_COUNT_MAX" default:"3"`
}

type Worker struct {
	config      Config
	redis       redisTransactions
	s3          s3Transactions
	rmq         rmqTransactions
	mcodeLogger *zerolog.Logger
	extract     Extractor
	fingerprint string
}

// New creates a worker consuming note tasks from the task queue. The
// fingerprint identifies the extraction settings and keys the results cache
// together with the annotation content.
func New(extract Extractor, fingerprint string) (*Worker, error) {
	mcodeLogger := logger.NewLogger("Worker")

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		mcodeLogger.Error().Err(err).Msg("Could not read config")
		return nil, err
	}

	worker := Worker{
		config:      config,
		mcodeLogger: &mcodeLogger,
		extract:     extract,
		fingerprint: fingerprint,
	}
	if err := worker.refreshRMQClient(); err != nil {
		mcodeLogger.Error().Err(err).Msg("Could not create RMQ client")
		return nil, err
	}
	s3Client, err := s3client.New()
	if err != nil {
		mcodeLogger.Error().Err(err).Msg("Could not create S3 client")
		return nil, err
	}
	worker.s3 = &s3ClientWrapper{s3Client}
	if err := worker.refreshRedisClients(); err != nil {
		mcodeLogger.Error().Err(err).Msg("Could not create Redis client")
		return nil, err
	}
	return &worker, nil
}

// StartWorker consumes deliveries until a connection refresh fails. Notes
// are processed one at a time in delivery order.
func (worker *Worker) StartWorker() error {
	defer worker.Close()
	for {
		select {
		case delivery, ok := <-worker.rmq.getDeliveriesCh():
			if ok {
				worker.processMessage(&delivery)
				continue
			}
			worker.mcodeLogger.Error().Msg("Deliveries channel closed, trying to refresh RMQ client")
			if err := worker.refreshRMQClient(); err != nil {
				return fmt.Errorf(
					"rmq deliveries channel has been closed and refresh returned error: %w",
					err,
				)
			}
		case rmqErr := <-worker.rmq.getRespChanErrorsCh():
			if rmqErr == nil {
				continue
			}
			worker.mcodeLogger.Err(rmqErr).Msg("Response connection received error, trying to refresh RMQ client")
			if err := worker.refreshRMQClient(); err != nil {
				return fmt.Errorf(
					"response connection received error and refresh failed with: %w",
					err,
				)
			}
		case rmqErr := <-worker.rmq.getReqChanErrorsCh():
			if rmqErr == nil {
				continue
			}
			worker.mcodeLogger.Err(rmqErr).Msg("Request connection received error, trying to refresh RMQ client")
			if err := worker.refreshRMQClient(); err != nil {
				return fmt.Errorf(
					"request connection received error and refresh failed with: %w",
					err,
				)
			}
		}
	}
}

func (worker *Worker) Close() {
	worker.redis.close()
	worker.rmq.close()
}

func (worker *Worker) refreshRedisClients() error {
	worker.mcodeLogger.Info().Msg("Refreshing Redis client")
	if oldClient := worker.redis; oldClient != nil {
		defer oldClient.close()
	}
	tasksClient, err := tasks.NewClient()
	if err != nil {
		worker.mcodeLogger.Err(err).Msg("Failed to refresh Redis client")
		return err
	}
	worker.redis = &redisClientWrapper{&tasksClient}
	worker.mcodeLogger.Info().Msg("Refreshed Redis client")
	return nil
}

func (worker *Worker) refreshRMQClient() error {
	worker.mcodeLogger.Info().Msg("Refreshing RMQ client")
	if oldClient := worker.rmq; oldClient != nil {
		defer oldClient.close()
	}
	rmqClient, err := rmq.NewClient()
	if err != nil {
		worker.mcodeLogger.Err(err).Msg("Failed to refresh RMQ client")
		return err
	}
	worker.rmq = &rmqClientWrapper{rmqClient}
	worker.mcodeLogger.Info().Msg("Refreshed RMQ client")
	return nil
}
