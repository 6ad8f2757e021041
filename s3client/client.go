package s3client

import (
	"github.com/barcastaff/cTAKES-mCODE/logger"
	"bytes"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"sync"
)

type Client struct {
	mu         sync.Mutex
	sess       *session.Session
	bucketName string
	region     string
	env        EnvironmentConfig
}

var clientLogger = logger.NewLogger("S3Client")
var sdkLogger = logger.NewLogger("S3-SDK")

func New() (*Client, error) {
	errLogger := clientLogger.With().Caller().Logger()
	env, err := readEnvironment(&errLogger)
	if err != nil {
		clientLogger.Err(err).Msg("Failed to get proper variables from environment")
		return nil, err
	}
	client := Client{
		bucketName: env.BucketName,
		region:     env.Region,
		env:        env,
	}
	sess, err := client.acquireNewSession()
	if err != nil {
		return nil, err
	}
	client.sess = sess
	return &client, nil
}

func (client *Client) Upload(data []byte, key string) (*s3manager.UploadOutput, error) {
	params := &s3manager.UploadInput{
		Bucket: &client.bucketName,
		Key:    &key,
		Body:   bytes.NewReader(data),
	}
	output, err := client.upload(client.session(), params)
	if err == nil {
		return output, nil
	}
	sess, err := client.refreshSession(err)
	if err != nil {
		return nil, err
	}
	return client.upload(sess, params)
}

func (client *Client) Download(key string) ([]byte, error) {
	params := &s3.GetObjectInput{
		Bucket: &client.bucketName,
		Key:    &key,
	}
	res, err := client.download(client.session(), params)
	if err == nil {
		return res, nil
	}
	sess, err := client.refreshSession(err)
	if err != nil {
		return nil, err
	}
	return client.download(sess, params)
}

func (client *Client) upload(sess *session.Session, params *s3manager.UploadInput) (*s3manager.UploadOutput, error) {
	mcodeLogger := clientLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()

	sdkLog := sdkLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()

	uploader := s3manager.NewUploader(sess.Copy(&aws.Config{Logger: getLogger(sdkLog)}))
	mcodeLogger.Debug().Msg("Uploading the file")
	return uploader.Upload(params)
}

func (client *Client) download(sess *session.Session, params *s3.GetObjectInput) ([]byte, error) {
	mcodeLogger := clientLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()

	sdkLog := sdkLogger.With().
		Str("key", *params.Key).
		Str("bucket", *params.Bucket).Logger()

	downloader := s3manager.NewDownloader(sess.Copy(&aws.Config{Logger: getLogger(sdkLog)}))

	buf := aws.NewWriteAtBuffer([]byte{})

	mcodeLogger.Debug().Msg("Downloading file")

	size, err := downloader.Download(buf, params)
	if err != nil {
		mcodeLogger.Error().Err(err).Msg("Failed to download file")
		return nil, err
	}
	mcodeLogger.Debug().Msgf("Downloaded %v bytes", size)
	return buf.Bytes(), nil
}

func (client *Client) session() *session.Session {
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.sess
}

func (client *Client) refreshSession(cause error) (*session.Session, error) {
	clientLogger.Error().Err(cause).Msg("Caught error while using S3 session, trying to refresh it")
	client.mu.Lock()
	defer client.mu.Unlock()
	sess, err := client.acquireNewSession()
	if err != nil {
		clientLogger.Error().Err(err).Msg("Caught error while refreshing S3 session")
		return nil, err
	}
	client.sess = sess
	clientLogger.Info().Msg("Successfully refreshed session")
	return sess, nil
}

func (client *Client) createEC2Config() *aws.Config {
	return &aws.Config{
		Region:     aws.String(client.region),
		MaxRetries: aws.Int(4),
		LogLevel:   aws.LogLevel(aws.LogDebug),
	}
}

func (client *Client) createEnvConfig() (*aws.Config, error) {
	creds := credentials.NewStaticCredentials(
		client.env.AccessKeyID,
		client.env.AccessKey,
		"")
	_, err := creds.Get()

	if err != nil {
		clientLogger.Error().Err(err).Msg("Error with credentials from environment")
		return nil, err
	}
	cfg := aws.NewConfig().
		WithRegion(*aws.String(client.region)).
		WithMaxRetries(*aws.Int(4)).
		WithCredentials(creds).
		WithLogLevel(aws.LogDebug)

	inDevEnv := client.env.MCodeEnv == "dev"
	if inDevEnv && len(client.env.AwsEndpoint) > 0 {
		cfg = cfg.WithEndpoint(*aws.String(client.env.AwsEndpoint)).
			WithS3ForcePathStyle(true)
	}
	return cfg, nil
}

func (client *Client) acquireNewSession() (*session.Session, error) {
	sess, err := session.NewSession(
		client.createEC2Config(),
	)
	if err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, err
	}
	_, err = sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{})
	if err == nil {
		clientLogger.Info().Msg("S3 session successfully initialized using EC2")
		return sess, nil
	}
	clientLogger.Info().Msg("Could not initialize S3 session using EC2, trying env credentials")
	envConfig, err := client.createEnvConfig()
	if err != nil {
		return nil, err
	}
	sess, err = session.NewSession(envConfig)
	if err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, err
	}
	_, err = sts.New(sess).GetCallerIdentity(&sts.GetCallerIdentityInput{})
	if err != nil {
		clientLogger.Error().Err(err).Msg("Could not initialize S3 session")
		return nil, errors.New("could not initialize S3 session")
	}
	clientLogger.Info().Msg("S3 session successfully initialized using env credentials")
	return sess, nil
}

type EnvironmentConfig struct {
	BucketName  string `envconfig:"MCODE_COMN_STORAGE_CONTAINER_NAME" required:"true"`
	MCodeEnv    string `envconfig:"MCODE_ENV" required:"true"`
	Region      string `envconfig:"MCODE_COMN_AWS_REGION_NAME" required:"true"`
	AwsEndpoint string `envconfig:"MCODE_COMN_AWS_ENDPOINT_URL" default:""`
	AccessKeyID string `envconfig:"MCODE_COMN_AWS_ACCESS_ID" default:""`
	AccessKey   string `envconfig:"MCODE_COMN_AWS_ACCESS_KEY" default:""`
}

func readEnvironment(errLogger *zerolog.Logger) (EnvironmentConfig, error) {
	var config EnvironmentConfig
	err := envconfig.Process("", &config)
	if err != nil {
		errLogger.Err(err).Msg("Got error while processing environment")
		return config, err
	}
	return config, nil
}

type s3Logger struct {
	mcodeLogger zerolog.Logger
}

func getLogger(mcodeLogger zerolog.Logger) *s3Logger {
	return &s3Logger{
		mcodeLogger,
	}
}

func (logger *s3Logger) Log(v ...interface{}) {
	//nolint
	logger.mcodeLogger.Debug().Msg(fmt.Sprint(v...))
}
