package worker

import (
	"github.com/barcastaff/cTAKES-mCODE/tasks"
	"github.com/barcastaff/cTAKES-mCODE/types"
	"errors"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type failingMethod struct {
	fail bool
}

type withValue struct {
	fail          bool
	returnedValue interface{}
}

type extractorMock struct {
	extract Extractor
	config  extractorMockConfig
	calls   extractorCall
}

type extractorMockConfig struct {
	fail   bool
	result types.FieldTable
}

type extractorCall struct {
	extract bool
}

type redisMock struct {
	config redisMockConfig
	calls  redisMockCalls
}

type redisMockConfig struct {
	getNoteTask           withValue
	getJobTask            withValue
	getCachedResults      withValue
	cacheResults          failingMethod
	onTaskCancelled       failingMethod
	onTaskStarted         failingMethod
	onTaskExceededRetries failingMethod
	onTaskFailedWithError failingMethod
	onTaskComplete        failingMethod
}

type redisMockCalls struct {
	getNoteTask           bool
	getJobTask            bool
	getCachedResults      bool
	cacheResults          bool
	onTaskCancelled       bool
	onTaskStarted         bool
	onTaskExceededRetries bool
	onTaskFailedWithError bool
	onTaskComplete        bool
}

type rmqMock struct {
	config rmqMockConfig
	calls  rmqMockCalls
}

type rmqMockConfig struct {
	sendCompletion      failingMethod
	acknowledgeDelivery failingMethod
}

type rmqMockCalls struct {
	sendCompletion      bool
	acknowledgeDelivery bool
	rejectDelivery      bool
}

type s3Mock struct {
	config s3MockConfig
	calls  s3MockCalls
}

type s3MockConfig struct {
	getAnnotationData withValue
	saveResults       failingMethod
}

type s3MockCalls struct {
	getAnnotationData bool
	saveResults       bool
}

func (mock *rmqMock) close() {}

func (mock *redisMock) close() {}

func getExtractorMock(config extractorMockConfig) *extractorMock {
	var mock extractorMock
	mock.config = config
	if config.fail {
		mock.extract = func(annotation []byte) (types.FieldTable, error) {
			mock.calls.extract = true
			return nil, errors.New("extraction failed")
		}
	} else {
		mock.extract = func(annotation []byte) (types.FieldTable, error) {
			mock.calls.extract = true
			return mock.config.result, nil
		}
	}
	return &mock
}

func (mock *redisMock) getNoteTask(redisKey string) (*tasks.NoteTask, error) {
	mock.calls.getNoteTask = true
	if mock.config.getNoteTask.fail {
		return nil, errors.New("failed to get note task")
	}
	switch mock.config.getNoteTask.returnedValue.(type) {
	case tasks.NoteTask:
		task := mock.config.getNoteTask.returnedValue.(tasks.NoteTask)
		return &task, nil
	default:
		return &tasks.NoteTask{}, nil
	}
}

func (mock *redisMock) getJobTask(task *Task) (*tasks.JobTask, error) {
	mock.calls.getJobTask = true
	if mock.config.getJobTask.fail {
		return nil, errors.New("failed to get job task")
	}
	switch mock.config.getJobTask.returnedValue.(type) {
	case tasks.JobTask:
		jobTask := mock.config.getJobTask.returnedValue.(tasks.JobTask)
		return &jobTask, nil
	default:
		return &tasks.JobTask{}, nil
	}
}

func (mock *redisMock) getCachedResults(annotation []byte, fingerprint string) (types.FieldTable, bool, error) {
	mock.calls.getCachedResults = true
	if mock.config.getCachedResults.fail {
		return nil, false, errors.New("failed to query results cache")
	}
	switch mock.config.getCachedResults.returnedValue.(type) {
	case types.FieldTable:
		table := mock.config.getCachedResults.returnedValue.(types.FieldTable)
		return table, true, nil
	default:
		return nil, false, nil
	}
}

func (mock *redisMock) cacheResults(annotation []byte, fingerprint string, table types.FieldTable) error {
	mock.calls.cacheResults = true
	if mock.config.cacheResults.fail {
		return errors.New("failed to store results in cache")
	}
	return nil
}

func (mock *redisMock) onTaskStarted(task *Task) error {
	mock.calls.onTaskStarted = true
	if mock.config.onTaskStarted.fail {
		return errors.New("failed to update note task on start")
	}
	return nil
}

func (mock *redisMock) onTaskCancelled(task *Task, errorMessages ...string) error {
	mock.calls.onTaskCancelled = true
	if mock.config.onTaskCancelled.fail {
		return errors.New("failed to update note task on cancel")
	}
	return nil
}

func (mock *redisMock) onTaskExceededRetries(task *Task, maxRetries int) error {
	mock.calls.onTaskExceededRetries = true
	if mock.config.onTaskExceededRetries.fail {
		return errors.New("failed to update note task on exceeded retries")
	}
	return nil
}

func (mock *redisMock) onTaskFailedWithError(task *Task, err error) error {
	mock.calls.onTaskFailedWithError = true
	if mock.config.onTaskFailedWithError.fail {
		return errors.New("failed to update note task on fail with error")
	}
	return nil
}

func (mock *redisMock) onTaskComplete(task *Task) error {
	mock.calls.onTaskComplete = true
	if mock.config.onTaskComplete.fail {
		return errors.New("failed to update note task on complete")
	}
	return nil
}

func (mock *rmqMock) rejectDelivery(delivery *amqp.Delivery, mcodeLogger *zerolog.Logger) {
	mock.calls.rejectDelivery = true
}

func (mock *rmqMock) getDeliveriesCh() <-chan amqp.Delivery {
	return nil
}

func (mock *rmqMock) getReqChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) getRespChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) sendCompletion(task *Task, message Message) error {
	mock.calls.sendCompletion = true
	if mock.config.sendCompletion.fail {
		return errors.New("failed to send completion")
	}
	return nil
}

func (mock *rmqMock) acknowledgeDelivery(delivery *amqp.Delivery) error {
	mock.calls.acknowledgeDelivery = true
	if mock.config.acknowledgeDelivery.fail {
		return errors.New("failed to acknowledge delivery")
	}
	return nil
}

func (mock *s3Mock) getAnnotationData(task *Task) ([]byte, error) {
	mock.calls.getAnnotationData = true
	if mock.config.getAnnotationData.fail {
		return nil, errors.New("mock: failed to load from s3")
	}
	switch mock.config.getAnnotationData.returnedValue.(type) {
	case []byte:
		return mock.config.getAnnotationData.returnedValue.([]byte), nil
	default:
		return []byte("some annotation"), nil
	}
}

func (mock *s3Mock) saveResults(task *Task, table types.FieldTable) error {
	mock.calls.saveResults = true
	if mock.config.saveResults.fail {
		return errors.New("failed to upload results")
	}
	return nil
}
