package worker

import (
	"github.com/barcastaff/cTAKES-mCODE/logger"
	"github.com/barcastaff/cTAKES-mCODE/tasks"
	"github.com/barcastaff/cTAKES-mCODE/types"
	"github.com/streadway/amqp"
	"reflect"
	"testing"
)

type mockedClientsConfig struct {
	rmqMockConfig
	redisMockConfig
	s3MockConfig
	extractorMockConfig
}

type mockedClients struct {
	redis     *redisMock
	rmq       *rmqMock
	s3        *s3Mock
	extractor *extractorMock
}

type methodsCalls struct {
	redis     redisMockCalls
	rmq       rmqMockCalls
	s3        s3MockCalls
	extractor extractorCall
}

func testConfiguration(t *testing.T, config mockedClientsConfig, expectedCalls methodsCalls) {
	worker, mocks := configureWorker(config)
	worker.processMessage(&amqp.Delivery{
		Body: []byte("{}"),
	})
	calls := methodsCalls{
		redis:     mocks.redis.calls,
		rmq:       mocks.rmq.calls,
		s3:        mocks.s3.calls,
		extractor: mocks.extractor.calls,
	}
	if !reflect.DeepEqual(calls, expectedCalls) {
		t.Errorf("Got unexpected called methods set.\nExpected:\n%+v\nGot:\n%+v", expectedCalls, calls)
	}
}

func configureWorker(config mockedClientsConfig) (*Worker, *mockedClients) {
	redis := &redisMock{config: config.redisMockConfig}
	s3 := &s3Mock{config: config.s3MockConfig}
	rmq := &rmqMock{config: config.rmqMockConfig}
	extractor := getExtractorMock(config.extractorMockConfig)

	mcodeLogger := logger.NewLogger("Test Worker")

	return &Worker{
			config:      Config{3},
			redis:       redis,
			s3:          s3,
			rmq:         rmq,
			mcodeLogger: &mcodeLogger,
			extract:     extractor.extract,
			fingerprint: "disambiguation=false;window=1;model=",
		}, &mockedClients{
			redis:     redis,
			rmq:       rmq,
			s3:        s3,
			extractor: extractor,
		}
}

func TestWorker(t *testing.T) {
	t.Run("Successful", testSuccessfulTask)
	t.Run("Successful with job_task.stop_on_failure == True", testSuccessfulTaskWithStopOnFailure)
	t.Run("Results cache hit", testResultsCacheHit)
	t.Run("Results cache lookup error", testResultsCacheLookupError)
	t.Run("Results cache store error", testResultsCacheStoreError)
	t.Run("Failed to get Note task", testGetNoteTaskFailed)
	t.Run("Failed to get Job task", testGetJobTaskFailed)
	t.Run("Already complete with success", testAlreadyCompletedSuccessfully)
	t.Run("Already complete with failure", testAlreadyCompletedWithFailure)
	t.Run("User cancelled", testUserCancelled)
	t.Run("Exceeded attempts", testExceededAttempts)
	t.Run("Cancelled because another note already failed", testCancelledBecauseOfFailedNote)
	t.Run("Failed to update task in onTaskStarted", testFailedToUpdateOnTaskStarted)
	t.Run("Failed to load annotation from S3", testFailedToFetchFromS3)
	t.Run("Failed due to extraction error", testExtractionError)
	t.Run("Failed to update task in onTaskFailedWithError", testFailedToUpdateOnTaskFailedWithError)
	t.Run("Failed to update task in onTaskComplete", testFailedToUpdateOnTaskComplete)
	t.Run("Failed to save results to S3", testFailedToSaveToS3)
	t.Run("Failed to acknowledge delivery", testFailedAckDelivery)
	t.Run("Failed to send completion", testFailedSendCompletion)
}

func testSuccessfulTask(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{},
		methodsCalls{
			redis: redisMockCalls{
				getNoteTask: true, getJobTask: true, getCachedResults: true, cacheResults: true,
				onTaskStarted: true, onTaskComplete: true,
			},
			rmq: rmqMockCalls{sendCompletion: true, acknowledgeDelivery: true},
			s3: s3MockCalls{
				getAnnotationData: true,
				saveResults:       true,
			},
			extractor: extractorCall{true},
		},
	)
}

func testSuccessfulTaskWithStopOnFailure(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			redisMockConfig: redisMockConfig{
				getJobTask: withValue{returnedValue: tasks.JobTask{StopOnFailure: true}},
			},
		},
		methodsCalls{
			redis: redisMockCalls{
				getNoteTask: true, getJobTask: true, getCachedResults: true, cacheResults: true,
				onTaskStarted: true, onTaskComplete: true,
			},
			rmq: rmqMockCalls{sendCompletion: true, acknowledgeDelivery: true},
			s3: s3MockCalls{
				getAnnotationData: true,
				saveResults:       true,
			},
			extractor: extractorCall{true},
		},
	)
}

func testResultsCacheHit(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			redisMockConfig: redisMockConfig{
				getCachedResults: withValue{
					returnedValue: types.FieldTable{types.FieldPrimaryCancerHistologyMorphology: "Adenocarcinoma"},
				},
			},
		},
		methodsCalls{
			redis: redisMockCalls{
				getNoteTask: true, getJobTask: true, getCachedResults: true,
				onTaskStarted: true, onTaskComplete: true,
			},
			rmq: rmqMockCalls{sendCompletion: true, acknowledgeDelivery: true},
			s3: s3MockCalls{
				getAnnotationData: true,
				saveResults:       true,
			},
		},
	)
}

func testResultsCacheLookupError(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			redisMockConfig: redisMockConfig{
				getCachedResults: withValue{fail: true},
			},
		},
		methodsCalls{
			redis: redisMockCalls{
				getNoteTask: true, getJobTask: true, getCachedResults: true, cacheResults: true,
				onTaskStarted: true, onTaskComplete: true,
			},
			rmq: rmqMockCalls{sendCompletion: true, acknowledgeDelivery: true},
			s3: s3MockCalls{
				getAnnotationData: true,
				saveResults:       true,
			},
			extractor: extractorCall{true},
		},
	)
}

func testResultsCacheStoreError(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			redisMockConfig: redisMockConfig{
				cacheResults: failingMethod{fail: true},
			},
		},
		methodsCalls{
			redis: redisMockCalls{
				getNoteTask: true, getJobTask: true, getCachedResults: true, cacheResults: true,
				onTaskStarted: true, onTaskComplete: true,
			},
			rmq: rmqMockCalls{sendCompletion: true, acknowledgeDelivery: true},
			s3: s3MockCalls{
				getAnnotationData: true,
				saveResults:       true,
			},
			extractor: extractorCall{true},
		},
	)
}

func testGetNoteTaskFailed(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			redisMockConfig: redisMockConfig{getNoteTask: withValue{fail: true}},
		},
		methodsCalls{
			redis: redisMockCalls{
				getNoteTask: true,
			},
			rmq: rmqMockCalls{rejectDelivery: true},
		},
	)
}

func testGetJobTaskFailed(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			redisMockConfig: redisMockConfig{getJobTask: withValue{fail: true}},
		},
		methodsCalls{
			redis: redisMockCalls{
				getNoteTask: true, getJobTask: true,
			},
			rmq: rmqMockCalls{rejectDelivery: true},
		},
	)
}

func testAlreadyCompletedSuccessfully(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			redisMockConfig: redisMockConfig{
				getNoteTask: withValue{
					returnedValue: tasks.NoteTask{
						TaskStatuses: tasks.NoteTaskStatuses{MCode: tasks.TaskInfo{Status: tasks.TaskStatusCompletedSuccess}},
					},
				},
			},
		},
		methodsCalls{
			redis: redisMockCalls{getNoteTask: true},
			rmq:   rmqMockCalls{sendCompletion: true, acknowledgeDelivery: true},
		},
	)
}

func testAlreadyCompletedWithFailure(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			redisMockConfig: redisMockConfig{
				getNoteTask: withValue{
					returnedValue: tasks.NoteTask{
						TaskStatuses: tasks.NoteTaskStatuses{MCode: tasks.TaskInfo{Status: tasks.TaskStatusCompletedFailure}},
					},
				},
			},
		},
		methodsCalls{
			redis: redisMockCalls{getNoteTask: true},
			rmq:   rmqMockCalls{sendCompletion: true, acknowledgeDelivery: true},
		},
	)
}

func testUserCancelled(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			redisMockConfig: redisMockConfig{
				getJobTask: withValue{returnedValue: tasks.JobTask{UserCanceled: true}},
			},
		},
		methodsCalls{
			redis: redisMockCalls{getNoteTask: true, getJobTask: true, onTaskCancelled: true},
			rmq:   rmqMockCalls{sendCompletion: true, acknowledgeDelivery: true},
		},
	)
}

func testExceededAttempts(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			redisMockConfig: redisMockConfig{
				getNoteTask: withValue{
					returnedValue: tasks.NoteTask{
						TaskStatuses: tasks.NoteTaskStatuses{MCode: tasks.TaskInfo{Attempts: 3}},
					},
				},
			},
		},
		methodsCalls{
			redis: redisMockCalls{getNoteTask: true, getJobTask: true, onTaskExceededRetries: true},
			rmq:   rmqMockCalls{sendCompletion: true, acknowledgeDelivery: true},
		},
	)
}

func testCancelledBecauseOfFailedNote(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			redisMockConfig: redisMockConfig{
				getJobTask: withValue{
					returnedValue: tasks.JobTask{
						StopOnFailure: true,
						FailedNotes:   []string{"some other note"},
					},
				},
			},
		},
		methodsCalls{
			redis: redisMockCalls{getNoteTask: true, getJobTask: true, onTaskCancelled: true},
			rmq:   rmqMockCalls{sendCompletion: true, acknowledgeDelivery: true},
		},
	)
}

func testFailedToUpdateOnTaskStarted(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			redisMockConfig: redisMockConfig{onTaskStarted: failingMethod{fail: true}},
		},
		methodsCalls{
			redis: redisMockCalls{
				getNoteTask: true, getJobTask: true, onTaskStarted: true,
			},
			rmq: rmqMockCalls{rejectDelivery: true},
		},
	)
}

func testFailedToFetchFromS3(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			s3MockConfig: s3MockConfig{getAnnotationData: withValue{fail: true}},
		},
		methodsCalls{
			redis: redisMockCalls{
				getNoteTask: true, getJobTask: true, onTaskStarted: true, onTaskFailedWithError: true,
			},
			rmq: rmqMockCalls{sendCompletion: true, acknowledgeDelivery: true},
			s3: s3MockCalls{
				getAnnotationData: true,
			},
		},
	)
}

func testExtractionError(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			extractorMockConfig: extractorMockConfig{fail: true},
		},
		methodsCalls{
			redis: redisMockCalls{
				getNoteTask: true, getJobTask: true, getCachedResults: true,
				onTaskStarted: true, onTaskFailedWithError: true,
			},
			rmq: rmqMockCalls{sendCompletion: true, acknowledgeDelivery: true},
			s3: s3MockCalls{
				getAnnotationData: true,
			},
			extractor: extractorCall{true},
		},
	)
}

func testFailedToUpdateOnTaskFailedWithError(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			extractorMockConfig: extractorMockConfig{fail: true},
			redisMockConfig:     redisMockConfig{onTaskFailedWithError: failingMethod{fail: true}},
		},
		methodsCalls{
			redis: redisMockCalls{
				getNoteTask: true, getJobTask: true, getCachedResults: true,
				onTaskStarted: true, onTaskFailedWithError: true,
			},
			rmq: rmqMockCalls{rejectDelivery: true},
			s3: s3MockCalls{
				getAnnotationData: true,
			},
			extractor: extractorCall{true},
		},
	)
}

func testFailedToUpdateOnTaskComplete(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			redisMockConfig: redisMockConfig{onTaskComplete: failingMethod{fail: true}},
		},
		methodsCalls{
			redis: redisMockCalls{
				getNoteTask: true, getJobTask: true, getCachedResults: true, cacheResults: true,
				onTaskStarted: true, onTaskComplete: true,
			},
			rmq: rmqMockCalls{rejectDelivery: true},
			s3: s3MockCalls{
				getAnnotationData: true,
				saveResults:       true,
			},
			extractor: extractorCall{extract: true},
		},
	)
}

func testFailedToSaveToS3(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			s3MockConfig: s3MockConfig{saveResults: failingMethod{fail: true}},
		},
		methodsCalls{
			redis: redisMockCalls{
				getNoteTask: true, getJobTask: true, getCachedResults: true, cacheResults: true,
				onTaskStarted: true, onTaskFailedWithError: true,
			},
			rmq: rmqMockCalls{sendCompletion: true, acknowledgeDelivery: true},
			s3: s3MockCalls{
				getAnnotationData: true,
				saveResults:       true,
			},
			extractor: extractorCall{true},
		},
	)
}

func testFailedAckDelivery(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			rmqMockConfig: rmqMockConfig{acknowledgeDelivery: failingMethod{fail: true}},
		},
		methodsCalls{
			redis: redisMockCalls{
				getNoteTask: true, getJobTask: true, getCachedResults: true, cacheResults: true,
				onTaskStarted: true, onTaskComplete: true,
			},
			rmq: rmqMockCalls{sendCompletion: true, acknowledgeDelivery: true},
			s3: s3MockCalls{
				getAnnotationData: true,
				saveResults:       true,
			},
			extractor: extractorCall{true},
		},
	)
}

func testFailedSendCompletion(t *testing.T) {
	testConfiguration(
		t,
		mockedClientsConfig{
			rmqMockConfig: rmqMockConfig{sendCompletion: failingMethod{fail: true}},
		},
		methodsCalls{
			redis: redisMockCalls{
				getNoteTask: true, getJobTask: true, getCachedResults: true, cacheResults: true,
				onTaskStarted: true, onTaskComplete: true,
			},
			rmq: rmqMockCalls{sendCompletion: true, rejectDelivery: true},
			s3: s3MockCalls{
				getAnnotationData: true,
				saveResults:       true,
			},
			extractor: extractorCall{true},
		},
	)
}
