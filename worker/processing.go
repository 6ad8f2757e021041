package worker

import (
	"github.com/barcastaff/cTAKES-mCODE/tasks"
	"github.com/barcastaff/cTAKES-mCODE/utils"
	"encoding/json"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type Message struct {
	WorkType string `json:"work_type"`
	RedisKey string `json:"redis_key"`
	Sender   string `json:"sender"`
	Version  string `json:"version"`
}

type Task struct {
	delivery    *amqp.Delivery
	noteTask    *tasks.NoteTask
	message     *Message
	redisKey    string
	mcodeLogger *zerolog.Logger
}

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	task, err := worker.createTask(delivery)
	rejectLogger := worker.mcodeLogger.With().Str("message_id", delivery.MessageId).Logger()
	if err != nil {
		worker.mcodeLogger.Err(err).
			Str("message_id", delivery.MessageId).
			Str("tid", string(delivery.Body)).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.processTask(task); err != nil {
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.sendCompletion(task, *task.message); err != nil {
		task.mcodeLogger.Err(err).Msg("Got error while sending message to results queue")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.mcodeLogger.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.mcodeLogger.Info().Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(delivery *amqp.Delivery) (*Task, error) {
	var message Message
	err := json.Unmarshal(delivery.Body, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	noteTask, err := worker.redis.getNoteTask(message.RedisKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query note task for message, got error %w", err)
	}
	taskLogger := worker.mcodeLogger.With().Str("tid", message.RedisKey).Logger()
	task := Task{
		delivery:    delivery,
		noteTask:    noteTask,
		redisKey:    message.RedisKey,
		message:     &message,
		mcodeLogger: &taskLogger,
	}
	return &task, nil
}

func (worker *Worker) processTask(task *Task) error {
	shouldPerform, err := worker.shouldPerformTask(task)
	if err != nil {
		task.mcodeLogger.Err(err).
			Msg("Got error while trying to decide whether to run task")
		return err
	}
	if !shouldPerform {
		return nil
	}
	if err = worker.redis.onTaskStarted(task); err != nil {
		task.mcodeLogger.Err(err).Msg("Failed to update task info")
		return fmt.Errorf("failed to update TaskInfo: %w", err)
	}
	if err = worker.runExtraction(task); err != nil {
		task.mcodeLogger.Err(err).Msg("Got error while running extraction")
		if err = worker.redis.onTaskFailedWithError(task, err); err != nil {
			return err
		}
		return nil
	}
	task.mcodeLogger.Info().Msg("Saved results, marking task as complete")
	if err = worker.redis.onTaskComplete(task); err != nil {
		task.mcodeLogger.Err(err).Msg("Got error while trying to mark task as complete")
		return err
	}
	return nil
}

func (worker *Worker) runExtraction(task *Task) (err error) {
	defer utils.RecoverWithError(&err)
	task.mcodeLogger.Info().Msgf("Processing message from RMQ, attempt # %d", task.noteTask.TaskStatuses.MCode.Attempts)
	data, err := worker.s3.getAnnotationData(task)
	if err != nil {
		task.mcodeLogger.Err(err).Caller().Msg("Could not fetch annotation data from s3")
		return fmt.Errorf("failed fetch data from s3: %w", err)
	}
	table, hit, err := worker.redis.getCachedResults(data, worker.fingerprint)
	if err != nil {
		task.mcodeLogger.Err(err).Msg("Could not query results cache")
	}
	if hit {
		task.mcodeLogger.Info().Msg("Results cache hit, skipping extraction")
	} else {
		table, err = worker.extract(data)
		if err != nil {
			task.mcodeLogger.Err(err).Msg("Got error while extracting fields")
			return err
		}
		if err := worker.redis.cacheResults(data, worker.fingerprint, table); err != nil {
			task.mcodeLogger.Err(err).Msg("Could not store results in cache")
		}
	}
	task.mcodeLogger.Info().Msg("Finished extraction, saving results to s3")
	if err = worker.s3.saveResults(task, table); err != nil {
		task.mcodeLogger.Err(err).Msg("Got error while trying to save results")
		return err
	}
	return nil
}

func (worker *Worker) shouldPerformTask(task *Task) (bool, error) {
	taskInfo := task.noteTask.TaskStatuses.MCode
	taskLogger := task.mcodeLogger

	if taskInfo.Status.Complete() {
		taskLogger.Info().Msg("Task is already done. (might indicate issue acking message with RMQ). Sending completion.")
		return false, nil
	}
	taskJob, err := worker.redis.getJobTask(task)
	if err != nil {
		taskLogger.Err(err).Msg("Failed to query job task for note task")
		return false, err
	}
	if taskJob.UserCanceled {
		taskLogger.Info().Msg("Job was canceled, no need to perform this task. Sending completion.")
		err := worker.redis.onTaskCancelled(task)
		return false, err
	}
	if taskJob.StopOnFailure && len(taskJob.FailedNotes) > 0 {
		failedNote := taskJob.FailedNotes[0]
		taskLogger.Info().Msgf("Task is not required because the \"%s\" note already completed failure "+
			"and the job won't be processed successfully. Sending completion.", failedNote)
		err := worker.redis.onTaskCancelled(
			task,
			fmt.Sprintf(
				"Task was marked as \"%s\" because the \"%s\" note of the current job has failed "+
					"and the job won't be processed successfully.",
				tasks.TaskStatusCanceled,
				failedNote,
			),
		)
		return false, err
	}
	if taskInfo.Attempts >= worker.config.TaskMaxRetries {
		taskLogger.Info().Msg("Extraction task has exceeded retries. Sending completion.")
		err = worker.redis.onTaskExceededRetries(task, worker.config.TaskMaxRetries)
		return false, err
	}
	return true, nil
}
