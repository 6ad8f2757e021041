package worker

import (
	"github.com/barcastaff/cTAKES-mCODE/tasks"
	"github.com/barcastaff/cTAKES-mCODE/types"
	"fmt"
)

type redisTransactions interface {
	getNoteTask(redisKey string) (*tasks.NoteTask, error)
	getJobTask(task *Task) (*tasks.JobTask, error)
	getCachedResults(annotation []byte, fingerprint string) (types.FieldTable, bool, error)
	cacheResults(annotation []byte, fingerprint string, table types.FieldTable) error
	onTaskStarted(task *Task) error
	onTaskCancelled(task *Task, errorMessages ...string) error
	onTaskExceededRetries(task *Task, maxRetries int) error
	onTaskFailedWithError(task *Task, err error) error
	onTaskComplete(task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) onTaskStarted(task *Task) error {
	err := wrapper.tasksClient.Notes.Update(task.redisKey, func(task *tasks.NoteTask) {
		task.TaskStatuses.MCode.Status = tasks.TaskStatusStarted
		task.TaskStatuses.MCode.Attempts += 1
		task.TaskStatuses.MCode.StartedAt = getFormattedNow()
		task.TaskStatuses.MCode.CompletedAt = nil
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskCancelled(task *Task, errorMessages ...string) error {
	err := wrapper.tasksClient.Notes.Update(task.redisKey, func(noteTask *tasks.NoteTask) {
		noteTask.TaskStatuses.MCode.Status = tasks.TaskStatusCanceled
		noteTask.TaskStatuses.MCode.StartedAt = getFormattedNow()
		noteTask.TaskStatuses.MCode.CompletedAt = getFormattedNow()
		noteTask.TaskStatuses.MCode.Attempts += 1
		noteTask.TaskStatuses.MCode.ErrorMessages = append(
			noteTask.TaskStatuses.MCode.ErrorMessages,
			errorMessages...,
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(task *Task, maxRetries int) error {
	err := wrapper.tasksClient.Jobs.Update(task.noteTask.JobID, func(jobTask *tasks.JobTask) {
		jobTask.FailedNotes = append(jobTask.FailedNotes, task.redisKey)
	})
	if err != nil {
		return err
	}
	err = wrapper.tasksClient.Notes.Update(task.redisKey, func(noteTask *tasks.NoteTask) {
		noteTask.TaskStatuses.MCode.Status = tasks.TaskStatusCompletedFailure
		noteTask.TaskStatuses.MCode.StartedAt = getFormattedNow()
		noteTask.TaskStatuses.MCode.CompletedAt = getFormattedNow()
		noteTask.TaskStatuses.MCode.Attempts += 1
		noteTask.TaskStatuses.MCode.ErrorMessages = append(
			noteTask.TaskStatuses.MCode.ErrorMessages,
			fmt.Sprintf(
				"Task has exceeded retries. (Attempts: %d, max retries: %d )",
				noteTask.TaskStatuses.MCode.Attempts,
				maxRetries,
			),
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(task *Task, err error) error {
	return wrapper.tasksClient.Notes.Update(task.redisKey, func(noteTask *tasks.NoteTask) {
		noteTask.TaskStatuses.MCode.Status = tasks.TaskStatusFailed
		noteTask.TaskStatuses.MCode.CompletedAt = getFormattedNow()
		noteTask.TaskStatuses.MCode.ErrorMessages = append(noteTask.TaskStatuses.MCode.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(task *Task) error {
	return wrapper.tasksClient.Notes.Update(task.redisKey, func(noteTask *tasks.NoteTask) {
		if !noteTask.TaskStatuses.MCode.Status.Complete() {
			noteTask.TaskStatuses.MCode.Status = tasks.TaskStatusCompletedSuccess
		}
		noteTask.TaskStatuses.MCode.CompletedAt = getFormattedNow()
		noteTask.TaskStatuses.MCode.ResultsFileKey = getResultsFileKey(task)
		noteTask.TaskStatuses.MCode.CodedResultsFileKey = getCodedResultsFileKey(task)
	})
}

func (wrapper *redisClientWrapper) getNoteTask(redisKey string) (*tasks.NoteTask, error) {
	return wrapper.tasksClient.Notes.Get(redisKey)
}

func (wrapper *redisClientWrapper) getJobTask(task *Task) (*tasks.JobTask, error) {
	return wrapper.tasksClient.Jobs.Get(task.noteTask.JobID)
}

func (wrapper *redisClientWrapper) getCachedResults(annotation []byte, fingerprint string) (types.FieldTable, bool, error) {
	return wrapper.tasksClient.Results.Get(annotation, fingerprint)
}

func (wrapper *redisClientWrapper) cacheResults(annotation []byte, fingerprint string, table types.FieldTable) error {
	return wrapper.tasksClient.Results.Put(annotation, fingerprint, table)
}
