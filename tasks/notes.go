package tasks

import (
	"github.com/barcastaff/cTAKES-mCODE/redis"
)

const NotesDB redis.DB = 0

type TaskStatus string

const (
	TaskStatusProcessing       TaskStatus = "processing"
	TaskStatusSubmitted        TaskStatus = "submitted"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
	TaskStatusCanceled         TaskStatus = "canceled"
)

func (s TaskStatus) Complete() bool {
	return s == TaskStatusCompletedSuccess || s == TaskStatusCompletedFailure || s == TaskStatusCanceled
}

func (s TaskStatus) Submitted() bool {
	return s == TaskStatusSubmitted || s == TaskStatusStarted || s == TaskStatusProcessing
}

type NoteTask struct {
	JobID         string           `json:"job_id"`
	SourceFile    string           `json:"source_file"`
	AnnotationKey string           `json:"annotation_file_key"`
	TaskStatuses  NoteTaskStatuses `json:"task_statuses"`
}

type NoteTaskStatuses struct {
	MCode TaskInfo `json:"mcode"`
}

type TaskInfo struct {
	ResultsFileKey      string     `json:"results_file_key"`
	CodedResultsFileKey string     `json:"coded_results_file_key"`
	StartedAt           *string    `json:"started_at"`
	CompletedAt         *string    `json:"completed_at"`
	Attempts            int        `json:"attempts"`
	Status              TaskStatus `json:"status"`
	ErrorMessages       []string   `json:"error_messages"`
}

type NoteTasks struct {
	client redis.Client
}

func (tasks NoteTasks) Get(redisKey string) (*NoteTask, error) {
	var task NoteTask
	err := tasks.client.GetDocument(redisKey, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks NoteTasks) Update(redisKey string, updateFunc func(task *NoteTask)) error {
	var task NoteTask
	return tasks.client.UpdateDocument(redisKey, &task, func() {
		updateFunc(&task)
	})
}
