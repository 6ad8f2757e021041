package tasks

import (
	"github.com/barcastaff/cTAKES-mCODE/redis"
)

const JobsDB redis.DB = 1

type JobTask struct {
	UserCanceled  bool     `json:"user_canceled"`
	StopOnFailure bool     `json:"stop_on_failure"`
	FailedNotes   []string `json:"failed_notes"`
}

type JobTasks struct {
	client redis.Client
}

func (tasks JobTasks) Get(redisKey string) (*JobTask, error) {
	var task JobTask
	err := tasks.client.GetDocument(redisKey, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks JobTasks) Update(redisKey string, updateFunc func(task *JobTask)) error {
	var task JobTask
	return tasks.client.UpdateDocument(redisKey, &task, func() {
		updateFunc(&task)
	})
}
