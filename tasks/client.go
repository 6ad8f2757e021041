package tasks

import (
	"github.com/barcastaff/cTAKES-mCODE/redis"
)

type Client struct {
	Notes   NoteTasks
	Jobs    JobTasks
	Results ResultCache
}

// NewClient is a preferred way for working with TaskInfos
func NewClient() (Client, error) {
	notesRedisClient, err := redis.NewClient(NotesDB)
	if err != nil {
		return Client{}, err
	}
	jobsRedisClient, err := redis.NewClient(JobsDB)
	if err != nil {
		return Client{}, err
	}
	resultsRedisClient, err := redis.NewClient(ResultsDB)
	if err != nil {
		return Client{}, err
	}
	results, err := newResultCache(resultsRedisClient)
	if err != nil {
		return Client{}, err
	}
	return Client{
		Notes:   NoteTasks{client: notesRedisClient},
		Jobs:    JobTasks{client: jobsRedisClient},
		Results: results,
	}, nil
}

func (client *Client) Close() {
	_ = client.Notes.client.Close()
	_ = client.Jobs.client.Close()
	_ = client.Results.client.Close()
}
