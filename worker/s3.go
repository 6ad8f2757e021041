package worker

import (
	"github.com/barcastaff/cTAKES-mCODE/output"
	"github.com/barcastaff/cTAKES-mCODE/s3client"
	"github.com/barcastaff/cTAKES-mCODE/types"
)

type s3Transactions interface {
	saveResults(task *Task, table types.FieldTable) error
	getAnnotationData(task *Task) ([]byte, error)
}

type s3ClientWrapper struct {
	s3Client *s3client.Client
}

func (wrapper *s3ClientWrapper) saveResults(task *Task, table types.FieldTable) error {
	coded, err := output.Render(table, task.noteTask.SourceFile, false)
	if err != nil {
		return err
	}
	stripped, err := output.Render(table, task.noteTask.SourceFile, true)
	if err != nil {
		return err
	}
	if _, err := wrapper.s3Client.Upload(coded, getCodedResultsFileKey(task)); err != nil {
		return err
	}
	_, err = wrapper.s3Client.Upload(stripped, getResultsFileKey(task))
	return err
}

func (wrapper *s3ClientWrapper) getAnnotationData(task *Task) ([]byte, error) {
	return wrapper.s3Client.Download(task.noteTask.AnnotationKey)
}
