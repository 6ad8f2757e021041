package api

import (
	"github.com/barcastaff/cTAKES-mCODE/worker"
	"encoding/json"
	"io/ioutil"
	"net/http"
)

type Request struct {
	Extract worker.Extractor
}

func (req *Request) ProcessData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	logger := makeRequestLogger(r)

	if r.Method != "POST" {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	msg, err := ioutil.ReadAll(r.Body)
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	logger.Info().Msg("Starting extraction for request from API")
	table, err := req.Extract(msg)
	if err != nil {
		logger.Err(err).Int("status", http.StatusInternalServerError).Msg("Extraction failed")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	resp, err := json.Marshal(table)
	if err != nil {
		logger.Err(err).Int("status", http.StatusInternalServerError).Msg("Could not marshal extraction results")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(resp)
	logger.Info().Int("status", http.StatusOK).Msg("Finished processing request")
}
