// Package webutils carries the small helpers the web handlers share.
package webutils

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/pkg/errors"
)

func WriteResult(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		log.Printf("[web] Error when writing response: %v", err)
	}
}

func WriteJson(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		WriteError(w, err)
	} else {
		WriteResult(w, res)
	}
}

func WriteError(w http.ResponseWriter, err error) {
	type jError struct {
		Error string `json:"error"`
	}
	w.WriteHeader(http.StatusInternalServerError)
	data, merr := json.Marshal(&jError{Error: err.Error()})
	if merr == nil {
		log.Printf("[web] HERR: %v", string(data))
		WriteResult(w, data)
	} else {
		log.Printf("[web] Error marshaling error '%v': %v", err, merr)
	}
}

// ReadJsonBody decodes a POST body into v.
func ReadJsonBody(r *http.Request, v interface{}) error {
	if r.Method != http.MethodPost {
		return errors.Errorf("Invalid http method %q", r.Method)
	}
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrapf(err, "Failed to unmarshal")
	}
	return nil
}
