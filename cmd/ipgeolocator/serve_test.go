package main

import (
	"net/http/httptest"
	"testing"

	"github.com/pion/logging"
	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logging.LogLevelWarn, parseLogLevel("WARN"))
	assert.Equal(t, logging.LogLevelDebug, parseLogLevel("debug"))
	assert.Equal(t, logging.LogLevelTrace, parseLogLevel("trace"))
	assert.Equal(t, logging.LogLevelInfo, parseLogLevel("whatever"))
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, map[string]string{"address": "198.51.100.9"})

	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"address":"198.51.100.9"}`, w.Body.String())
}
