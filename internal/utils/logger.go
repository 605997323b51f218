package utils

import (
	"fmt"
	"log"
	"strings"
)

// LogEvent prints one line per domain event: module, action and request id,
// followed by a short summary. Never pass rider payloads or secrets.
func LogEvent(requestID, module, action, message string) {
	log.Print(formatEvent("INFO", requestID, module, action, message))
}

// LogError is LogEvent for failures that end up as an internal error.
func LogError(requestID, module, action string, err error) {
	msg := "<nil>"
	if err != nil {
		msg = err.Error()
	}
	log.Print(formatEvent("ERROR", requestID, module, action, msg))
}

func formatEvent(level, requestID, module, action, message string) string {
	req := strings.TrimSpace(requestID)
	if req == "" {
		req = "-"
	}
	return fmt.Sprintf("%s [%s] action=%s request_id=%s msg=%s",
		level, strings.ToUpper(module), action, req, strings.ReplaceAll(message, "\n", " "))
}
