package handler

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
)

// setSSEHeaders prepares the response for Server-Sent Events
func setSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) error {
	if data == nil {
		_, err := fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
		return err
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		_, err = fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
		return err
	}
	_, err = fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	return err
}
