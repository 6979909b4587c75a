package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// KeepAlive is how often an idle stream receives a comment line.
var KeepAlive = 15 * time.Second

// Stream pushes the public snapshot using Server-Sent Events: once on
// connect and again after every change of the mirror.
func (h *ContentHandler) Stream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	ctx := c.Request.Context()

	ticker := time.NewTicker(KeepAlive)
	defer ticker.Stop()

	for {
		// Take the change channel before reading so no update is missed.
		changed := h.mirror.Changed()

		data, _ := json.Marshal(buildContent(h.mirror))
		fmt.Fprintf(c.Writer, "event: snapshot\ndata: %s\n\n", string(data))
		flusher.Flush()

	wait:
		for {
			select {
			case <-ctx.Done():
				// Client disconnected
				return
			case <-ticker.C:
				fmt.Fprint(c.Writer, ": keep-alive\n\n")
				flusher.Flush()
			case <-changed:
				break wait
			}
		}
	}
}
