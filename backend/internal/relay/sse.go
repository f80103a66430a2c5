package relay

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Wire format for the streaming endpoints: one `data:` line per content
// delta, a literal [DONE] sentinel at the end.
const doneSentinel = "[DONE]"

type contentFrame struct {
	Content string `json:"content"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// WriteSSE drains an event channel into the response as server-sent
// events. Content already flushed stays with the client even when the
// stream ends in an error frame. Returns the accumulated text and
// whether the stream ran to its done sentinel.
func WriteSSE(c *gin.Context, events <-chan Event) (string, bool) {
	return WriteSSEFinal(c, events, nil)
}

// WriteSSEFinal is WriteSSE with a trailing payload: when the stream
// completes, final is called with the full accumulated text and its
// result is written as one extra frame before the done sentinel.
func WriteSSEFinal(c *gin.Context, events <-chan Event, final func(full string) any) (string, bool) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	var full string
	for event := range events {
		switch {
		case event.Err != nil:
			writeFrame(c, errorFrame{Error: event.Err.Error()})
			return full, false
		case event.Done:
			if final != nil {
				writeFrame(c, final(full))
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", doneSentinel)
			c.Writer.Flush()
			return full, true
		default:
			full += event.Content
			writeFrame(c, contentFrame{Content: event.Content})
		}
	}
	return full, false
}

func writeFrame(c *gin.Context, frame any) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
	c.Writer.Flush()
}
