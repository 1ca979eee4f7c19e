package daemon

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var errNoEvents = errors.New("event stream is not available")

// streamEvents forwards hub events to the client as server-sent events until
// the client goes away or the server shuts down.
func (s *Server) streamEvents(c *gin.Context) {
	if s.opts.Events == nil {
		abort(c, http.StatusServiceUnavailable, errNoEvents)
		return
	}

	ch := s.opts.Events.Subscribe()
	defer s.opts.Events.Unsubscribe(ch)

	logrus.WithField("subscribers", s.opts.Events.Subscribers()).Debug("event subscriber connected")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	// Send headers now so clients return from the request before the first event.
	c.Status(http.StatusOK)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		}
	})
}
