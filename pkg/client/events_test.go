package client

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battcycle/battcycle/pkg/events"
)

func TestReadEvents(t *testing.T) {
	body := "event:cycle.state\ndata:{\"to\":\"charging\"}\n\n" +
		": comment\n\n" +
		"event: cycle.charging\ndata: {\"enabled\":\n" +
		"data: true}\n\n" +
		"event:cycle.state\ndata:{}\n\n"

	var got []events.Event
	err := readEvents(strings.NewReader(body), func(ev events.Event) bool {
		got = append(got, ev)
		return len(got) < 2
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, events.CycleState, got[0].Name)
	st, err := events.DecodeAs[events.CycleStateEvent](got[0])
	require.NoError(t, err)
	assert.Equal(t, "charging", st.To)

	assert.Equal(t, events.CycleCharging, got[1].Name)
	ch, err := events.DecodeAs[events.CycleChargingEvent](got[1])
	require.NoError(t, err)
	assert.True(t, ch.Enabled)
}

func TestSubscribeEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/events", func(c *gin.Context) {
		c.SSEvent(events.CycleState, `{"from":"charging","to":"done","reason":"target_reached"}`)
	})

	c := NewClient(serve(t, r))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := c.SubscribeEvents(ctx)
	require.NoError(t, err)

	ev, ok := <-ch
	require.True(t, ok)
	st, err := events.DecodeAs[events.CycleStateEvent](ev)
	require.NoError(t, err)
	assert.Equal(t, "target_reached", st.Reason)

	_, ok = <-ch
	assert.False(t, ok)
}

func TestSubscribeEventsUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/events", func(c *gin.Context) {
		c.IndentedJSON(http.StatusServiceUnavailable, "event stream is not available")
	})

	c := NewClient(serve(t, r))
	_, err := c.SubscribeEvents(context.Background())
	assert.ErrorContains(t, err, "503")
}
