package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesOnlyMatchingTopic(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe("a", func(ev Event) { got = append(got, "a:"+ev.Payload.(string)) })
	bus.Subscribe("b", func(ev Event) { got = append(got, "b:"+ev.Payload.(string)) })

	bus.Publish("a", "one")
	assert.Equal(t, []string{"a:one"}, got)
}

func TestAllSubscribersRunInOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	bus.Subscribe("t", func(Event) { order = append(order, 1) })
	bus.Subscribe("t", func(Event) { order = append(order, 2) })

	bus.Publish("t", nil)
	assert.Equal(t, []int{1, 2}, order)
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() { bus.Publish("nobody", nil) })
}
