package queue

import (
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

var errNoChannel = errors.New("message has no channel")

// Message pairs a decoded Job with the AMQP delivery it arrived on, so the
// consumer can settle it after processing.
type Message struct {
	Job         *Job
	DeliveryTag uint64
	Channel     *amqp.Channel
}

// Ack marks the delivery as processed.
func (m *Message) Ack() error {
	if m.Channel == nil {
		return errNoChannel
	}
	return m.Channel.Ack(m.DeliveryTag, false)
}

// Nack rejects the delivery. With requeue false the broker dead-letters it.
func (m *Message) Nack(requeue bool) error {
	if m.Channel == nil {
		return errNoChannel
	}
	return m.Channel.Nack(m.DeliveryTag, false, requeue)
}

// GetJob returns the job carried by the delivery.
func (m *Message) GetJob() *Job {
	return m.Job
}
