package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConfirmationMailer is the contract the worker needs from the mail layer.
type ConfirmationMailer interface {
	SendWaitlistConfirmation(to string, position int) error
}

type Worker struct {
	Channel *amqp.Channel
	Mailer  ConfirmationMailer
}

func NewWorker(ch *amqp.Channel, mailer ConfirmationMailer) *Worker {
	return &Worker{Channel: ch, Mailer: mailer}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("❌ [WORKER] failed to register RabbitMQ consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload ConfirmationPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] malformed payload: %s", err)
				// Poison message, reject without requeue.
				d.Nack(false, false)
				continue
			}

			if w.Mailer == nil {
				log.Printf("⚠️ [WORKER] no mailer configured, dropping confirmation for %s", payload.Email)
				d.Ack(false)
				continue
			}

			if err := w.Mailer.SendWaitlistConfirmation(payload.Email, payload.Position); err != nil {
				log.Printf("❌ [WORKER] confirmation email failed for %s: %s", payload.Email, err)
				d.Nack(false, false)
			} else {
				log.Printf("✅ [WORKER] confirmation email sent to %s", payload.Email)
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Worker waiting on queue '%s'", queueName)
	<-forever
}
