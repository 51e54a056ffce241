package http

import (
	"github.com/sirupsen/logrus"

	l402 "github.com/satpathdev/l402-go"
)

// WithLogger installs payment callbacks that log every payment
// lifecycle event through the given logger. Attempts and successes log
// at info level, failures at error level. It composes with
// WithPaymentCallbacks: whichever option is applied last wins for each
// event type.
func WithLogger(logger logrus.FieldLogger) ClientOption {
	log := func(event l402.PaymentEvent) {
		entry := logger.WithFields(logrus.Fields{
			"url":         event.URL,
			"variant":     event.Variant,
			"amount_sats": event.AmountSats,
		})
		switch event.Type {
		case l402.PaymentEventAttempt:
			entry.Info("l402 payment attempt")
		case l402.PaymentEventSuccess:
			entry.WithFields(logrus.Fields{
				"payment_hash": event.PaymentHash,
				"duration":     event.Duration,
			}).Info("l402 payment settled")
		case l402.PaymentEventFailure:
			entry.WithError(event.Error).Error("l402 payment failed")
		}
	}
	return WithPaymentCallbacks(log, log, log)
}
