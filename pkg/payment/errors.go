package payment

import "errors"

var (
	ErrPaymentFailed = errors.New("payment.errors.payment_failed")
)
