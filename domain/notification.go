package domain

type EmailMessage struct {
	ToName  string
	ToEmail string
	Subject string
	HTML    string
	Text    string
}

// Notification is one queued email with the template kind it came from.
type Notification struct {
	Kind    string
	Message EmailMessage
}

const (
	NotifyWelcome           = "welcome"
	NotifyOTP               = "otp"
	NotifyPasswordReset     = "password_reset"
	NotifyOrderConfirmation = "order_confirmation"
	NotifyOrderCancelled    = "order_cancelled"
	NotifyContact           = "contact"
)
