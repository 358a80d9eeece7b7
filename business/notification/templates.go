package notification

import (
	"fmt"
	"html"
	"misikaMarket/domain"
	"strings"
)

const brand = "Misika"

func Welcome(name, email string) domain.Notification {
	return domain.Notification{
		Kind: domain.NotifyWelcome,
		Message: domain.EmailMessage{
			ToName:  name,
			ToEmail: email,
			Subject: "Welcome to " + brand + "!",
			HTML: fmt.Sprintf(`<h1>Welcome to %s, %s!</h1>
<p>Thank you for joining us. Start shopping for premium products at great prices.</p>`, brand, html.EscapeString(name)),
			Text: fmt.Sprintf("Welcome to %s, %s! Thank you for joining us.", brand, name),
		},
	}
}

// OTPCode builds the signup or reset code email.
func OTPCode(name, email, code, purpose string) domain.Notification {
	action := "complete your registration"
	kind := domain.NotifyOTP
	subject := "Your " + brand + " verification code"
	if purpose != domain.OTPPurposeLegacySignup {
		action = "reset your password"
		kind = domain.NotifyPasswordReset
		subject = "Your " + brand + " password reset code"
	}

	minutes := int(domain.OTPTTL.Minutes())

	return domain.Notification{
		Kind: kind,
		Message: domain.EmailMessage{
			ToName:  name,
			ToEmail: email,
			Subject: subject,
			HTML: fmt.Sprintf(`<p>Hello %s,</p>
<p>Use the code below to %s:</p>
<h2 style="letter-spacing:4px">%s</h2>
<p>The code expires in %d minutes. If you did not request it, ignore this email.</p>`, html.EscapeString(name), action, code, minutes),
			Text: fmt.Sprintf("Your code to %s is %s. It expires in %d minutes.", action, code, minutes),
		},
	}
}

func OrderConfirmation(name, email string, order domain.Order) domain.Notification {
	var rows strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			html.EscapeString(item.ProductName), item.Quantity, item.Total.StringFixed(2))
	}

	return domain.Notification{
		Kind: domain.NotifyOrderConfirmation,
		Message: domain.EmailMessage{
			ToName:  name,
			ToEmail: email,
			Subject: "Order Confirmation - " + order.OrderNumber,
			HTML: fmt.Sprintf(`<h1>Thank you for your order!</h1>
<p>Order Number: <strong>%s</strong></p>
<table><tr><th>Item</th><th>Qty</th><th>Total</th></tr>%s</table>
<p>Subtotal: %s<br>Shipping: %s<br>Tax: %s<br><strong>Total: %s</strong></p>
<p>Payment method: %s</p>`,
				order.OrderNumber, rows.String(),
				order.Subtotal.StringFixed(2), order.ShippingCost.StringFixed(2),
				order.Tax.StringFixed(2), order.Total.StringFixed(2), order.PaymentMethod),
			Text: fmt.Sprintf("Thank you for your order %s. Total: %s", order.OrderNumber, order.Total.StringFixed(2)),
		},
	}
}

func OrderCancelled(name, email string, order domain.Order) domain.Notification {
	return domain.Notification{
		Kind: domain.NotifyOrderCancelled,
		Message: domain.EmailMessage{
			ToName:  name,
			ToEmail: email,
			Subject: "Order Cancelled - " + order.OrderNumber,
			HTML:    fmt.Sprintf("<p>Your order <strong>%s</strong> has been cancelled.</p>", order.OrderNumber),
			Text:    fmt.Sprintf("Your order %s has been cancelled.", order.OrderNumber),
		},
	}
}

func ContactSubmission(adminEmail string, c domain.Contact) domain.Notification {
	return domain.Notification{
		Kind: domain.NotifyContact,
		Message: domain.EmailMessage{
			ToName:  brand + " Admin",
			ToEmail: adminEmail,
			Subject: "New Contact Form Submission: " + c.Subject,
			HTML: fmt.Sprintf(`<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> %s</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Phone:</strong> %s</p>
<p><strong>Subject:</strong> %s</p>
<p><strong>Message:</strong></p>
<p>%s</p>`,
				html.EscapeString(c.Name), html.EscapeString(c.Email), html.EscapeString(c.Phone),
				html.EscapeString(c.Subject), html.EscapeString(c.Message)),
			Text: fmt.Sprintf("Contact from %s <%s>: %s\n\n%s", c.Name, c.Email, c.Subject, c.Message),
		},
	}
}
