package notify

import (
	"encoding/json"
	"errors"
	"fmt"
)

// PermanentRejection is the reason recorded for definitive rejections.
// The rendered email tells the owner resubmission is not possible when
// it matches.
const PermanentRejection = "Permanently rejected"

// Email is a rendered message ready for SMTP delivery.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// RenderEnvelope turns a wire envelope into a deliverable email. The
// wording follows the platform's customer-facing templates.
func RenderEnvelope(env Envelope) (Email, error) {
	switch env.Kind {
	case KindCarStatus:
		var p CarStatusPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return Email{}, err
		}
		return renderCarStatus(p)
	case KindBookingStatus:
		var p BookingStatusPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return Email{}, err
		}
		return renderBookingStatus(p)
	case KindRegistrationPending, KindOwnerApproved, KindUserDeclined:
		var p AccountPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return Email{}, err
		}
		return renderAccount(env.Kind, p), nil
	default:
		return Email{}, fmt.Errorf("unknown notification kind %q", env.Kind)
	}
}

const signature = `<p>Best regards,<br>Your Car Rental Team</p>`

func renderCarStatus(p CarStatusPayload) (Email, error) {
	switch p.Status {
	case CarApproved:
		chauffeur := ""
		if p.Chauffeur {
			chauffeur = " with chauffeur service"
		}
		return Email{
			To:      p.To,
			Subject: fmt.Sprintf("Your Car %s Has Been Approved!", p.CarDetails),
			HTML: fmt.Sprintf(`<h2>Hello %s,</h2>
<p>We are pleased to inform you that your car, <strong>%s</strong>, has been approved by our admin team.</p>
<p>It is now available for booking on our platform%s. You can view and manage your car in the Owner Panel.</p>
<p>Thank you for listing with us!</p>
%s`, p.OwnerName, p.CarDetails, chauffeur, signature),
		}, nil
	case CarRejected:
		reason := ""
		if p.RejectionReason != "" {
			reason = fmt.Sprintf("<p><strong>Reason:</strong> %s</p>\n", p.RejectionReason)
		}
		followup := "You can edit and resubmit your car details in the Owner Panel to address the issue."
		if p.RejectionReason == PermanentRejection {
			followup = "This is a definitive rejection and the car cannot be resubmitted."
		}
		return Email{
			To:      p.To,
			Subject: fmt.Sprintf("Update on Your Car %s", p.CarDetails),
			HTML: fmt.Sprintf(`<h2>Hello %s,</h2>
<p>We regret to inform you that your car, <strong>%s</strong>, has been rejected by our admin team.</p>
%s<p>%s</p>
<p>Please contact us if you have any questions.</p>
%s`, p.OwnerName, p.CarDetails, reason, followup, signature),
		}, nil
	case CarResubmitted:
		chauffeur := ""
		if p.Chauffeur {
			chauffeur = " with chauffeur service"
		}
		return Email{
			To:      p.To,
			Subject: fmt.Sprintf("Your Car %s Has Been Resubmitted", p.CarDetails),
			HTML: fmt.Sprintf(`<h2>Hello %s,</h2>
<p>Your car, <strong>%s</strong>, has been successfully resubmitted for admin review%s.</p>
<p>We will notify you once the admin team reviews your updated submission.</p>
<p>Thank you for your patience!</p>
%s`, p.OwnerName, p.CarDetails, chauffeur, signature),
		}, nil
	default:
		return Email{}, errors.New("invalid car status")
	}
}

func renderBookingStatus(p BookingStatusPayload) (Email, error) {
	details := fmt.Sprintf(`<p><strong>Details:</strong></p>
<ul>
<li>Pickup Location: %s</li>
<li>Pickup Date: %s</li>
</ul>`, p.PickupLocation, p.StartDate.Format("2006-01-02"))

	switch p.Status {
	case "pending":
		return Email{
			To:      p.To,
			Subject: fmt.Sprintf("New Booking Request for %s", p.CarDetails),
			HTML: fmt.Sprintf(`<h2>Hello %s,</h2>
<p>A new booking request has been made for your car: <strong>%s</strong>.</p>
%s
<p>Please review the booking in your Owner Panel and approve or reject it.</p>
%s`, p.UserName, p.CarDetails, details, signature),
		}, nil
	case "confirmed":
		return Email{
			To:      p.To,
			Subject: fmt.Sprintf("Your Booking for %s Has Been Confirmed!", p.CarDetails),
			HTML: fmt.Sprintf(`<h2>Hello %s,</h2>
<p>We are pleased to confirm your booking for <strong>%s</strong>.</p>
%s
<p>Please visit our location at the specified time to collect your vehicle. If you have any questions, feel free to contact us.</p>
<p>Thank you for choosing our service!</p>
%s`, p.UserName, p.CarDetails, details, signature),
		}, nil
	case "cancelled":
		reason := ""
		if p.RejectionReason != "" {
			reason = fmt.Sprintf("<p><strong>Reason:</strong> %s</p>\n", p.RejectionReason)
		}
		return Email{
			To:      p.To,
			Subject: fmt.Sprintf("Update on Your Booking for %s", p.CarDetails),
			HTML: fmt.Sprintf(`<h2>Hello %s,</h2>
<p>We regret to inform you that your booking for <strong>%s</strong> has been cancelled.</p>
%s<p>Please contact us if you have any questions or would like to make another booking.</p>
%s`, p.UserName, p.CarDetails, reason, signature),
		}, nil
	default:
		return Email{}, errors.New("invalid booking status")
	}
}

func renderAccount(kind Kind, p AccountPayload) Email {
	switch kind {
	case KindRegistrationPending:
		return Email{
			To:      p.To,
			Subject: "Your Registration is Under Review",
			HTML: fmt.Sprintf(`<h2>Hello %s,</h2>
<p>Thank you for registering as an owner on our Car Rental Platform.</p>
<p>Your registration is currently under review. Our admin team will contact you as soon as possible to discuss or set up a meeting to verify your documents.</p>
<p>You will receive another email once your account is approved.</p>
<p>If you have any questions, please contact our support team.</p>
%s`, p.UserName, signature),
		}
	case KindOwnerApproved:
		return Email{
			To:      p.To,
			Subject: "Your Owner Account Has Been Approved!",
			HTML: fmt.Sprintf(`<h2>Hello %s,</h2>
<p>We are pleased to inform you that your owner account has been approved by our admin team.</p>
<p>You can now log in to your account and start adding cars to our platform.</p>
<p>Visit the Owner Panel to get started.</p>
<p>Thank you for joining our platform!</p>
%s`, p.UserName, signature),
		}
	default:
		return Email{
			To:      p.To,
			Subject: "Your Registration Has Been Declined",
			HTML: fmt.Sprintf(`<h2>Hello %s,</h2>
<p>We regret to inform you that your registration on our Car Rental Platform has been declined.</p>
<p>If you believe this is a mistake or would like more information, please contact our support team.</p>
%s`, p.UserName, signature),
		}
	}
}
