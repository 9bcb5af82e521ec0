package usecase

import "context"

// MailReadiness is satisfied by the SMTP sender.
type MailReadiness interface {
	IsConfigured() bool
}

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}

type healthUsecase struct {
	mail MailReadiness
}

func NewHealthUsecase(mail MailReadiness) HealthUsecase {
	return &healthUsecase{mail: mail}
}

// Check reports degraded when submissions would fail at delivery.
func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	if u.mail == nil || !u.mail.IsConfigured() {
		return map[string]string{
			"status": "degraded",
			"mail":   "not_configured",
		}
	}
	return map[string]string{
		"status": "ok",
		"mail":   "configured",
	}
}
