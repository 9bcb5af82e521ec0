package usecase

import (
	"context"
	"fmt"

	"salon-booking-backend/internal/domain"
	"salon-booking-backend/pkg/apperror"
	"salon-booking-backend/pkg/logger"
	"salon-booking-backend/pkg/validation"
)

// Confirmation messages returned on successful delivery.
const (
	BookingConfirmation = "Booking request received. We will confirm shortly."
	CareerConfirmation  = "Application received. Our academy team will contact you soon."
)

type submissionUsecase struct {
	validator *validation.Validator
	composer  domain.Composer
	notifier  domain.Notifier
}

// NewSubmissionUsecase creates the server side of the submission pipeline.
// validator should be built with validation.WithServerChecks.
func NewSubmissionUsecase(validator *validation.Validator, composer domain.Composer, notifier domain.Notifier) domain.SubmissionUsecase {
	return &submissionUsecase{
		validator: validator,
		composer:  composer,
		notifier:  notifier,
	}
}

// Submit never trusts client-side validation: every rule is evaluated again here.
func (uc *submissionUsecase) Submit(ctx context.Context, sub *domain.FormSubmission) (*domain.SubmissionResult, error) {
	if sub.IsSpam() {
		return nil, apperror.ErrSpamDetected
	}

	if validation.RequiredFor(string(sub.FormType)) == nil {
		return nil, apperror.Validation([]string{"Unknown form type."})
	}

	report := uc.validator.Submission(string(sub.FormType), sub.Fields)
	if !report.Valid() {
		return nil, apperror.Validation(report.Messages())
	}

	msg, err := uc.composer.Compose(sub)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to compose notification: %w", err))
	}

	result := uc.notifier.Deliver(ctx, msg)
	if !result.Delivered {
		logger.Log.ErrorContext(ctx, "Notification delivery failed",
			"reference", sub.ID.String(),
			"form_type", string(sub.FormType),
			"diagnostic", result.Diagnostic,
		)
		return nil, apperror.DeliveryFailure(result.Diagnostic)
	}

	logger.Log.InfoContext(ctx, "Notification delivered",
		"reference", sub.ID.String(),
		"form_type", string(sub.FormType),
	)

	return &domain.SubmissionResult{
		ReferenceID: sub.ID,
		Message:     confirmationFor(sub.FormType),
	}, nil
}

func confirmationFor(ft domain.FormType) string {
	if ft == domain.FormTypeCareerApplication {
		return CareerConfirmation
	}
	return BookingConfirmation
}
