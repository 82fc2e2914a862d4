package core

import "context"

type (
	// BillingPortal is the payment-provider collaborator. The provider hosts
	// the whole billing UI; this layer only asks for a portal session URL.
	BillingPortal interface {
		PortalURL(ctx context.Context, customerID string) (string, error)
	}

	// ReportGenerator is the hosted AI report-generation collaborator.
	ReportGenerator interface {
		Generate(ctx context.Context, studentID string) (Report, error)
	}

	Report struct {
		StudentID string `json:"student_id"`
		Content   string `json:"content"`
	}
)
