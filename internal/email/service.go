package email

import (
	"context"
)

type Service interface {
	SendReminder(ctx context.Context, to, patientName, when string) error
	SendCustom(ctx context.Context, to, subject, content string) error
}
