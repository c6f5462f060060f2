package user

import (
	"context"

	"github.com/samsedu/rise/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service whose mail side effects run synchronously
// so tests can assert on sent messages.
func NewServiceMock(repo Repository, schools SchoolDirectory, mailSvc core.EmailService) Service {
	return &serviceMock{
		service: service{
			repo:    repo,
			schools: schools,
			mailSvc: mailSvc,
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}
