package user

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/samsedu/rise/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		// RegisterUser persists a self-registered user, assigning the
		// bootstrap role atomically: superAdmin if no superAdmin exists
		// yet, unassigned otherwise.
		RegisterUser(ctx context.Context, usr User) (User, error)
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on User.Email.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		UpdateOrCreateUser(ctx context.Context, usr User) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
	}

	// SchoolDirectory resolves school existence for provisioning checks.
	SchoolDirectory interface {
		SchoolExists(ctx context.Context, id string) (bool, error)
	}

	Service interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		Register(ctx context.Context, ru RegisterUser) (User, error)
		Provision(ctx context.Context, caller User, pu ProvisionUser) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		Update(ctx context.Context, id string, uu UpdateUser) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetUserPassword) error
	}

	service struct {
		repo    Repository
		schools SchoolDirectory
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, schools SchoolDirectory, mailSvc core.EmailService) Service {
	return &service{
		repo:    repo,
		schools: schools,
		mailSvc: mailSvc,
	}
}

func (svc *service) CheckEmailUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a self-service account. The very first principal in an
// empty directory is granted superAdmin; everyone else starts unassigned
// until an administrator assigns them a role.
func (svc *service) Register(ctx context.Context, ru RegisterUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Email:     ru.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	if err := usr.SetPassword(ru.Password); err != nil {
		return User{}, err
	}
	return svc.repo.RegisterUser(ctx, usr)
}

// Provision creates a principal on behalf of an administrator and sends a
// "set your password" welcome email. The caller must pass the authorization
// gate; the gate is re-checked here so the service is safe to call directly.
//
// Email delivery is best-effort: the account creation is the contract, the
// notification is advisory and its failure is only logged by the mail service.
func (svc *service) Provision(ctx context.Context, caller User, pu ProvisionUser) (User, error) {
	if err := CanProvision(caller, pu.Role, pu.SchoolID); err != nil {
		return User{}, err
	}

	if exists, err := svc.schools.SchoolExists(ctx, pu.SchoolID); err != nil {
		return User{}, err
	} else if !exists {
		return User{}, core.NewValidationError(nil, core.FieldError{Field: "school_id", Error: "school not found"})
	}

	now := time.Now().UTC()
	usr := User{
		Email:     pu.Email,
		Role:      pu.Role,
		SchoolID:  pu.SchoolID,
		CreatedBy: caller.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)
	// no password yet; the welcome email carries a set-password link

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}

	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

func (svc *service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Role:      uu.Role,
		SchoolID:  uu.SchoolID,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

func (svc *service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	return svc.repo.SetLastLogin(ctx, usr)
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	uid, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(ctx, uid)
	if err != nil {
		if err == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}

	if err = usr.SetPassword(rp.Password); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	usr.SetActive(true)
	_, err = svc.repo.UpdateUser(ctx, usr, usr.IsActive)
	return err
}

type mailTokenData struct {
	UID   string
	Token string
	Email string
}

func (svc *service) tokenData(usr User) (mailTokenData, error) {
	token, err := MakeToken(usr)
	if err != nil {
		return mailTokenData{}, err
	}
	return mailTokenData{
		UID:   EncodeUID(usr),
		Token: token,
		Email: usr.Email,
	}, nil
}

func (svc *service) sendWelcomeMail(usr User) {
	data, err := svc.tokenData(usr)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: usr.Email}},
		Subject:      "Welcome! Set Your Password",
		TemplateName: "welcome",
		TemplateData: data,
	})
}

func (svc *service) sendPasswordResetMail(usr User) {
	data, err := svc.tokenData(usr)
	if err != nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: data,
	})
}
