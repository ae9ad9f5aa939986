package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/openkcm/tenancy/internal/errs"
	"github.com/openkcm/tenancy/internal/model"
	"github.com/openkcm/tenancy/utils/ptr"
	"github.com/openkcm/tenancy/utils/sanitise"
)

const (
	MinNameLength     = 2
	MaxNameLength     = 100
	MinFullNameLength = 2
	MaxFullNameLength = 50
	MinPasswordLength = 8
	MaxPasswordLength = 50
	MaxEmailLength    = 254
	MinMaxUsers       = 10
	MaxMaxUsers       = 10000
	MinMaxStorage     = model.GiB
	MaxMaxStorage     = model.TiB
)

const (
	FieldName          = "name"
	FieldDomain        = "domain"
	FieldPlanType      = "plan_type"
	FieldMaxUsers      = "max_users"
	FieldMaxStorage    = "max_storage"
	FieldSettings      = "settings"
	FieldAdminFullName = "admin_user.full_name"
	FieldAdminEmail    = "admin_user.email"
	FieldAdminPassword = "admin_user.password"
	FieldAdminPhone    = "admin_user.phone"
)

var (
	domainPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?(\.[a-zA-Z0-9]([a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])?)*$`)
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	mobilePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)
)

// PhoneValidator decides whether a phone number is acceptable. Phone
// formats are regional so the check is pluggable.
type PhoneValidator interface {
	ValidPhone(phone string) bool
}

type PhoneValidatorFunc func(phone string) bool

func (f PhoneValidatorFunc) ValidPhone(phone string) bool {
	return f(phone)
}

// MobilePhone accepts 11 digit mobile numbers starting with 13 to 19.
var MobilePhone = PhoneValidatorFunc(mobilePattern.MatchString)

type Validator struct {
	phone PhoneValidator
}

type Option func(*Validator)

func WithPhoneValidator(p PhoneValidator) Option {
	return func(v *Validator) {
		v.phone = p
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{phone: MobilePhone}
	for _, opt := range opts {
		opt(v)
	}

	return v
}

// ValidateCreate normalises the input in place and reports every invalid
// field of a registration.
func (v *Validator) ValidateCreate(in *model.TenantCreate) error {
	vErr := &errs.ValidationError{}

	in.Name = strings.TrimSpace(in.Name)
	in.Domain = normalise(in.Domain)
	in.AvatarURL = normalise(in.AvatarURL)

	validateName(vErr, in.Name)
	validateDomain(vErr, in.Domain)

	if in.PlanType == "" {
		in.PlanType = model.PlanTypeBasic
	}

	validatePlan(vErr, in.PlanType)
	validateLimits(vErr, in.MaxUsers, in.MaxStorage)
	validateSettings(vErr, in.Settings)
	v.validateAdmin(vErr, &in.AdminUser)

	return vErr.OrNil()
}

// ValidateUpdate applies the registration rules to the fields present.
func (v *Validator) ValidateUpdate(in *model.TenantUpdate) error {
	vErr := &errs.ValidationError{}

	if in.Name != nil {
		in.Name = ptr.PointTo(strings.TrimSpace(*in.Name))
		validateName(vErr, *in.Name)
	}

	in.Domain = normaliseKeepEmpty(in.Domain)
	if in.Domain != nil && *in.Domain != "" {
		validateDomain(vErr, in.Domain)
	}

	in.AvatarURL = normaliseKeepEmpty(in.AvatarURL)

	if in.PlanType != nil {
		validatePlan(vErr, *in.PlanType)
	}

	validateLimits(vErr, in.MaxUsers, in.MaxStorage)
	validateSettings(vErr, in.Settings)

	return vErr.OrNil()
}

func validateName(vErr *errs.ValidationError, name string) {
	n := utf8.RuneCountInString(name)

	switch {
	case n < MinNameLength || n > MaxNameLength:
		vErr.Add(FieldName, "must be between 2 and 100 characters")
	case sanitise.HasMarkup(name):
		vErr.Add(FieldName, "must not contain markup")
	}
}

func validateDomain(vErr *errs.ValidationError, domain *string) {
	if domain == nil {
		return
	}

	if len(*domain) > 253 || !domainPattern.MatchString(*domain) {
		vErr.Add(FieldDomain, "must be a valid domain name")
	}
}

func validatePlan(vErr *errs.ValidationError, plan model.PlanType) {
	if plan.Validate() != nil {
		vErr.Add(FieldPlanType, "must be one of basic, pro, enterprise")
	}
}

func validateLimits(vErr *errs.ValidationError, maxUsers *int, maxStorage *int64) {
	if maxUsers != nil && (*maxUsers < MinMaxUsers || *maxUsers > MaxMaxUsers) {
		vErr.Add(FieldMaxUsers, "must be between 10 and 10000")
	}

	if maxStorage != nil && (*maxStorage < MinMaxStorage || *maxStorage > MaxMaxStorage) {
		vErr.Add(FieldMaxStorage, "must be between 1073741824 and 1099511627776 bytes")
	}
}

func validateSettings(vErr *errs.ValidationError, settings []byte) {
	if len(settings) == 0 {
		return
	}

	trimmed := strings.TrimSpace(string(settings))
	if !strings.HasPrefix(trimmed, "{") && trimmed != "null" {
		vErr.Add(FieldSettings, "must be a JSON object")
	}
}

func (v *Validator) validateAdmin(vErr *errs.ValidationError, admin *model.AdminUserCreate) {
	admin.FullName = strings.TrimSpace(admin.FullName)
	admin.Email = strings.TrimSpace(admin.Email)
	admin.Phone = normalise(admin.Phone)

	n := utf8.RuneCountInString(admin.FullName)
	switch {
	case n < MinFullNameLength || n > MaxFullNameLength:
		vErr.Add(FieldAdminFullName, "must be between 2 and 50 characters")
	case sanitise.HasMarkup(admin.FullName):
		vErr.Add(FieldAdminFullName, "must not contain markup")
	}

	switch {
	case len(admin.Email) > MaxEmailLength:
		vErr.Add(FieldAdminEmail, "must be at most 254 characters")
	case !emailPattern.MatchString(admin.Email):
		vErr.Add(FieldAdminEmail, "must be a valid email address")
	}

	validatePassword(vErr, admin.Password)

	if admin.Phone != nil && !v.phone.ValidPhone(*admin.Phone) {
		vErr.Add(FieldAdminPhone, "must be a valid mobile number")
	}
}

func validatePassword(vErr *errs.ValidationError, password string) {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		vErr.Add(FieldAdminPassword, "must be between 8 and 50 characters")
		return
	}

	var upper, lower, digit bool

	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	if !upper || !lower || !digit {
		vErr.Add(FieldAdminPassword, "must contain an uppercase letter, a lowercase letter and a digit")
	}
}

// normalise trims the value and drops it when empty.
func normalise(s *string) *string {
	return ptr.EmptyToNil(s)
}

// normaliseKeepEmpty trims the value but keeps an empty string, which an
// update uses to clear the field.
func normaliseKeepEmpty(s *string) *string {
	if s == nil {
		return nil
	}

	return ptr.PointTo(strings.TrimSpace(*s))
}
