package domain

import (
	"github.com/google/uuid"

	dErrors "epiaudit/pkg/domain-errors"
)

// Typed IDs prevent cross-entity assignment at compile time. All IDs are
// UUIDs; parsing enforces the invariant that IDs are valid, non-nil UUIDs at
// trust boundaries.
type (
	// CaseID identifies a child registered with the audit.
	CaseID uuid.UUID
	// RegistrationID identifies one case's enrolment in one cohort.
	RegistrationID uuid.UUID
	// OrganisationID identifies a hospital site.
	OrganisationID uuid.UUID
)

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id is required", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id is not a valid UUID", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id must not be the nil UUID", kind)
	}
	return u, nil
}

// ParseCaseID validates and returns a CaseID.
func ParseCaseID(s string) (CaseID, error) {
	u, err := parseUUID("case", s)
	return CaseID(u), err
}

// ParseRegistrationID validates and returns a RegistrationID.
func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseUUID("registration", s)
	return RegistrationID(u), err
}

// ParseOrganisationID validates and returns an OrganisationID.
func ParseOrganisationID(s string) (OrganisationID, error) {
	u, err := parseUUID("organisation", s)
	return OrganisationID(u), err
}

func (id CaseID) String() string         { return uuid.UUID(id).String() }
func (id RegistrationID) String() string { return uuid.UUID(id).String() }
func (id OrganisationID) String() string { return uuid.UUID(id).String() }

func (id CaseID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id RegistrationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id OrganisationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// The typed IDs travel through JSON as their canonical string form.

func (id CaseID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id RegistrationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id OrganisationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *CaseID) UnmarshalText(b []byte) error {
	parsed, err := ParseCaseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *RegistrationID) UnmarshalText(b []byte) error {
	parsed, err := ParseRegistrationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *OrganisationID) UnmarshalText(b []byte) error {
	parsed, err := ParseOrganisationID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
