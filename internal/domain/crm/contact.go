package crm

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactMethodKind represents the kind of a contact method entry
type ContactMethodKind string

const (
	ContactMethodEmail  ContactMethodKind = "email"
	ContactMethodPhone  ContactMethodKind = "phone"
	ContactMethodMobile ContactMethodKind = "mobile"
	ContactMethodFax    ContactMethodKind = "fax"
)

// ContactMethod is an entity owned by the Contact aggregate. At most one
// method per kind may be primary.
type ContactMethod struct {
	ID        uuid.UUID
	Kind      ContactMethodKind
	Value     string
	IsPrimary bool
	Label     string // Optional, e.g. "work", "home"
}

// AccountLink ties a contact to an account with a role. At most one link
// may be primary.
type AccountLink struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Role      string // e.g. "decision maker", "billing"
	IsPrimary bool
}

// Contact represents a person.
// It is the aggregate root for contact-related operations
type Contact struct {
	shared.TenantAggregateRoot
	FirstName    string
	LastName     string
	Title        string
	AvatarURL    string
	Birthdate    *time.Time
	OwnerID      *uuid.UUID
	TeamID       *uuid.UUID
	Methods      []ContactMethod
	AccountLinks []AccountLink
	Address      Address
	Description  string
	CustomValues map[string]any
}

// NewContact creates a new contact with required fields
func NewContact(tenantID uuid.UUID, firstName, lastName string) (*Contact, error) {
	if err := validateContactLastName(lastName); err != nil {
		return nil, err
	}

	contact := &Contact{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		FirstName:           strings.TrimSpace(firstName),
		LastName:            strings.TrimSpace(lastName),
		Methods:             make([]ContactMethod, 0),
		AccountLinks:        make([]AccountLink, 0),
		CustomValues:        make(map[string]any),
	}

	contact.AddDomainEvent(NewContactCreatedEvent(contact))

	return contact, nil
}

// FullName returns the contact's display name
func (c *Contact) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	return c.FirstName + " " + c.LastName
}

// Update updates the contact's basic information
func (c *Contact) Update(firstName, lastName, title, description string) error {
	if err := validateContactLastName(lastName); err != nil {
		return err
	}

	c.FirstName = strings.TrimSpace(firstName)
	c.LastName = strings.TrimSpace(lastName)
	c.Title = strings.TrimSpace(title)
	c.Description = description
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewContactUpdatedEvent(c))

	return nil
}

// SetAvatarURL sets the contact's avatar URL
func (c *Contact) SetAvatarURL(url string) error {
	if url != "" && len(url) > 500 {
		return shared.NewDomainError("INVALID_AVATAR", "Avatar URL cannot exceed 500 characters")
	}

	c.AvatarURL = url
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetBirthdate sets the contact's birthdate
func (c *Contact) SetBirthdate(date *time.Time) {
	c.Birthdate = date
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetAddress sets the contact's mailing address
func (c *Contact) SetAddress(addr Address) {
	c.Address = addr
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// AssignOwner assigns the contact to an owner and optionally a team
func (c *Contact) AssignOwner(ownerID, teamID *uuid.UUID) {
	c.OwnerID = ownerID
	c.TeamID = teamID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// AddMethod adds a contact method. If marked primary, any existing
// primary of the same kind is demoted so at most one primary per kind
// remains.
func (c *Contact) AddMethod(kind ContactMethodKind, value, label string, isPrimary bool) (*ContactMethod, error) {
	if err := validateContactMethod(kind, value); err != nil {
		return nil, err
	}

	value = strings.TrimSpace(value)
	if kind == ContactMethodEmail {
		value = strings.ToLower(value)
	}

	for _, m := range c.Methods {
		if m.Kind == kind && strings.EqualFold(m.Value, value) {
			return nil, shared.NewDomainError("METHOD_ALREADY_EXISTS", "Contact already has this method")
		}
	}

	// First method of a kind is primary by default
	if !isPrimary && !c.hasMethodOfKind(kind) {
		isPrimary = true
	}
	if isPrimary {
		c.demotePrimary(kind)
	}

	method := ContactMethod{
		ID:        uuid.New(),
		Kind:      kind,
		Value:     value,
		IsPrimary: isPrimary,
		Label:     strings.TrimSpace(label),
	}

	c.Methods = append(c.Methods, method)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return &method, nil
}

// RemoveMethod removes a contact method
func (c *Contact) RemoveMethod(methodID uuid.UUID) error {
	found := false
	newMethods := make([]ContactMethod, 0, len(c.Methods))
	for _, m := range c.Methods {
		if m.ID != methodID {
			newMethods = append(newMethods, m)
		} else {
			found = true
		}
	}

	if !found {
		return shared.NewDomainError("METHOD_NOT_FOUND", "Contact method not found")
	}

	c.Methods = newMethods
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetPrimaryMethod marks a method as the primary for its kind
func (c *Contact) SetPrimaryMethod(methodID uuid.UUID) error {
	idx := -1
	for i, m := range c.Methods {
		if m.ID == methodID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return shared.NewDomainError("METHOD_NOT_FOUND", "Contact method not found")
	}

	c.demotePrimary(c.Methods[idx].Kind)
	c.Methods[idx].IsPrimary = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// PrimaryMethod returns the primary method of the given kind, if any
func (c *Contact) PrimaryMethod(kind ContactMethodKind) *ContactMethod {
	for i := range c.Methods {
		if c.Methods[i].Kind == kind && c.Methods[i].IsPrimary {
			return &c.Methods[i]
		}
	}
	return nil
}

// PrimaryEmail returns the primary email value or empty string
func (c *Contact) PrimaryEmail() string {
	if m := c.PrimaryMethod(ContactMethodEmail); m != nil {
		return m.Value
	}
	return ""
}

// LinkAccount links the contact to an account with a role. If marked
// primary, any existing primary link is demoted.
func (c *Contact) LinkAccount(accountID uuid.UUID, role string, isPrimary bool) (*AccountLink, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}

	for _, l := range c.AccountLinks {
		if l.AccountID == accountID {
			return nil, shared.NewDomainError("ACCOUNT_ALREADY_LINKED", "Contact is already linked to this account")
		}
	}

	// First link is primary by default
	if len(c.AccountLinks) == 0 {
		isPrimary = true
	}
	if isPrimary {
		for i := range c.AccountLinks {
			c.AccountLinks[i].IsPrimary = false
		}
	}

	link := AccountLink{
		ID:        uuid.New(),
		AccountID: accountID,
		Role:      strings.TrimSpace(role),
		IsPrimary: isPrimary,
	}

	c.AccountLinks = append(c.AccountLinks, link)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewContactAccountLinkedEvent(c, accountID))

	return &link, nil
}

// UnlinkAccount removes an account link
func (c *Contact) UnlinkAccount(accountID uuid.UUID) error {
	found := false
	newLinks := make([]AccountLink, 0, len(c.AccountLinks))
	for _, l := range c.AccountLinks {
		if l.AccountID != accountID {
			newLinks = append(newLinks, l)
		} else {
			found = true
		}
	}

	if !found {
		return shared.NewDomainError("ACCOUNT_NOT_LINKED", "Contact is not linked to this account")
	}

	c.AccountLinks = newLinks
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetPrimaryAccount marks an account link as the primary one
func (c *Contact) SetPrimaryAccount(accountID uuid.UUID) error {
	idx := -1
	for i, l := range c.AccountLinks {
		if l.AccountID == accountID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return shared.NewDomainError("ACCOUNT_NOT_LINKED", "Contact is not linked to this account")
	}

	for i := range c.AccountLinks {
		c.AccountLinks[i].IsPrimary = false
	}
	c.AccountLinks[idx].IsPrimary = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// PrimaryAccount returns the primary account link, if any
func (c *Contact) PrimaryAccount() *AccountLink {
	for i := range c.AccountLinks {
		if c.AccountLinks[i].IsPrimary {
			return &c.AccountLinks[i]
		}
	}
	return nil
}

// SetCustomValues replaces the contact's custom field values. Values are
// expected to be normalized against field metadata before this call.
func (c *Contact) SetCustomValues(values map[string]any) {
	if values == nil {
		values = make(map[string]any)
	}
	c.CustomValues = values
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func (c *Contact) hasMethodOfKind(kind ContactMethodKind) bool {
	for _, m := range c.Methods {
		if m.Kind == kind {
			return true
		}
	}
	return false
}

func (c *Contact) demotePrimary(kind ContactMethodKind) {
	for i := range c.Methods {
		if c.Methods[i].Kind == kind {
			c.Methods[i].IsPrimary = false
		}
	}
}

// Validation functions

func validateContactLastName(lastName string) error {
	lastName = strings.TrimSpace(lastName)
	if lastName == "" {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact last name cannot be empty")
	}
	if len(lastName) > 200 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact last name cannot exceed 200 characters")
	}
	return nil
}

func validateContactMethod(kind ContactMethodKind, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return shared.NewDomainError("INVALID_METHOD_VALUE", "Contact method value cannot be empty")
	}

	switch kind {
	case ContactMethodEmail:
		return validateCRMEmail(value)
	case ContactMethodPhone, ContactMethodMobile, ContactMethodFax:
		return validatePhone(value)
	default:
		return shared.NewDomainError("INVALID_METHOD_KIND", "Invalid contact method kind")
	}
}
