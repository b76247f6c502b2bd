// Package mockapi is an in-memory implementation of the invoice REST API,
// seeded with the fixture dataset. It backs local development and tests.
package mockapi

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/ErlanBelekov/invoice-console/internal/mockdata"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo1234"
	DemoName     = "Demo User"
)

var errInvoiceDeleteDenied = errors.New("only draft invoices can be deleted")

type userRecord struct {
	user         domain.User
	passwordHash []byte
}

type invoiceRecord struct {
	invoice domain.Invoice
	ownerID string
}

// Store holds every resource of the mock API behind one lock.
type Store struct {
	mu          sync.RWMutex
	users       map[string]*userRecord
	byEmail     map[string]string
	invoices    map[string]*invoiceRecord
	order       []string
	audit       map[string][]domain.AuditLogEntry
	revoked     map[string]time.Time
	avatars     map[string]domain.Upload
	lastInvoice int
	bcryptCost  int
	now         func() time.Time
}

// NewStore returns an empty store. cost is the bcrypt cost for new passwords.
func NewStore(cost int) *Store {
	return &Store{
		users:      make(map[string]*userRecord),
		byEmail:    make(map[string]string),
		invoices:   make(map[string]*invoiceRecord),
		audit:      make(map[string][]domain.AuditLogEntry),
		revoked:    make(map[string]time.Time),
		avatars:    make(map[string]domain.Upload),
		bcryptCost: cost,
		now:        time.Now,
	}
}

// NewSeededStore returns a store holding the demo user, who owns the fixture
// invoices.
func NewSeededStore(cost int) (*Store, error) {
	s := NewStore(cost)
	demo, err := s.CreateUser(DemoName, DemoEmail, DemoPassword)
	if err != nil {
		return nil, fmt.Errorf("seed demo user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range mockdata.Invoices() {
		s.insertLocked(inv, demo.ID)
		s.appendAuditLocked(inv.ID, demo, domain.AuditCreated, "Invoice created", nil, inv.IssueDate.Time)
		if n, err := strconv.Atoi(inv.ID); err == nil && n > s.lastInvoice {
			s.lastInvoice = n
		}
	}
	return s, nil
}

// ---- users ----

func (s *Store) CreateUser(name, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return nil, domain.ErrEmailTaken
	}
	u := domain.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Email:     email,
		CreatedAt: s.now(),
	}
	s.users[u.ID] = &userRecord{user: u, passwordHash: hash}
	s.byEmail[email] = u.ID
	return &u, nil
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// are indistinguishable.
func (s *Store) Authenticate(email, password string) (*domain.User, error) {
	s.mu.RLock()
	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	var rec userRecord
	if ok {
		rec = *s.users[id]
	}
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return &rec.user, nil
}

func (s *Store) User(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := rec.user
	return &u, nil
}

// UpdateProfile applies update to the user. avatarURL replaces the stored
// URL only when non-empty.
func (s *Store) UpdateProfile(id string, update domain.ProfileUpdate, avatarURL string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := &rec.user
	if update.Name != "" {
		u.Name = update.Name
	}
	u.Description = update.Description
	u.BusinessName = update.BusinessName
	u.VATNumber = update.VATNumber
	u.RegistrationNumber = update.RegistrationNumber
	u.Address = update.Address
	u.City = update.City
	u.PostalCode = update.PostalCode
	u.Country = update.Country
	u.Phone = update.Phone
	if avatarURL != "" {
		u.AvatarURL = avatarURL
	}
	out := *u
	return &out, nil
}

// SaveAvatar keeps the upload and returns the file name it is served under.
func (s *Store) SaveAvatar(up domain.Upload) string {
	name := uuid.NewString() + strings.ToLower(path.Ext(up.Filename))
	s.mu.Lock()
	s.avatars[name] = up
	s.mu.Unlock()
	return name
}

func (s *Store) Avatar(name string) (domain.Upload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	up, ok := s.avatars[name]
	return up, ok
}

// ---- refresh token revocation ----

func (s *Store) Revoke(jti string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = expiresAt
	now := s.now()
	for id, exp := range s.revoked {
		if exp.Before(now) {
			delete(s.revoked, id)
		}
	}
}

func (s *Store) Revoked(jti string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[jti]
	return ok
}

// ---- invoices ----

// Invoices lists the invoices owned by userID, newest issue date first.
func (s *Store) Invoices(userID string) []domain.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Invoice, 0, len(s.order))
	for _, id := range s.order {
		rec := s.invoices[id]
		if rec.ownerID == userID {
			out = append(out, copyInvoice(rec.invoice))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IssueDate.After(out[j].IssueDate.Time)
	})
	return out
}

func (s *Store) Invoice(userID, id string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, err := s.ownedLocked(userID, id)
	if err != nil {
		return nil, err
	}
	inv := copyInvoice(rec.invoice)
	return &inv, nil
}

func (s *Store) CreateInvoice(actor *domain.User, inv domain.Invoice) *domain.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastInvoice++
	inv.ID = strconv.Itoa(s.lastInvoice)
	now := s.now()
	inv.CreatedAt, inv.UpdatedAt = now, now
	assignItemIDs(inv.Items)
	inv.Recalculate()

	s.insertLocked(inv, actor.ID)
	s.appendAuditLocked(inv.ID, actor, domain.AuditCreated, "Invoice created", nil, now)
	out := copyInvoice(inv)
	return &out
}

// UpdateInvoice replaces the editable fields of a draft and records what changed.
func (s *Store) UpdateInvoice(actor *domain.User, id string, next domain.Invoice) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.ownedLocked(actor.ID, id)
	if err != nil {
		return nil, err
	}
	if !rec.invoice.Editable() {
		return nil, domain.ErrInvoiceNotEditable
	}

	prev := rec.invoice
	next.ID = prev.ID
	next.CreatedAt = prev.CreatedAt
	next.UpdatedAt = s.now()
	assignItemIDs(next.Items)
	next.Recalculate()

	changes := diff(prev, next)
	if len(changes) > 0 {
		action, desc := domain.AuditUpdated, "Invoice updated"
		if _, ok := changes["status"]; ok && len(changes) == 1 {
			action = domain.AuditStatusChanged
			desc = fmt.Sprintf("Status changed from %s to %s", prev.Status, next.Status)
		}
		s.appendAuditLocked(id, actor, action, desc, changes, next.UpdatedAt)
	}
	rec.invoice = next
	out := copyInvoice(next)
	return &out, nil
}

func (s *Store) DeleteInvoice(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.ownedLocked(userID, id)
	if err != nil {
		return err
	}
	if !rec.invoice.Editable() {
		return errInvoiceDeleteDenied
	}
	delete(s.invoices, id)
	delete(s.audit, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) AuditLog(userID, id string) ([]domain.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.ownedLocked(userID, id); err != nil {
		return nil, err
	}
	entries := s.audit[id]
	out := make([]domain.AuditLogEntry, len(entries))
	// newest first
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out, nil
}

// MarkOverdue flips every sent invoice whose due date is before today to
// overdue and returns how many changed.
func (s *Store) MarkOverdue(today domain.Date) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for _, id := range s.order {
		rec := s.invoices[id]
		if !rec.invoice.Overdue(today) {
			continue
		}
		rec.invoice.Status = domain.StatusOverdue
		rec.invoice.UpdatedAt = now
		s.appendAuditLocked(id, nil, domain.AuditStatusChanged,
			"Status changed from sent to overdue",
			map[string]domain.FieldChange{"status": {Old: domain.StatusSent, New: domain.StatusOverdue}},
			now,
		)
		n++
	}
	return n
}

func (s *Store) ownedLocked(userID, id string) (*invoiceRecord, error) {
	rec, ok := s.invoices[id]
	if !ok || rec.ownerID != userID {
		return nil, domain.ErrInvoiceNotFound
	}
	return rec, nil
}

func (s *Store) insertLocked(inv domain.Invoice, ownerID string) {
	inv.CanEdit = inv.Editable()
	s.invoices[inv.ID] = &invoiceRecord{invoice: inv, ownerID: ownerID}
	s.order = append(s.order, inv.ID)
}

// appendAuditLocked records an entry. A nil actor is the system.
func (s *Store) appendAuditLocked(invoiceID string, actor *domain.User, action domain.AuditAction, desc string, changes map[string]domain.FieldChange, at time.Time) {
	e := domain.AuditLogEntry{
		ID:          uuid.NewString(),
		Action:      action,
		Timestamp:   at,
		Changes:     changes,
		Description: desc,
		UserName:    "System",
	}
	if e.Changes == nil {
		e.Changes = map[string]domain.FieldChange{}
	}
	if actor != nil {
		e.UserName, e.UserEmail = actor.Name, actor.Email
	}
	s.audit[invoiceID] = append(s.audit[invoiceID], e)
}

func diff(prev, next domain.Invoice) map[string]domain.FieldChange {
	changes := map[string]domain.FieldChange{}
	str := func(key, a, b string) {
		if a != b {
			changes[key] = domain.FieldChange{Old: a, New: b}
		}
	}
	str("invoice_number", prev.InvoiceNumber, next.InvoiceNumber)
	str("client_name", prev.ClientName, next.ClientName)
	str("client_email", prev.ClientEmail, next.ClientEmail)
	str("client_address", prev.ClientAddress, next.ClientAddress)
	str("status", string(prev.Status), string(next.Status))
	str("issue_date", prev.IssueDate.String(), next.IssueDate.String())
	str("due_date", prev.DueDate.String(), next.DueDate.String())
	str("notes", prev.Notes, next.Notes)
	if !prev.Amount.Equal(next.Amount) {
		changes["amount"] = domain.FieldChange{Old: prev.Amount.StringFixed(2), New: next.Amount.StringFixed(2)}
	}
	if len(prev.Items) != len(next.Items) {
		changes["items"] = domain.FieldChange{Old: len(prev.Items), New: len(next.Items)}
	}
	return changes
}

func assignItemIDs(items []domain.LineItem) {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}
}

func copyInvoice(inv domain.Invoice) domain.Invoice {
	inv.Items = append([]domain.LineItem(nil), inv.Items...)
	return inv
}
