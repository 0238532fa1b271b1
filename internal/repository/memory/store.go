// Package memory provides in-process implementations of the repository
// interfaces. It backs the service when no Postgres DSN is configured and is
// used by tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
)

// Store holds every table behind a single lock.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	nextID     map[string]int64
	categories map[int64]domain.Category
	admins     map[int64]domain.Admin
	tickets    map[int64]domain.Ticket
	comments   []domain.Comment
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the time source used for generated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:        time.Now,
		nextID:     map[string]int64{},
		categories: map[int64]domain.Category{},
		admins:     map[int64]domain.Admin{},
		tickets:    map[int64]domain.Ticket{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Admins exposes the admin table.
func (s *Store) Admins() repository.AdminRepository { return &adminRepo{s} }

// Tickets exposes the ticket table.
func (s *Store) Tickets() repository.TicketRepository { return &ticketRepo{s} }

// Comments exposes the comment table.
func (s *Store) Comments() repository.CommentRepository { return &commentRepo{s} }

// Categories exposes the category table.
func (s *Store) Categories() repository.CategoryRepository { return &categoryRepo{s} }

func (s *Store) id(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

func (s *Store) clock() time.Time {
	return s.now().UTC()
}

// --- categories ---

type categoryRepo struct{ s *Store }

func (r *categoryRepo) List(_ context.Context) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *categoryRepo) SeedDefaults(_ context.Context, categories []domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range categories {
		if r.s.categoryByName(c.Name) != nil {
			continue
		}
		c.ID = r.s.id("categories")
		c.CreatedAt = r.s.clock()
		r.s.categories[c.ID] = c
	}
	return nil
}

func (s *Store) categoryByName(name string) *domain.Category {
	for _, c := range s.categories {
		if c.Name == name {
			return &c
		}
	}
	return nil
}

// --- admins ---

type adminRepo struct{ s *Store }

func (r *adminRepo) Create(_ context.Context, admin *domain.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.adminByEmail(admin.Email) != nil {
		return repository.ErrDuplicate
	}
	if admin.CategoryID != nil {
		if _, ok := r.s.categories[*admin.CategoryID]; !ok {
			return repository.ErrInvalidReference
		}
	}
	now := r.s.clock()
	admin.ID = r.s.id("admins")
	admin.CreatedAt = now
	admin.UpdatedAt = now
	stored := *admin
	stored.CategoryName, stored.CategoryColor = nil, nil
	r.s.admins[admin.ID] = stored
	return nil
}

func (r *adminRepo) Update(_ context.Context, admin *domain.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.admins[admin.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if other := r.s.adminByEmail(admin.Email); other != nil && other.ID != admin.ID {
		return repository.ErrDuplicate
	}
	if admin.CategoryID != nil {
		if _, ok := r.s.categories[*admin.CategoryID]; !ok {
			return repository.ErrInvalidReference
		}
	}
	admin.CreatedAt = existing.CreatedAt
	admin.UpdatedAt = r.s.clock()
	stored := *admin
	stored.CategoryName, stored.CategoryColor = nil, nil
	r.s.admins[admin.ID] = stored
	return nil
}

func (r *adminRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.admins[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.admins, id)
	for tid, t := range r.s.tickets {
		if t.AssignedAdminID != nil && *t.AssignedAdminID == id {
			t.AssignedAdminID = nil
			r.s.tickets[tid] = t
		}
	}
	for i := range r.s.comments {
		if c := r.s.comments[i].AdminID; c != nil && *c == id {
			r.s.comments[i].AdminID = nil
		}
	}
	return nil
}

func (r *adminRepo) GetByID(_ context.Context, id int64) (*domain.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.admins[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := r.s.joinAdmin(a)
	return &out, nil
}

func (r *adminRepo) GetByEmail(_ context.Context, email string) (*domain.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a := r.s.adminByEmail(email)
	if a == nil {
		return nil, repository.ErrNotFound
	}
	out := r.s.joinAdmin(*a)
	return &out, nil
}

func (r *adminRepo) List(_ context.Context, filter repository.AdminFilter) ([]domain.Admin, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Admin{}
	for _, a := range r.s.admins {
		if filter.Active != nil && a.IsActive != *filter.Active {
			continue
		}
		if filter.CategoryID != nil && (a.CategoryID == nil || *a.CategoryID != *filter.CategoryID) {
			continue
		}
		out = append(out, r.s.joinAdmin(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.OrderByName {
			if out[i].Name != out[j].Name {
				return out[i].Name < out[j].Name
			}
			return out[i].ID < out[j].ID
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *adminRepo) ListLoads(_ context.Context, categoryID *int64) ([]domain.AdminLoad, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := map[int64]int{}
	for _, t := range r.s.tickets {
		if t.AssignedAdminID != nil && t.Status != domain.TicketStatusClosed {
			counts[*t.AssignedAdminID]++
		}
	}

	out := []domain.AdminLoad{}
	for _, a := range r.s.admins {
		if !a.IsActive {
			continue
		}
		if categoryID != nil && (a.CategoryID == nil || *a.CategoryID != *categoryID) {
			continue
		}
		out = append(out, domain.AdminLoad{AdminID: a.ID, TicketCount: counts[a.ID]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TicketCount != out[j].TicketCount {
			return out[i].TicketCount < out[j].TicketCount
		}
		return out[i].AdminID < out[j].AdminID
	})
	return out, nil
}

func (r *adminRepo) CountActive(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, a := range r.s.admins {
		if a.IsActive {
			n++
		}
	}
	return n, nil
}

func (s *Store) adminByEmail(email string) *domain.Admin {
	for _, a := range s.admins {
		if a.Email == email {
			return &a
		}
	}
	return nil
}

func (s *Store) joinAdmin(a domain.Admin) domain.Admin {
	if a.CategoryID != nil {
		if c, ok := s.categories[*a.CategoryID]; ok {
			name, color := c.Name, c.Color
			a.CategoryName, a.CategoryColor = &name, &color
		}
	}
	return a
}

// --- tickets ---

type ticketRepo struct{ s *Store }

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkTicketRefs(ticket); err != nil {
		return err
	}
	now := r.s.clock()
	ticket.ID = r.s.id("tickets")
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.s.tickets[ticket.ID] = stripTicketJoins(*ticket)
	return nil
}

func (r *ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := r.s.checkTicketRefs(ticket); err != nil {
		return err
	}
	if existing.ResolvedAt != nil {
		ticket.ResolvedAt = existing.ResolvedAt
	}
	ticket.CreatedAt = existing.CreatedAt
	ticket.CustomerName = existing.CustomerName
	ticket.CustomerEmail = existing.CustomerEmail
	ticket.CustomerPhone = existing.CustomerPhone
	ticket.CategoryID = existing.CategoryID
	ticket.UpdatedAt = laterOf(existing.UpdatedAt, r.s.clock())
	r.s.tickets[ticket.ID] = stripTicketJoins(*ticket)
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := r.s.joinTicket(t)
	return &out, nil
}

func (r *ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Ticket{}
	for _, t := range r.s.tickets {
		if filter.CategoryID != nil && (t.CategoryID == nil || *t.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.AssignedAdminID != nil && (t.AssignedAdminID == nil || *t.AssignedAdminID != *filter.AssignedAdminID) {
			continue
		}
		if filter.UnassignedOnly && t.AssignedAdminID != nil {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, t.Status) {
			continue
		}
		out = append(out, r.s.joinTicket(t))
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if filter.OrderByResolved {
			switch {
			case a.ResolvedAt != nil && b.ResolvedAt == nil:
				return true
			case a.ResolvedAt == nil && b.ResolvedAt != nil:
				return false
			case a.ResolvedAt != nil && !a.ResolvedAt.Equal(*b.ResolvedAt):
				return a.ResolvedAt.After(*b.ResolvedAt)
			}
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
			return a.ID > b.ID
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	if filter.Limit > 0 {
		start := filter.Offset
		if start < 0 {
			start = 0
		}
		if start > len(out) {
			start = len(out)
		}
		end := start + filter.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func (s *Store) checkTicketRefs(t *domain.Ticket) error {
	if t.CategoryID != nil {
		if _, ok := s.categories[*t.CategoryID]; !ok {
			return repository.ErrInvalidReference
		}
	}
	if t.AssignedAdminID != nil {
		if _, ok := s.admins[*t.AssignedAdminID]; !ok {
			return repository.ErrInvalidReference
		}
	}
	return nil
}

func (s *Store) joinTicket(t domain.Ticket) domain.Ticket {
	if t.CategoryID != nil {
		if c, ok := s.categories[*t.CategoryID]; ok {
			name, color := c.Name, c.Color
			t.CategoryName, t.CategoryColor = &name, &color
		}
	}
	if t.AssignedAdminID != nil {
		if a, ok := s.admins[*t.AssignedAdminID]; ok {
			name := a.Name
			t.AssignedAdminName = &name
		}
	}
	return t
}

func stripTicketJoins(t domain.Ticket) domain.Ticket {
	t.CategoryName, t.CategoryColor, t.AssignedAdminName = nil, nil, nil
	return t
}

func containsStatus(list []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// --- comments ---

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ticket, ok := r.s.tickets[comment.TicketID]
	if !ok {
		return repository.ErrNotFound
	}
	if comment.AdminID != nil {
		if _, ok := r.s.admins[*comment.AdminID]; !ok {
			return repository.ErrInvalidReference
		}
	}
	comment.ID = r.s.id("comments")
	comment.CreatedAt = r.s.clock()
	if comment.Attachments == nil {
		comment.Attachments = []domain.Attachment{}
	}

	stored := *comment
	stored.Attachments = append([]domain.Attachment(nil), comment.Attachments...)
	stored.AdminName, stored.AdminEmail = nil, nil
	r.s.comments = append(r.s.comments, stored)

	ticket.UpdatedAt = laterOf(ticket.UpdatedAt, comment.CreatedAt)
	r.s.tickets[ticket.ID] = ticket
	return nil
}

func (r *commentRepo) ListByTicket(_ context.Context, ticketID int64, includeInternal bool) ([]domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []domain.Comment{}
	for _, c := range r.s.comments {
		if c.TicketID != ticketID || (c.IsInternal && !includeInternal) {
			continue
		}
		c.Attachments = append([]domain.Attachment{}, c.Attachments...)
		if c.AdminID != nil {
			if a, ok := r.s.admins[*c.AdminID]; ok {
				name, email := a.Name, a.Email
				c.AdminName, c.AdminEmail = &name, &email
			}
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func laterOf(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
