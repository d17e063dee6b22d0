package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iticket/helpdesk/internal/domain"
	"github.com/iticket/helpdesk/internal/events"
	"github.com/iticket/helpdesk/internal/repository"
)

// In-memory repository fakes backing the service tests.

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for _, user := range f.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		out = append(out, *user)
	}
	return out, nil
}

type fakeTemplateRepo struct {
	templates   map[string]*domain.FormTemplate
	submissions map[string]int64
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{
		templates:   make(map[string]*domain.FormTemplate),
		submissions: make(map[string]int64),
	}
}

func (f *fakeTemplateRepo) Create(_ context.Context, template *domain.FormTemplate) error {
	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	template.CreatedAt = time.Now()
	template.UpdatedAt = template.CreatedAt
	f.templates[template.ID] = template
	return nil
}

func (f *fakeTemplateRepo) Update(_ context.Context, template *domain.FormTemplate) error {
	if _, ok := f.templates[template.ID]; !ok {
		return pgx.ErrNoRows
	}
	template.UpdatedAt = time.Now()
	f.templates[template.ID] = template
	return nil
}

func (f *fakeTemplateRepo) GetByID(_ context.Context, id string) (*domain.FormTemplate, error) {
	template, ok := f.templates[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return template, nil
}

func (f *fakeTemplateRepo) List(_ context.Context) ([]domain.FormTemplate, error) {
	out := make([]domain.FormTemplate, 0, len(f.templates))
	for _, template := range f.templates {
		out = append(out, *template)
	}
	return out, nil
}

func (f *fakeTemplateRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.templates[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.templates, id)
	return nil
}

func (f *fakeTemplateRepo) CountSubmissions(_ context.Context, templateID string) (int64, error) {
	return f.submissions[templateID], nil
}

// fakeTicketRepo joins through the assignment fake so the helpdesk list
// scope behaves like the SQL implementation's JOIN on ticket_assignments.
type fakeTicketRepo struct {
	tickets     map[string]*domain.Ticket
	assignments *fakeAssignmentRepo
}

func newFakeTicketRepo(assignments *fakeAssignmentRepo) *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:     make(map[string]*domain.Ticket),
		assignments: assignments,
	}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	f.tickets[ticket.ID] = ticket
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	f.tickets[ticket.ID] = ticket
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ticket, nil
}

func (f *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	out := make([]domain.Ticket, 0, len(f.tickets))
	for _, ticket := range f.tickets {
		if filter.SubmitterID != nil && ticket.SubmitterID != *filter.SubmitterID {
			continue
		}
		if filter.TemplateID != nil && ticket.TemplateID != *filter.TemplateID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, ticket.Priority) {
			continue
		}
		if filter.AssignedHelpdeskID != nil {
			assignment, ok := f.assignments.assignments[ticket.ID]
			if !ok || assignment.HelpdeskID != *filter.AssignedHelpdeskID {
				continue
			}
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (f *fakeTicketRepo) CountByStatus(_ context.Context) (map[domain.TicketStatus]int64, error) {
	counts := make(map[domain.TicketStatus]int64)
	for _, ticket := range f.tickets {
		counts[ticket.Status]++
	}
	return counts, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func containsPriority(priorities []domain.TicketPriority, priority domain.TicketPriority) bool {
	for _, p := range priorities {
		if p == priority {
			return true
		}
	}
	return false
}

type fakeAuditRepo struct {
	entries []domain.TicketAudit
}

func (f *fakeAuditRepo) Create(_ context.Context, audit *domain.TicketAudit) error {
	if audit.ID == "" {
		audit.ID = uuid.NewString()
	}
	audit.CreatedAt = time.Now()
	f.entries = append(f.entries, *audit)
	return nil
}

func (f *fakeAuditRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketAudit, error) {
	out := make([]domain.TicketAudit, 0)
	for _, entry := range f.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeAuditRepo) byTicket(ticketID string) []domain.TicketAudit {
	entries, _ := f.ListByTicket(context.Background(), ticketID)
	return entries
}

// fakeAssignmentRepo mirrors the transactional contract: the audit row the
// builder produces is recorded atomically with the assignment change.
type fakeAssignmentRepo struct {
	assignments map[string]*domain.TicketAssignment
	audits      *fakeAuditRepo
}

func newFakeAssignmentRepo(audits *fakeAuditRepo) *fakeAssignmentRepo {
	return &fakeAssignmentRepo{
		assignments: make(map[string]*domain.TicketAssignment),
		audits:      audits,
	}
}

func (f *fakeAssignmentRepo) GetByTicket(_ context.Context, ticketID string) (*domain.TicketAssignment, error) {
	assignment, ok := f.assignments[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return assignment, nil
}

func (f *fakeAssignmentRepo) ListByHelpdesk(_ context.Context, helpdeskID string) ([]domain.TicketAssignment, error) {
	out := make([]domain.TicketAssignment, 0)
	for _, assignment := range f.assignments {
		if assignment.HelpdeskID == helpdeskID {
			out = append(out, *assignment)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) AssignWithAudit(ctx context.Context, assignment *domain.TicketAssignment, buildAudit repository.AuditBuilder) error {
	previous := f.assignments[assignment.TicketID]
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	assignment.AssignedAt = time.Now()
	f.assignments[assignment.TicketID] = assignment
	if audit := buildAudit(previous); audit != nil {
		return f.audits.Create(ctx, audit)
	}
	return nil
}

func (f *fakeAssignmentRepo) UnassignWithAudit(ctx context.Context, ticketID string, buildAudit repository.AuditBuilder) error {
	removed, ok := f.assignments[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(f.assignments, ticketID)
	if audit := buildAudit(removed); audit != nil {
		return f.audits.Create(ctx, audit)
	}
	return nil
}

type fakeMessageRepo struct {
	messages []domain.Message
}

func (f *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = time.Now()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Message, error) {
	out := make([]domain.Message, 0)
	for _, msg := range f.messages {
		if msg.TicketID != nil && *msg.TicketID == ticketID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) ListDirect(_ context.Context, userID, peerID string) ([]domain.Message, error) {
	out := make([]domain.Message, 0)
	for _, msg := range f.messages {
		if msg.TicketID != nil || msg.SenderID == nil || msg.ReceiverID == nil {
			continue
		}
		if (*msg.SenderID == userID && *msg.ReceiverID == peerID) ||
			(*msg.SenderID == peerID && *msg.ReceiverID == userID) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, readerID string, ticketID, peerID *string) (int64, error) {
	var count int64
	for i := range f.messages {
		msg := &f.messages[i]
		if msg.Read || (msg.SenderID != nil && *msg.SenderID == readerID) {
			continue
		}
		if ticketID != nil && (msg.TicketID == nil || *msg.TicketID != *ticketID) {
			continue
		}
		if ticketID == nil && peerID != nil {
			if msg.SenderID == nil || *msg.SenderID != *peerID ||
				msg.ReceiverID == nil || *msg.ReceiverID != readerID {
				continue
			}
		}
		msg.Read = true
		count++
	}
	return count, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.Event, 0)
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
