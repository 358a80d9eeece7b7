package contact

import (
	"context"
	"misikaMarket/business/notification"
	"misikaMarket/domain"
	"misikaMarket/pkg/logger"

	"github.com/google/uuid"
)

// ContactRepository contract interface
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	List(ctx context.Context, isRead *bool, page domain.PageRequest) ([]domain.Contact, int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) (domain.Contact, error)
}

// Notifier contract interface
type Notifier interface {
	Enqueue(n domain.Notification)
}

const DefaultPageSize = 20

type contactService struct {
	contactRepo ContactRepository
	notifier    Notifier
	adminEmail  string
}

func NewContactService(contactRepo ContactRepository, notifier Notifier, adminEmail string) *contactService {
	return &contactService{
		contactRepo: contactRepo,
		notifier:    notifier,
		adminEmail:  adminEmail,
	}
}

// Submit stores the message and queues a copy for the shop admin.
func (s *contactService) Submit(ctx context.Context, contact domain.Contact) (domain.Contact, error) {
	contact.ID = uuid.Nil
	contact.IsRead = false

	if err := s.contactRepo.Create(ctx, &contact); err != nil {
		logger.Error("Failed to save contact message", err)
		return domain.Contact{}, err
	}

	if s.adminEmail != "" {
		s.notifier.Enqueue(notification.ContactSubmission(s.adminEmail, contact))
	}

	return contact, nil
}

func (s *contactService) List(ctx context.Context, page, limit int, isRead *bool) ([]domain.Contact, domain.Pagination, error) {
	pr := domain.NewPageRequest(page, limit, DefaultPageSize)

	contacts, total, err := s.contactRepo.List(ctx, isRead, pr)
	if err != nil {
		logger.Error("Failed to list contact messages", err)
		return nil, domain.Pagination{}, err
	}

	return contacts, domain.NewPagination(pr, total), nil
}

func (s *contactService) MarkRead(ctx context.Context, id uuid.UUID) (domain.Contact, error) {
	return s.contactRepo.MarkRead(ctx, id)
}
