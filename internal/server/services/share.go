package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/namaniisc/CloudDrop/internal/common"
	"github.com/namaniisc/CloudDrop/internal/logging"
	mailx "github.com/namaniisc/CloudDrop/internal/server/mail"
	"github.com/namaniisc/CloudDrop/internal/server/models"
	"github.com/namaniisc/CloudDrop/internal/server/repositories/repomanager"
)

// buildShareNotification is a seam for testing the notification build path.
var buildShareNotification = mailx.BuildShareNotification

// ShareService performs the one-time share of a transfer record and sends
// the notification email.
type ShareService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	transport   mailx.Transport
	baseURL     string
	logger      logging.Logger
}

// NewShareService constructs a ShareService.
func NewShareService(db *sql.DB, m repomanager.RepositoryManager, t mailx.Transport, baseURL string, l logging.Logger) *ShareService {
	return &ShareService{
		db:          db,
		repomanager: m,
		transport:   t,
		baseURL:     baseURL,
		logger:      l.With("module", "share_service"),
	}
}

func validateEmail(field, addr string) error {
	if strings.TrimSpace(addr) == "" {
		return fmt.Errorf("%w: %s is required", common.ErrorValidation, field)
	}
	if _, err := mail.ParseAddress(addr); err != nil {
		return fmt.Errorf("%w: %s is not a valid email address", common.ErrorValidation, field)
	}
	return nil
}

// Share marks the transfer identified by id as shared from sender to
// receiver and emails the access link to the receiver. A record can be
// shared exactly once; concurrent attempts are serialized by a conditional
// update in the repository, so at most one caller succeeds.
//
// The state transition is persisted before the email is dispatched. A
// delivery failure therefore reports ErrorNotificationDelivery but leaves
// the record shared; retrying with the same id yields ErrorAlreadyShared
// rather than a duplicate email.
func (s *ShareService) Share(ctx context.Context, id, sender, receiver string) (*models.Transfer, error) {
	if err := validateEmail("emailTo", receiver); err != nil {
		return nil, err
	}
	if err := validateEmail("emailFrom", sender); err != nil {
		return nil, err
	}
	if uuid.Validate(id) != nil {
		return nil, common.ErrorNotFound
	}

	repo := s.repomanager.Transfers(s.db)

	t, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}
	if t.Shared() {
		return nil, common.ErrorAlreadyShared
	}

	if err := repo.SetParties(ctx, id, sender, receiver); err != nil {
		if errors.Is(err, common.ErrorAlreadyShared) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}
	t.Sender = sender
	t.Receiver = receiver

	n, err := buildShareNotification(s.baseURL, t)
	if err != nil {
		s.logger.Error(ctx, "notification build failed", "transfer_id", id, "error", err.Error())
		return t, fmt.Errorf("%w: %v", common.ErrorNotificationDelivery, err)
	}
	if err := s.transport.Send(ctx, n); err != nil {
		s.logger.Error(ctx, "notification delivery failed", "transfer_id", id, "error", err.Error())
		return t, fmt.Errorf("%w: %v", common.ErrorNotificationDelivery, err)
	}

	s.logger.Info(ctx, "transfer shared", "transfer_id", id)
	return t, nil
}
