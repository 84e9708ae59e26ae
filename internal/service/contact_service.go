package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"roadside-service/internal/mailer"
	"roadside-service/internal/model"
	"roadside-service/internal/utils"
)

type ContactService struct {
	messages ContactStore
	mailer   mailer.Mailer
	log      zerolog.Logger
}

func NewContactService(messages ContactStore, m mailer.Mailer, log zerolog.Logger) *ContactService {
	return &ContactService{messages: messages, mailer: m, log: log}
}

type ContactInput struct {
	Name    string
	Email   string
	Phone   *string
	Subject string
	Message string
}

func (s *ContactService) Submit(ctx context.Context, input ContactInput) (*model.ContactMessage, error) {
	name := strings.TrimSpace(input.Name)
	body := strings.TrimSpace(input.Message)
	if name == "" || body == "" {
		return nil, invalidInput("name and message are required")
	}
	address, err := mail.ParseAddress(strings.TrimSpace(input.Email))
	if err != nil {
		return nil, invalidInput("malformed email")
	}

	msg := &model.ContactMessage{
		Name:    name,
		Email:   strings.ToLower(address.Address),
		Subject: strings.TrimSpace(input.Subject),
		Message: body,
		Status:  model.ContactStatusNew,
	}
	if input.Phone != nil {
		if phone := utils.NormalizePhone(*input.Phone); phone != "" {
			msg.Phone = &phone
		}
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.mailer.SendContactAck(ctx, msg.Email, msg.Name, msg.Subject); err != nil {
		s.log.Warn().Err(err).Str("message_id", msg.ID.String()).Msg("failed to acknowledge contact message")
	}
	return msg, nil
}

func (s *ContactService) List(ctx context.Context, principal model.Principal, status *model.ContactStatus) ([]model.ContactMessage, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if status != nil && !status.Valid() {
		return nil, invalidInput("unknown status %q", *status)
	}
	return s.messages.List(ctx, status)
}

func (s *ContactService) SetStatus(ctx context.Context, principal model.Principal, id string, status model.ContactStatus) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if !status.Valid() {
		return invalidInput("unknown status %q", status)
	}
	msgID, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.messages.UpdateStatus(ctx, msgID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
