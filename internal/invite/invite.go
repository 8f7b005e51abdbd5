// Package invite implementa el alta de usuarios por invitación: un
// administrador crea la invitación, el destinatario recibe un link con una
// activation key y al activarla se crea la cuenta con su perfil, portales
// y organisación.
package invite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/portalgate/internal/directory"
	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
	"github.com/dropDatabas3/portalgate/internal/email"
	"github.com/dropDatabas3/portalgate/internal/observability/logger"
	"github.com/dropDatabas3/portalgate/internal/security/keygen"
)

var (
	// ErrInvalidKey indica una activation key desconocida.
	ErrInvalidKey = errors.New("invite: invalid activation key")

	// ErrAlreadyActivated indica una invitación ya consumida.
	ErrAlreadyActivated = errors.New("invite: already activated")

	// ErrKeyExpired indica una activation key vencida; re-enviar la
	// invitación genera una key nueva.
	ErrKeyExpired = errors.New("invite: activation key expired")
)

// DefaultActivationDays es la validez de una activation key desde su
// emisión. Un mes de vacaciones más margen.
const DefaultActivationDays = 45

type Service struct {
	invitations repository.InvitationRepository
	orgs        repository.OrganisationRepository
	profiles    repository.ProfileRepository
	dir         directory.Directory
	sender      email.Sender

	// baseURL es la raíz pública de la autoridad, usada para armar el
	// link de activación.
	baseURL string

	activationDays int
}

func NewService(
	invitations repository.InvitationRepository,
	orgs repository.OrganisationRepository,
	profiles repository.ProfileRepository,
	dir directory.Directory,
	sender email.Sender,
	baseURL string,
	activationDays int,
) *Service {
	if activationDays <= 0 {
		activationDays = DefaultActivationDays
	}
	return &Service{
		invitations:    invitations,
		orgs:           orgs,
		profiles:       profiles,
		dir:            dir,
		sender:         sender,
		baseURL:        baseURL,
		activationDays: activationDays,
	}
}

type CreateInput struct {
	Name         string
	Email        string
	Organisation string
	Language     string
	PortalIDs    []string
}

// Create registra la invitación con una activation key única y recién
// generada. El mail sale aparte, vía SendActivation.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Invitation, error) {
	key, err := keygen.UniqueKey(ctx, keygen.DefaultKeyLength, s.invitations.ActivationKeyExists)
	if err != nil {
		return nil, fmt.Errorf("invite: generate activation key: %w", err)
	}
	now := time.Now().UTC()
	inv := &model.Invitation{
		ID:                uuid.NewString(),
		Name:              in.Name,
		Email:             in.Email,
		Organisation:      in.Organisation,
		Language:          in.Language,
		PortalIDs:         in.PortalIDs,
		ActivationKey:     &key,
		ActivationKeyDate: &now,
		CreatedAt:         now,
	}
	if inv.Language == "" {
		inv.Language = "en"
	}
	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}
	logger.From(ctx).Info("invitation created",
		logger.Component("invite"), logger.Op("create"), logger.Username(in.Email))
	return inv, nil
}

// SendActivation manda (o re-manda) el mail con el link de activación.
// Cada envío rota la key y reinicia su fecha, invalidando links viejos.
func (s *Service) SendActivation(ctx context.Context, invitationID string) error {
	inv, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		return err
	}
	if inv.IsActivated {
		return ErrAlreadyActivated
	}

	key, err := keygen.UniqueKey(ctx, keygen.DefaultKeyLength, s.invitations.ActivationKeyExists)
	if err != nil {
		return fmt.Errorf("invite: rotate activation key: %w", err)
	}
	now := time.Now().UTC()
	inv.ActivationKey = &key
	inv.ActivationKeyDate = &now
	if err := s.invitations.Update(ctx, inv); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/activate/%s", s.baseURL, *inv.ActivationKey)
	htmlBody, textBody, err := email.RenderActivation(email.ActivationVars{
		Name:         inv.Name,
		Organisation: inv.Organisation,
		Link:         link,
	})
	if err != nil {
		return err
	}
	return s.sender.Send(inv.Email, "Account activation", htmlBody, textBody)
}

type ActivateInput struct {
	ActivationKey string
	Username      string
	Password      string
	FirstName     string
	LastName      string
}

// Activate consume la invitación: crea la cuenta activa con su perfil,
// vincula los portales invitados y la organisación (si existe), y marca la
// invitación como activada. La key no se puede reusar.
func (s *Service) Activate(ctx context.Context, in ActivateInput) (*model.User, error) {
	inv, err := s.invitations.GetByActivationKey(ctx, in.ActivationKey)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidKey
		}
		return nil, err
	}
	if inv.IsActivated {
		return nil, ErrAlreadyActivated
	}
	if inv.ActivationKeyDate == nil ||
		time.Since(*inv.ActivationKeyDate) > time.Duration(s.activationDays)*24*time.Hour {
		return nil, ErrKeyExpired
	}

	user, err := s.dir.CreateUser(ctx, directory.CreateUserInput{
		Username:  in.Username,
		Password:  in.Password,
		Email:     inv.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Active:    true,
	})
	if err != nil {
		return nil, err
	}

	for _, portalID := range inv.PortalIDs {
		if err := s.profiles.AttachPortal(ctx, user.ID, portalID); err != nil {
			return nil, err
		}
	}
	if inv.Organisation != "" {
		org, err := s.orgs.GetOrganisationByName(ctx, inv.Organisation)
		switch {
		case err == nil:
			if err := s.profiles.AttachOrganisation(ctx, user.ID, org.ID); err != nil {
				return nil, err
			}
		case repository.IsNotFound(err):
			logger.From(ctx).Warn("invitation references unknown organisation",
				logger.Component("invite"), logger.Op("activate"))
		default:
			return nil, err
		}
	}

	now := time.Now().UTC()
	inv.IsActivated = true
	inv.ActivatedOn = &now
	inv.ActivationKey = nil
	inv.UserID = &user.ID
	if err := s.invitations.Update(ctx, inv); err != nil {
		return nil, err
	}

	logger.From(ctx).Info("invitation activated",
		logger.Component("invite"), logger.Op("activate"), logger.UserID(user.ID))
	return user, nil
}
