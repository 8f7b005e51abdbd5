package memory

import (
	"context"
	"time"

	"github.com/dropDatabas3/portalgate/internal/directory"
	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/domain/repository"
)

var (
	_ repository.PortalRepository       = portalRepo{}
	_ repository.TokenRepository        = tokenRepo{}
	_ repository.OrganisationRepository = (*Store)(nil)
	_ repository.ProfileRepository      = profileRepo{}
	_ repository.InvitationRepository   = invitationRepo{}
	_ directory.Directory               = (*Store)(nil)
)

// Accessors por entidad, estilo DAL: el mismo Store respalda todos los
// repositorios.

func (s *Store) Portals() repository.PortalRepository           { return portalRepo{s} }
func (s *Store) Tokens() repository.TokenRepository             { return tokenRepo{s} }
func (s *Store) Organisations() repository.OrganisationRepository { return s }
func (s *Store) Profiles() repository.ProfileRepository         { return profileRepo{s} }
func (s *Store) Invitations() repository.InvitationRepository   { return invitationRepo{s} }
func (s *Store) Directory() directory.Directory                 { return s }

type portalRepo struct{ s *Store }

func (r portalRepo) Create(ctx context.Context, p *model.Portal) error {
	return r.s.CreatePortal(ctx, p)
}
func (r portalRepo) GetByKey(ctx context.Context, ssoKey string) (*model.Portal, error) {
	return r.s.GetPortalByKey(ctx, ssoKey)
}
func (r portalRepo) GetByID(ctx context.Context, id string) (*model.Portal, error) {
	return r.s.GetPortalByID(ctx, id)
}
func (r portalRepo) List(ctx context.Context) ([]*model.Portal, error) {
	return r.s.ListPortals(ctx)
}
func (r portalRepo) UpdateKeys(ctx context.Context, id, ssoKey, ssoSecret string) error {
	return r.s.UpdatePortalKeys(ctx, id, ssoKey, ssoSecret)
}
func (r portalRepo) KeyExists(ctx context.Context, ssoKey string) (bool, error) {
	return r.s.PortalKeyExists(ctx, ssoKey)
}
func (r portalRepo) SecretExists(ctx context.Context, ssoSecret string) (bool, error) {
	return r.s.PortalSecretExists(ctx, ssoSecret)
}

type tokenRepo struct{ s *Store }

func (r tokenRepo) Create(ctx context.Context, t *model.Token) error {
	return r.s.CreateToken(ctx, t)
}
func (r tokenRepo) GetUnbound(ctx context.Context, requestToken, portalID string) (*model.Token, error) {
	return r.s.GetUnboundToken(ctx, requestToken, portalID)
}
func (r tokenRepo) Bind(ctx context.Context, tokenID, userID string) error {
	return r.s.BindToken(ctx, tokenID, userID)
}
func (r tokenRepo) ConsumeBound(ctx context.Context, authToken, portalID string) (*model.Token, error) {
	return r.s.ConsumeBoundToken(ctx, authToken, portalID)
}
func (r tokenRepo) Delete(ctx context.Context, tokenID string) error {
	return r.s.DeleteToken(ctx, tokenID)
}
func (r tokenRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return r.s.DeleteTokensOlderThan(ctx, cutoff)
}
func (r tokenRepo) RequestTokenExists(ctx context.Context, requestToken string) (bool, error) {
	return r.s.RequestTokenExists(ctx, requestToken)
}
func (r tokenRepo) AuthTokenExists(ctx context.Context, authToken string) (bool, error) {
	return r.s.AuthTokenExists(ctx, authToken)
}

type profileRepo struct{ s *Store }

func (r profileRepo) Create(ctx context.Context, p *model.UserProfile) error {
	return r.s.CreateProfile(ctx, p)
}
func (r profileRepo) GetByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	return r.s.GetProfileByUserID(ctx, userID)
}
func (r profileRepo) Update(ctx context.Context, p *model.UserProfile) error {
	return r.s.UpdateProfile(ctx, p)
}
func (r profileRepo) OrganisationsOf(ctx context.Context, userID string) ([]*model.Organisation, error) {
	return r.s.OrganisationsOf(ctx, userID)
}
func (r profileRepo) ExplicitOrganisationRoles(ctx context.Context, userID string) ([]*model.OrganisationRole, error) {
	return r.s.ExplicitOrganisationRoles(ctx, userID)
}
func (r profileRepo) HasPortal(ctx context.Context, userID, portalID string) (bool, error) {
	return r.s.HasPortal(ctx, userID, portalID)
}
func (r profileRepo) AttachPortal(ctx context.Context, userID, portalID string) error {
	return r.s.AttachPortal(ctx, userID, portalID)
}
func (r profileRepo) AttachOrganisation(ctx context.Context, userID, organisationID string) error {
	return r.s.AttachOrganisation(ctx, userID, organisationID)
}
func (r profileRepo) AttachOrganisationRole(ctx context.Context, userID, organisationRoleID string) error {
	return r.s.AttachOrganisationRole(ctx, userID, organisationRoleID)
}

type invitationRepo struct{ s *Store }

func (r invitationRepo) Create(ctx context.Context, inv *model.Invitation) error {
	return r.s.CreateInvitation(ctx, inv)
}
func (r invitationRepo) GetByID(ctx context.Context, id string) (*model.Invitation, error) {
	return r.s.GetInvitationByID(ctx, id)
}
func (r invitationRepo) GetByActivationKey(ctx context.Context, key string) (*model.Invitation, error) {
	return r.s.GetInvitationByActivationKey(ctx, key)
}
func (r invitationRepo) Update(ctx context.Context, inv *model.Invitation) error {
	return r.s.UpdateInvitation(ctx, inv)
}
func (r invitationRepo) ActivationKeyExists(ctx context.Context, key string) (bool, error) {
	return r.s.ActivationKeyExists(ctx, key)
}
