package roles

import (
	"context"
	"testing"

	"github.com/dropDatabas3/portalgate/internal/domain/model"
	"github.com/dropDatabas3/portalgate/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture arma el grafo de organisaciones, roles y perfiles de cada
// escenario contra el store en memoria.
type fixture struct {
	t  *testing.T
	st *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{t: t, st: memory.New()}
}

func (f *fixture) resolver() *Resolver {
	return NewResolver(f.st.Organisations(), f.st.Profiles())
}

func (f *fixture) org(id, name string) *model.Organisation {
	f.t.Helper()
	o := &model.Organisation{ID: id, Name: name, UniqueID: "uid-" + id}
	require.NoError(f.t, f.st.CreateOrganisation(context.Background(), o))
	return o
}

func (f *fixture) role(id, portalID, name string) *model.Role {
	f.t.Helper()
	r := &model.Role{
		ID:       id,
		PortalID: portalID,
		UniqueID: "uid-" + id,
		Code:     name,
		Name:     name,
	}
	require.NoError(f.t, f.st.CreateRole(context.Background(), r))
	return r
}

func (f *fixture) orgRole(id, orgID, roleID string, forAll bool) *model.OrganisationRole {
	f.t.Helper()
	or := &model.OrganisationRole{ID: id, OrganisationID: orgID, RoleID: roleID, ForAllUsers: forAll}
	require.NoError(f.t, f.st.CreateOrganisationRole(context.Background(), or))
	return or
}

func (f *fixture) user(id string) {
	f.t.Helper()
	require.NoError(f.t, f.st.CreateProfile(context.Background(), &model.UserProfile{UserID: id}))
}

func (f *fixture) member(userID, orgID string) {
	f.t.Helper()
	require.NoError(f.t, f.st.AttachOrganisation(context.Background(), userID, orgID))
}

func (f *fixture) attach(userID, orgRoleID string) {
	f.t.Helper()
	require.NoError(f.t, f.st.AttachOrganisationRole(context.Background(), userID, orgRoleID))
}

func (f *fixture) inherit(roleID, baseRoleID string) {
	f.t.Helper()
	require.NoError(f.t, f.st.AddRoleInheritance(context.Background(), roleID, baseRoleID))
}

func pairsOf(gs []Grant) [][2]string {
	out := make([][2]string, 0, len(gs))
	for _, g := range gs {
		out = append(out, [2]string{g.Organisation.ID, g.Role.ID})
	}
	return out
}

func TestResolve_ForAllUsers(t *testing.T) {
	f := newFixture(t)
	f.org("o1", "Acme")
	f.role("viewer", "p1", "Viewer")
	f.orgRole("or1", "o1", "viewer", true)
	f.user("u1")
	f.member("u1", "o1")

	grants, err := f.resolver().Resolve(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"o1", "viewer"}}, pairsOf(grants))
}

func TestResolve_ExplicitOnlyWithoutMembership(t *testing.T) {
	f := newFixture(t)
	f.org("o1", "Acme")
	f.role("viewer", "p1", "Viewer")
	f.orgRole("or1", "o1", "viewer", false)
	f.user("u1")
	// Sin organisaciones: solo cuenta la asignación explícita.
	f.attach("u1", "or1")

	grants, err := f.resolver().Resolve(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"o1", "viewer"}}, pairsOf(grants))
}

func TestResolve_ForAllUsersNeedsMembership(t *testing.T) {
	f := newFixture(t)
	f.org("o1", "Acme")
	f.role("viewer", "p1", "Viewer")
	f.orgRole("or1", "o1", "viewer", true)
	f.user("u1")
	// u1 no pertenece a o1: for_all_users no le aplica.

	grants, err := f.resolver().Resolve(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestResolve_OtherPortalRolesExcluded(t *testing.T) {
	f := newFixture(t)
	f.org("o1", "Acme")
	f.role("viewer", "p1", "Viewer")
	f.role("editor", "p2", "Editor")
	f.orgRole("or1", "o1", "viewer", true)
	f.orgRole("or2", "o1", "editor", true)
	f.user("u1")
	f.member("u1", "o1")

	grants, err := f.resolver().Resolve(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"o1", "viewer"}}, pairsOf(grants))
}

// Escenario de herencia: Admin hereda de Viewer. El perfil posee (o1,
// Viewer) explícito; (o2, Admin) existe solo para otra organisación. Admin
// solo aparece cuando existe un organisation-role (o1, Admin) alcanzable
// desde la base en la misma organisación.
func TestResolve_InheritanceSameOrganisationOnly(t *testing.T) {
	f := newFixture(t)
	f.org("o1", "Acme")
	f.org("o2", "Globex")
	f.role("viewer", "p1", "Viewer")
	f.role("admin", "p1", "Admin")
	f.inherit("admin", "viewer")
	orViewer := f.orgRole("or-viewer", "o1", "viewer", false)
	f.orgRole("or-admin-o2", "o2", "admin", true)
	f.user("u1")
	f.member("u1", "o1")
	f.attach("u1", orViewer.ID)

	grants, err := f.resolver().Resolve(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"o1", "viewer"}}, pairsOf(grants),
		"la herencia no cruza organisaciones")

	// Con el organisation-role en la misma organisación la herencia aplica.
	f.orgRole("or-admin-o1", "o1", "admin", false)
	grants, err = f.resolver().Resolve(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"o1", "admin"}, {"o1", "viewer"}}, pairsOf(grants))
}

// La base puede venir de for_all_users: no hace falta asignación explícita
// para que dispare la herencia.
func TestResolve_InheritanceFromForAllUsersBase(t *testing.T) {
	f := newFixture(t)
	f.org("o1", "Acme")
	f.role("viewer", "p1", "Viewer")
	f.role("admin", "p1", "Admin")
	f.inherit("admin", "viewer")
	f.orgRole("or-viewer", "o1", "viewer", true)
	f.orgRole("or-admin", "o1", "admin", false)
	f.user("u1")
	f.member("u1", "o1")

	grants, err := f.resolver().Resolve(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"o1", "admin"}, {"o1", "viewer"}}, pairsOf(grants))
}

func TestResolve_MultiHopChain(t *testing.T) {
	f := newFixture(t)
	f.org("o1", "Acme")
	f.role("viewer", "p1", "Viewer")
	f.role("admin", "p1", "Admin")
	f.role("owner", "p1", "Owner")
	f.inherit("admin", "viewer")
	f.inherit("owner", "admin")
	orViewer := f.orgRole("or-viewer", "o1", "viewer", false)
	f.orgRole("or-admin", "o1", "admin", false)
	f.orgRole("or-owner", "o1", "owner", false)
	f.user("u1")
	f.member("u1", "o1")
	f.attach("u1", orViewer.ID)

	grants, err := f.resolver().Resolve(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, [][2]string{
		{"o1", "admin"}, {"o1", "owner"}, {"o1", "viewer"},
	}, pairsOf(grants), "la clausura sigue cadenas de más de un salto")
}

func TestResolve_CycleTerminates(t *testing.T) {
	f := newFixture(t)
	f.org("o1", "Acme")
	f.role("a", "p1", "A")
	f.role("b", "p1", "B")
	f.inherit("a", "b")
	f.inherit("b", "a")
	orA := f.orgRole("or-a", "o1", "a", false)
	f.orgRole("or-b", "o1", "b", false)
	f.user("u1")
	f.member("u1", "o1")
	f.attach("u1", orA.ID)

	grants, err := f.resolver().Resolve(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"o1", "a"}, {"o1", "b"}}, pairsOf(grants))
}

func TestExplain_IntermediateSets(t *testing.T) {
	f := newFixture(t)
	f.org("o1", "Acme")
	f.role("viewer", "p1", "Viewer")
	f.role("admin", "p1", "Admin")
	f.role("other", "p2", "Other")
	f.inherit("admin", "viewer")
	f.orgRole("or-viewer", "o1", "viewer", true)
	f.orgRole("or-admin", "o1", "admin", false)
	f.orgRole("or-other", "o1", "other", true)
	f.user("u1")
	f.member("u1", "o1")

	res, err := f.resolver().Explain(context.Background(), "u1", "p1")
	require.NoError(t, err)

	assert.Len(t, res.RelevantRoles, 2, "solo roles del portal")
	assert.Len(t, res.DirectlyAccessible, 2, "incluye roles de otros portales")
	assert.Equal(t, [][2]string{{"o1", "viewer"}}, pairsOf(res.DirectResult))
	assert.Equal(t, [][2]string{{"o1", "admin"}}, pairsOf(res.IndirectResult))
	assert.Equal(t, [][2]string{{"o1", "admin"}, {"o1", "viewer"}}, pairsOf(res.Grants))
}

func TestResolve_NoProfileLinks(t *testing.T) {
	f := newFixture(t)
	f.role("viewer", "p1", "Viewer")
	f.user("u1")

	grants, err := f.resolver().Resolve(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestBuildPayload(t *testing.T) {
	o1 := &model.Organisation{ID: "o1", Name: "Acme", UniqueID: "uo1"}
	o2 := &model.Organisation{ID: "o2", Name: "Globex", UniqueID: "uo2"}
	viewer := &model.Role{ID: "r1", UniqueID: "ur1", Code: "viewer", Name: "Viewer"}
	admin := &model.Role{ID: "r2", UniqueID: "ur2", Code: "admin", Name: "Admin"}

	p := BuildPayload([]Grant{
		{Organisation: o2, Role: viewer},
		{Organisation: o1, Role: viewer},
		{Organisation: o1, Role: admin},
		{Organisation: o1, Role: admin}, // duplicado
	})

	assert.Equal(t, []OrganisationPayload{
		{Name: "Acme", UniqueID: "uo1"},
		{Name: "Globex", UniqueID: "uo2"},
	}, p.Organisations)
	assert.Equal(t, []string{"ur1", "ur2"}, []string{p.Roles[0].UniqueID, p.Roles[1].UniqueID})
	assert.Equal(t, [][]string{
		{"uo1", "ur1"}, {"uo1", "ur2"}, {"uo2", "ur1"},
	}, p.OrganisationRoles)
}

func TestBuildPayload_Empty(t *testing.T) {
	p := BuildPayload(nil)
	assert.Empty(t, p.Organisations)
	assert.Empty(t, p.Roles)
	assert.Empty(t, p.OrganisationRoles)
}
