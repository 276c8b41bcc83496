package permissions

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illustrious-cloud/backend/internal/models"
)

// fakeStore is an in-memory Store for derivation tests.
type fakeStore struct {
	users       map[string]*models.User               // identifier -> user
	memberships map[uuid.UUID]map[uuid.UUID]models.Role // org -> user -> role
	orgs        map[uuid.UUID]bool
	invoiceOrgs map[uuid.UUID]uuid.UUID // invoice -> org
	reportOrgs  map[uuid.UUID]uuid.UUID // report -> org
	invoiceFor  map[uuid.UUID]map[uuid.UUID]bool // invoice -> users
	reportFor   map[uuid.UUID]map[uuid.UUID]bool // report -> users

	lookups int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       map[string]*models.User{},
		memberships: map[uuid.UUID]map[uuid.UUID]models.Role{},
		orgs:        map[uuid.UUID]bool{},
		invoiceOrgs: map[uuid.UUID]uuid.UUID{},
		reportOrgs:  map[uuid.UUID]uuid.UUID{},
		invoiceFor:  map[uuid.UUID]map[uuid.UUID]bool{},
		reportFor:   map[uuid.UUID]map[uuid.UUID]bool{},
	}
}

func (f *fakeStore) addUser(superAdmin bool) *models.User {
	u := &models.User{ID: uuid.New(), Identifier: uuid.New().String(), SuperAdmin: superAdmin}
	f.users[u.Identifier] = u
	return u
}

func (f *fakeStore) addOrg() uuid.UUID {
	id := uuid.New()
	f.orgs[id] = true
	f.memberships[id] = map[uuid.UUID]models.Role{}
	return id
}

func (f *fakeStore) addInvoice(orgID uuid.UUID, parties ...uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.invoiceOrgs[id] = orgID
	f.invoiceFor[id] = map[uuid.UUID]bool{}
	for _, p := range parties {
		f.invoiceFor[id][p] = true
	}
	return id
}

func (f *fakeStore) addReport(orgID uuid.UUID, parties ...uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.reportOrgs[id] = orgID
	f.reportFor[id] = map[uuid.UUID]bool{}
	for _, p := range parties {
		f.reportFor[id][p] = true
	}
	return id
}

func (f *fakeStore) UserByIdentifier(_ context.Context, identifier string) (*models.User, error) {
	f.lookups++
	u, ok := f.users[identifier]
	if !ok {
		return nil, ErrNoPrincipal
	}
	return u, nil
}

func (f *fakeStore) OrgExists(_ context.Context, orgID uuid.UUID) (bool, error) {
	f.lookups++
	return f.orgs[orgID], nil
}

func (f *fakeStore) MembershipRole(_ context.Context, orgID, userID uuid.UUID) (*models.Role, error) {
	f.lookups++
	role, ok := f.memberships[orgID][userID]
	if !ok {
		return nil, nil
	}
	return &role, nil
}

func (f *fakeStore) InvoiceOrg(_ context.Context, invoiceID uuid.UUID) (uuid.UUID, error) {
	f.lookups++
	return f.invoiceOrgs[invoiceID], nil
}

func (f *fakeStore) ReportOrg(_ context.Context, reportID uuid.UUID) (uuid.UUID, error) {
	f.lookups++
	return f.reportOrgs[reportID], nil
}

func (f *fakeStore) UserLinkedToInvoice(_ context.Context, invoiceID, userID uuid.UUID) (bool, error) {
	f.lookups++
	return f.invoiceFor[invoiceID][userID], nil
}

func (f *fakeStore) UserLinkedToReport(_ context.Context, reportID, userID uuid.UUID) (bool, error) {
	f.lookups++
	return f.reportFor[reportID][userID], nil
}

func TestResolveUserUnknownIdentity(t *testing.T) {
	d := NewDeriver(newFakeStore())

	_, err := d.ResolveUser(context.Background(), "ghost")
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, http.StatusUnauthorized, derr.Status)
}

func TestDeriveUserKindCarriesNoOrgContext(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(false)
	d := NewDeriver(store)

	snap, err := d.Derive(context.Background(), user, ReqContext{Kind: KindUser})
	require.NoError(t, err)
	assert.False(t, snap.SuperAdmin)
	assert.Equal(t, uuid.Nil, snap.Org.ID)
	assert.Nil(t, snap.Org.Role)
	assert.Nil(t, snap.Invoice)
	assert.Nil(t, snap.Report)
}

func TestDeriveOrgMemberRole(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(false)
	orgID := store.addOrg()
	store.memberships[orgID][user.ID] = models.RoleEmployee
	d := NewDeriver(store)

	snap, err := d.Derive(context.Background(), user, ReqContext{Kind: KindOrg, OrgID: orgID})
	require.NoError(t, err)
	assert.Equal(t, orgID, snap.Org.ID)
	require.NotNil(t, snap.Org.Role)
	assert.Equal(t, models.RoleEmployee, *snap.Org.Role)
	assert.True(t, snap.RoleAbove(models.RoleClient))
	assert.False(t, snap.RoleAbove(models.RoleEmployee))
}

func TestDeriveOrgAbsentMembershipLeavesRoleNil(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(false)
	orgID := store.addOrg()
	d := NewDeriver(store)

	snap, err := d.Derive(context.Background(), user, ReqContext{Kind: KindOrg, OrgID: orgID})
	require.NoError(t, err)
	assert.Nil(t, snap.Org.Role)
	assert.False(t, snap.HasRole())
	assert.False(t, snap.RoleAbove(models.RoleClient))
	assert.False(t, snap.RoleAtLeast(models.RoleClient))
}

func TestDeriveOrgMissingRowIsConflict(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(false)
	d := NewDeriver(store)

	_, err := d.Derive(context.Background(), user, ReqContext{Kind: KindOrg, OrgID: uuid.New()})
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, http.StatusConflict, derr.Status)
	assert.Equal(t, MsgNoAssociatedOrg, derr.Message)
}

func TestDeriveOrgCreateSkipsExistenceCheck(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(false)
	d := NewDeriver(store)

	snap, err := d.Derive(context.Background(), user, ReqContext{Kind: KindOrg, Create: true})
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, snap.Org.ID)
	assert.Nil(t, snap.Org.Role)
}

func TestDeriveInvoiceResolvesOrgFromLink(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(false)
	orgID := store.addOrg()
	store.memberships[orgID][user.ID] = models.RoleOwner
	invoiceID := store.addInvoice(orgID)
	d := NewDeriver(store)

	snap, err := d.Derive(context.Background(), user, ReqContext{Kind: KindInvoice, ResourceID: invoiceID})
	require.NoError(t, err)
	assert.Equal(t, orgID, snap.Org.ID)
	require.NotNil(t, snap.Org.Role)
	assert.Equal(t, models.RoleOwner, *snap.Org.Role)
	require.NotNil(t, snap.Invoice)
	assert.False(t, snap.Invoice.Creator)
}

func TestDeriveInvoiceCreatorFlagFromLinkRow(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(false)
	orgID := store.addOrg()
	store.memberships[orgID][user.ID] = models.RoleClient
	invoiceID := store.addInvoice(orgID, user.ID)
	d := NewDeriver(store)

	snap, err := d.Derive(context.Background(), user, ReqContext{Kind: KindInvoice, ResourceID: invoiceID})
	require.NoError(t, err)
	assert.True(t, snap.InvoiceCreator())
	// creator flag never implies any role elevation
	assert.False(t, snap.RoleAbove(models.RoleClient))
}

func TestDeriveInvoiceUnlinkedOrgIsConflict(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(false)
	d := NewDeriver(store)

	_, err := d.Derive(context.Background(), user, ReqContext{Kind: KindInvoice, ResourceID: uuid.New()})
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, http.StatusConflict, derr.Status)
	assert.Equal(t, MsgNoAssociatedOrg, derr.Message)
}

func TestDeriveInvoiceCreateForeignClientIsConflict(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(false)
	orgID := store.addOrg()
	store.memberships[orgID][user.ID] = models.RoleEmployee
	outsider := store.addUser(false)
	d := NewDeriver(store)

	_, err := d.Derive(context.Background(), user, ReqContext{
		Kind:     KindInvoice,
		Create:   true,
		OrgID:    orgID,
		ClientID: outsider.ID,
	})
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, http.StatusConflict, derr.Status)
	assert.Equal(t, MsgClientNotInOrg, derr.Message)
}

func TestDeriveInvoiceCreateMemberClientSucceeds(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(false)
	client := store.addUser(false)
	orgID := store.addOrg()
	store.memberships[orgID][user.ID] = models.RoleEmployee
	store.memberships[orgID][client.ID] = models.RoleClient
	d := NewDeriver(store)

	snap, err := d.Derive(context.Background(), user, ReqContext{
		Kind:     KindInvoice,
		Create:   true,
		OrgID:    orgID,
		ClientID: client.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, orgID, snap.Org.ID)
	assert.True(t, snap.RoleAbove(models.RoleClient))
	assert.Nil(t, snap.Invoice) // resource does not exist yet
}

func TestDeriveInvoiceCreateWithoutOrgIsConflict(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(false)
	d := NewDeriver(store)

	_, err := d.Derive(context.Background(), user, ReqContext{Kind: KindInvoice, Create: true})
	var derr *Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, MsgNoAssociatedOrg, derr.Message)
}

func TestDeriveReportMirrorsInvoiceBehavior(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(false)
	orgID := store.addOrg()
	store.memberships[orgID][user.ID] = models.RoleClient
	reportID := store.addReport(orgID, user.ID)
	d := NewDeriver(store)

	snap, err := d.Derive(context.Background(), user, ReqContext{Kind: KindReport, ResourceID: reportID})
	require.NoError(t, err)
	assert.Equal(t, orgID, snap.Org.ID)
	assert.True(t, snap.ReportCreator())
	assert.Nil(t, snap.Invoice)
}

func TestDeriveSuperAdminAlwaysFlagged(t *testing.T) {
	store := newFakeStore()
	admin := store.addUser(true)
	orgID := store.addOrg()
	d := NewDeriver(store)

	snap, err := d.Derive(context.Background(), admin, ReqContext{Kind: KindOrg, OrgID: orgID})
	require.NoError(t, err)
	assert.True(t, snap.SuperAdmin)
	assert.Nil(t, snap.Org.Role)
}

func TestDeriveIsIdempotent(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(false)
	orgID := store.addOrg()
	store.memberships[orgID][user.ID] = models.RoleEmployee
	invoiceID := store.addInvoice(orgID, user.ID)
	d := NewDeriver(store)

	rc := ReqContext{Kind: KindInvoice, ResourceID: invoiceID}
	first, err := d.Derive(context.Background(), user, rc)
	require.NoError(t, err)
	second, err := d.Derive(context.Background(), user, rc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
