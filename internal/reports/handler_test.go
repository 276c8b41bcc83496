package reports

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illustrious-cloud/backend/internal/models"
	"github.com/illustrious-cloud/backend/internal/permissions"
)

type fakeStore struct {
	reports map[uuid.UUID]*models.Report
	created int
}

func newFakeStore() *fakeStore {
	return &fakeStore{reports: map[uuid.UUID]*models.Report{}}
}

func (f *fakeStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.reports[id]
	return ok, nil
}

func (f *fakeStore) Create(_ context.Context, rep *models.Report, _, _, _ uuid.UUID) error {
	f.created++
	f.reports[rep.ID] = rep
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Report, error) {
	rep, ok := f.reports[id]
	if !ok {
		return nil, fmt.Errorf("report %s not found", id)
	}
	return rep, nil
}

func (f *fakeStore) Update(_ context.Context, rep *models.Report) (*models.Report, error) {
	f.reports[rep.ID] = rep
	return rep, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.reports, id)
	return nil
}

func role(r models.Role) *models.Role { return &r }

func serve(h gin.HandlerFunc, user *models.User, snap *permissions.Snapshot, method, path, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Handle(method, path, func(c *gin.Context) {
		c.Set(permissions.ContextUser, user)
		c.Set(permissions.ContextSnapshot, snap)
	}, h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRejectsOutOfRangeRating(t *testing.T) {
	store := newFakeStore()
	h := NewHandler(store)
	user := &models.User{ID: uuid.New()}
	snap := &permissions.Snapshot{Org: permissions.OrgAccess{ID: uuid.New(), Role: role(models.RoleEmployee)}}

	body := fmt.Sprintf(`{"org":%q,"client":%q,"report":{"rating":6,"notes":"too good"}}`, uuid.New(), uuid.New())
	w := serve(h.Create, user, snap, http.MethodPost, "/report", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, store.created)
}

func TestCreateByEmployee(t *testing.T) {
	store := newFakeStore()
	h := NewHandler(store)
	user := &models.User{ID: uuid.New()}
	snap := &permissions.Snapshot{Org: permissions.OrgAccess{ID: uuid.New(), Role: role(models.RoleEmployee)}}

	body := fmt.Sprintf(`{"org":%q,"client":%q,"report":{"rating":4,"notes":"on time"}}`, uuid.New(), uuid.New())
	w := serve(h.Create, user, snap, http.MethodPost, "/report", body)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, store.created)
}

func TestCreateClientRoleRejected(t *testing.T) {
	store := newFakeStore()
	h := NewHandler(store)
	user := &models.User{ID: uuid.New()}
	snap := &permissions.Snapshot{Org: permissions.OrgAccess{ID: uuid.New(), Role: role(models.RoleClient)}}

	body := fmt.Sprintf(`{"org":%q,"client":%q,"report":{"rating":4}}`, uuid.New(), uuid.New())
	w := serve(h.Create, user, snap, http.MethodPost, "/report", body)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFetchOneAsParty(t *testing.T) {
	store := newFakeStore()
	repID := uuid.New()
	store.reports[repID] = &models.Report{ID: repID, Rating: 5, Notes: "excellent work"}
	h := NewHandler(store)
	user := &models.User{ID: uuid.New()}
	snap := &permissions.Snapshot{
		Org:    permissions.OrgAccess{ID: uuid.New(), Role: role(models.RoleClient)},
		Report: &permissions.ResourceAccess{ID: repID, Creator: true},
	}

	w := serve(h.FetchOne, user, snap, http.MethodGet, "/report/"+repID.String(), "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "excellent work")
}

func TestDeleteClientPartyRejected(t *testing.T) {
	store := newFakeStore()
	repID := uuid.New()
	store.reports[repID] = &models.Report{ID: repID}
	h := NewHandler(store)
	user := &models.User{ID: uuid.New()}
	snap := &permissions.Snapshot{
		Org:    permissions.OrgAccess{ID: uuid.New(), Role: role(models.RoleClient)},
		Report: &permissions.ResourceAccess{ID: repID, Creator: true},
	}

	w := serve(h.Delete, user, snap, http.MethodDelete, "/report/"+repID.String(), "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, store.reports, repID)
}
