package orgs

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/illustrious-cloud/backend/internal/models"
	"github.com/illustrious-cloud/backend/internal/permissions"
	"github.com/illustrious-cloud/backend/pkg/response"
)

// Store is the persistence surface the handler needs.
type Store interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, org *models.Organization, ownerID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) (*models.Organization, error)
	HasResources(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListUsers(ctx context.Context, orgID uuid.UUID) ([]models.UserPublic, error)
	ListInvoices(ctx context.Context, orgID uuid.UUID) ([]models.Invoice, error)
	ListReports(ctx context.Context, orgID uuid.UUID) ([]models.Report, error)
}

// Handler handles organization HTTP endpoints.
type Handler struct {
	store Store
}

// NewHandler creates an orgs handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// SubmitOrg is the body for POST /org and PUT /org/:org.
type SubmitOrg struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name" binding:"required"`
	Contact string    `json:"contact" binding:"required"`
}

// OrgDetails is the response for GET /org/:org with optional includes.
type OrgDetails struct {
	Org      *models.Organization `json:"org"`
	Invoices []models.Invoice     `json:"invoices,omitempty"`
	Reports  []models.Report      `json:"reports,omitempty"`
	Users    []models.UserPublic  `json:"users,omitempty"`
}

// Create handles POST /org. Any authenticated user may create an org; the
// creator becomes its owner.
func (h *Handler) Create(c *gin.Context) {
	user := permissions.CurrentUser(c)

	var body SubmitOrg
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name and contact required")
		return
	}

	if body.ID != uuid.Nil {
		exists, err := h.store.Exists(c.Request.Context(), body.ID)
		if err != nil {
			response.Internal(c, "failed to create organization")
			return
		}
		if exists {
			response.Conflict(c, "Organization already exists!")
			return
		}
	} else {
		body.ID = uuid.New()
	}

	org := &models.Organization{ID: body.ID, Name: body.Name, Contact: body.Contact}
	if err := h.store.Create(c.Request.Context(), org, user.ID); err != nil {
		response.Internal(c, "failed to create organization")
		return
	}

	response.Created(c, "Organization created successfully.", org)
}

// FetchOne handles GET /org/:org. Requires superadmin or any membership;
// includes (invoices, reports, users) additionally require a role above
// client.
func (h *Handler) FetchOne(c *gin.Context) {
	snap := permissions.CurrentSnapshot(c)
	if !snap.SuperAdmin && !snap.HasRole() {
		response.Unauthorized(c, "You do not have permission to fetch organization details.")
		return
	}

	org, err := h.store.GetByID(c.Request.Context(), snap.Org.ID)
	if err != nil {
		response.NotFound(c, "organization not found")
		return
	}

	result := OrgDetails{Org: org}
	include := c.Query("include")
	staff := snap.SuperAdmin || snap.RoleAbove(models.RoleClient)

	if include != "" && staff {
		if strings.Contains(include, "invoices") {
			if result.Invoices, err = h.store.ListInvoices(c.Request.Context(), org.ID); err != nil {
				response.Internal(c, "failed to load organization invoices")
				return
			}
		}
		if strings.Contains(include, "reports") {
			if result.Reports, err = h.store.ListReports(c.Request.Context(), org.ID); err != nil {
				response.Internal(c, "failed to load organization reports")
				return
			}
		}
		if strings.Contains(include, "users") {
			if result.Users, err = h.store.ListUsers(c.Request.Context(), org.ID); err != nil {
				response.Internal(c, "failed to load organization users")
				return
			}
		}
	}

	response.OK(c, "Organization & details fetched successfully.", result)
}

// FetchResources handles GET /org/res/:org/:resource. Requires superadmin or
// a role above client.
func (h *Handler) FetchResources(c *gin.Context) {
	snap := permissions.CurrentSnapshot(c)
	if !snap.SuperAdmin && !snap.RoleAbove(models.RoleClient) {
		response.Unauthorized(c, "You do not have permission to fetch this organization's resources.")
		return
	}

	resource := c.Param("resource")
	var (
		data interface{}
		err  error
	)
	switch resource {
	case "invoices":
		data, err = h.store.ListInvoices(c.Request.Context(), snap.Org.ID)
	case "reports":
		data, err = h.store.ListReports(c.Request.Context(), snap.Org.ID)
	case "users":
		data, err = h.store.ListUsers(c.Request.Context(), snap.Org.ID)
	default:
		response.BadRequest(c, "Required details for look up are missing")
		return
	}
	if err != nil {
		response.Internal(c, "failed to load organization resources")
		return
	}

	response.OK(c, "Organization resources fetched successfully.", gin.H{resource: data})
}

// Update handles PUT /org/:org. Owner or superadmin only.
func (h *Handler) Update(c *gin.Context) {
	snap := permissions.CurrentSnapshot(c)
	if !snap.SuperAdmin && !snap.RoleAtLeast(models.RoleOwner) {
		response.Unauthorized(c, "You do not have permission to update organization details.")
		return
	}

	var body SubmitOrg
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name and contact required")
		return
	}

	org := &models.Organization{ID: snap.Org.ID, Name: body.Name, Contact: body.Contact}
	updated, err := h.store.Update(c.Request.Context(), org)
	if err != nil {
		response.Internal(c, "failed to update organization")
		return
	}

	response.OK(c, "Organization updated successfully.", updated)
}

// Delete handles DELETE /org/:org. Owner or superadmin only; blocked while
// invoices or reports still belong to the org.
func (h *Handler) Delete(c *gin.Context) {
	snap := permissions.CurrentSnapshot(c)
	if !snap.SuperAdmin && !snap.RoleAtLeast(models.RoleOwner) {
		response.Unauthorized(c, "You do not have permission to delete this organization.")
		return
	}

	busy, err := h.store.HasResources(c.Request.Context(), snap.Org.ID)
	if err != nil {
		response.Internal(c, "failed to delete organization")
		return
	}
	if busy {
		response.Conflict(c, "Organization still has invoices or reports")
		return
	}

	if err := h.store.Delete(c.Request.Context(), snap.Org.ID); err != nil {
		response.Internal(c, "failed to delete organization")
		return
	}

	response.OK(c, "Organization deleted successfully.", nil)
}
