package users

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
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, u *models.User) (*models.User, error)
	HasUnpaidInvoices(ctx context.Context, userID uuid.UUID) (bool, error)
	OwnsOrg(ctx context.Context, userID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListResources(ctx context.Context, userID uuid.UUID, invoices, reports, orgs bool) (*Resources, error)
}

// Handler handles user HTTP endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a users handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// UpdateUserRequest is the body for PUT /user/:user.
type UpdateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Picture   string `json:"picture"`
}

// UserDetails is the response for GET /me and GET /user/:user.
type UserDetails struct {
	User     *models.User          `json:"user"`
	Invoices []models.Invoice      `json:"invoices,omitempty"`
	Reports  []models.Report       `json:"reports,omitempty"`
	Orgs     []models.Organization `json:"orgs,omitempty"`
}

// Me handles GET /me. Returns the caller's record and everything they are
// party to.
func (h *Handler) Me(c *gin.Context) {
	user := permissions.CurrentUser(c)

	res, err := h.store.ListResources(c.Request.Context(), user.ID, false, false, false)
	if err != nil {
		response.Internal(c, "failed to load user resources")
		return
	}

	response.OK(c, "User details fetched successfully!", UserDetails{
		User:     user,
		Invoices: res.Invoices,
		Reports:  res.Reports,
		Orgs:     res.Orgs,
	})
}

// Fetch handles GET /user/:user. Self or superadmin; the include query is
// honored for superadmins only.
func (h *Handler) Fetch(c *gin.Context) {
	user := permissions.CurrentUser(c)

	targetID, err := uuid.Parse(c.Param("user"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if !user.SuperAdmin && user.ID != targetID {
		response.Unauthorized(c, "Token does not match the requested user.")
		return
	}

	target, err := h.store.GetByID(c.Request.Context(), targetID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}

	result := UserDetails{User: target}
	include := c.Query("include")
	restricted := include != "" && !user.SuperAdmin

	if include != "" && user.SuperAdmin {
		res, err := h.store.ListResources(c.Request.Context(), targetID,
			strings.Contains(include, "invoices"),
			strings.Contains(include, "reports"),
			strings.Contains(include, "orgs"))
		if err != nil {
			response.Internal(c, "failed to load user resources")
			return
		}
		result.Invoices = res.Invoices
		result.Reports = res.Reports
		result.Orgs = res.Orgs
	}

	message := "User details fetched successfully."
	if restricted {
		message = "User details fetched successfully ('include' details restricted)."
	}
	response.OK(c, message, result)
}

// Update handles PUT /user/:user. Self or superadmin.
func (h *Handler) Update(c *gin.Context) {
	user := permissions.CurrentUser(c)

	targetID, err := uuid.Parse(c.Param("user"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if !user.SuperAdmin && user.ID != targetID {
		response.Unauthorized(c, "Token does not match user to be updated.")
		return
	}

	var body UpdateUserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	updated, err := h.store.Update(c.Request.Context(), &models.User{
		ID:        targetID,
		Email:     body.Email,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Phone:     body.Phone,
		Picture:   body.Picture,
	})
	if err != nil {
		response.Internal(c, "failed to update user")
		return
	}

	response.OK(c, "User updated successfully.", updated)
}

// Delete handles DELETE /user/:user. Self or superadmin; blocked while
// unpaid invoices or an org ownership exist.
func (h *Handler) Delete(c *gin.Context) {
	user := permissions.CurrentUser(c)

	targetID, err := uuid.Parse(c.Param("user"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if !user.SuperAdmin && user.ID != targetID {
		response.Unauthorized(c, "You do not have permission to delete this account.")
		return
	}

	unpaid, err := h.store.HasUnpaidInvoices(c.Request.Context(), targetID)
	if err != nil {
		response.Internal(c, "failed to delete user")
		return
	}
	if unpaid {
		response.Conflict(c, "User has unpaid invoices")
		return
	}

	owner, err := h.store.OwnsOrg(c.Request.Context(), targetID)
	if err != nil {
		response.Internal(c, "failed to delete user")
		return
	}
	if owner {
		response.Conflict(c, "User is an owner of an organization")
		return
	}

	if err := h.store.Delete(c.Request.Context(), targetID); err != nil {
		response.Internal(c, "failed to delete user")
		return
	}

	response.OK(c, "User deleted successfully.", nil)
}
