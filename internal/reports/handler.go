package reports

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/illustrious-cloud/backend/internal/models"
	"github.com/illustrious-cloud/backend/internal/permissions"
	"github.com/illustrious-cloud/backend/pkg/response"
)

// Store is the persistence surface the handler needs.
type Store interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, rep *models.Report, orgID, creatorID, clientID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	Update(ctx context.Context, rep *models.Report) (*models.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler handles report HTTP endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a reports handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// ReportPayload is the report content of create/update bodies.
type ReportPayload struct {
	ID     uuid.UUID `json:"id"`
	Rating int       `json:"rating" binding:"required,min=1,max=5"`
	Notes  string    `json:"notes"`
}

// SubmitReport is the body for POST /report and PUT /report. Org and Client
// are only meaningful on create.
type SubmitReport struct {
	Org    uuid.UUID     `json:"org"`
	Client uuid.UUID     `json:"client"`
	Report ReportPayload `json:"report" binding:"required"`
}

// Create handles POST /report. Requires superadmin or an org role above
// client; the named client's membership was already verified during
// derivation.
func (h *Handler) Create(c *gin.Context) {
	user := permissions.CurrentUser(c)
	snap := permissions.CurrentSnapshot(c)

	if !snap.SuperAdmin && !snap.RoleAbove(models.RoleClient) {
		response.Unauthorized(c, "You do not have permission to create a report.")
		return
	}

	var body SubmitReport
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if body.Org == uuid.Nil || body.Client == uuid.Nil {
		response.BadRequest(c, "org and client are required")
		return
	}

	if body.Report.ID != uuid.Nil {
		exists, err := h.store.Exists(c.Request.Context(), body.Report.ID)
		if err != nil {
			response.Internal(c, "failed to create report")
			return
		}
		if exists {
			response.Conflict(c, "Report already exists!")
			return
		}
	} else {
		body.Report.ID = uuid.New()
	}

	rep := &models.Report{ID: body.Report.ID, Rating: body.Report.Rating, Notes: body.Report.Notes}
	if err := h.store.Create(c.Request.Context(), rep, body.Org, user.ID, body.Client); err != nil {
		response.Internal(c, "failed to create report")
		return
	}

	response.Created(c, "Report created successfully.", rep)
}

// FetchOne handles GET /report/:report. Requires superadmin, an org role
// above employee, or being a party to the report.
func (h *Handler) FetchOne(c *gin.Context) {
	snap := permissions.CurrentSnapshot(c)
	if !snap.SuperAdmin && !snap.RoleAbove(models.RoleEmployee) && !snap.ReportCreator() {
		response.Unauthorized(c, "You do not have permission to access this report.")
		return
	}

	rep, err := h.store.GetByID(c.Request.Context(), snap.Report.ID)
	if err != nil {
		response.NotFound(c, "report not found")
		return
	}

	response.OK(c, "Report fetched successfully.", rep)
}

// Update handles PUT /report. Requires superadmin, an org role above
// employee, or being a party with a role above client.
func (h *Handler) Update(c *gin.Context) {
	snap := permissions.CurrentSnapshot(c)
	if !h.canMutate(snap) {
		response.Unauthorized(c, "You do not have permission to update this report.")
		return
	}

	var body SubmitReport
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	rep := &models.Report{ID: body.Report.ID, Rating: body.Report.Rating, Notes: body.Report.Notes}
	updated, err := h.store.Update(c.Request.Context(), rep)
	if err != nil {
		response.Internal(c, "failed to update report")
		return
	}

	response.OK(c, "Report updated successfully.", updated)
}

// Delete handles DELETE /report/:report. Same gate as update.
func (h *Handler) Delete(c *gin.Context) {
	snap := permissions.CurrentSnapshot(c)
	if !h.canMutate(snap) {
		response.Unauthorized(c, "You do not have permission to delete this report.")
		return
	}

	if err := h.store.Delete(c.Request.Context(), snap.Report.ID); err != nil {
		response.Internal(c, "failed to delete report")
		return
	}

	response.OK(c, "Report deleted successfully.", nil)
}

func (h *Handler) canMutate(snap *permissions.Snapshot) bool {
	if snap.SuperAdmin || snap.RoleAbove(models.RoleEmployee) {
		return true
	}
	return snap.ReportCreator() && snap.RoleAbove(models.RoleClient)
}
