package invoices

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/illustrious-cloud/backend/internal/models"
	"github.com/illustrious-cloud/backend/internal/permissions"
	"github.com/illustrious-cloud/backend/pkg/response"
)

// Store is the persistence surface the handler needs.
type Store interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, inv *models.Invoice, orgID, creatorID, clientID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	Update(ctx context.Context, inv *models.Invoice) (*models.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler handles invoice HTTP endpoints.
type Handler struct {
	store Store
}

// NewHandler creates an invoices handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// InvoicePayload is the invoice content of create/update bodies.
type InvoicePayload struct {
	ID    uuid.UUID `json:"id"`
	Paid  bool      `json:"paid"`
	Value string    `json:"value" binding:"required"`
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
	Due   time.Time `json:"due" binding:"required"`
}

// SubmitInvoice is the body for POST /invoice and PUT /invoice. Org and
// Client are only meaningful on create.
type SubmitInvoice struct {
	Org     uuid.UUID      `json:"org"`
	Client  uuid.UUID      `json:"client"`
	Invoice InvoicePayload `json:"invoice" binding:"required"`
}

func (p InvoicePayload) toModel() *models.Invoice {
	return &models.Invoice{
		ID:    p.ID,
		Paid:  p.Paid,
		Value: p.Value,
		Start: p.Start,
		End:   p.End,
		Due:   p.Due,
	}
}

// Create handles POST /invoice. Requires superadmin or an org role above
// client; the named client's membership was already verified during
// derivation.
func (h *Handler) Create(c *gin.Context) {
	user := permissions.CurrentUser(c)
	snap := permissions.CurrentSnapshot(c)

	if !snap.SuperAdmin && !snap.RoleAbove(models.RoleClient) {
		response.Unauthorized(c, "You do not have permission to create an invoice.")
		return
	}

	var body SubmitInvoice
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if body.Org == uuid.Nil || body.Client == uuid.Nil {
		response.BadRequest(c, "org and client are required")
		return
	}

	if body.Invoice.ID != uuid.Nil {
		exists, err := h.store.Exists(c.Request.Context(), body.Invoice.ID)
		if err != nil {
			response.Internal(c, "failed to create invoice")
			return
		}
		if exists {
			response.Conflict(c, "Invoice already exists!")
			return
		}
	} else {
		body.Invoice.ID = uuid.New()
	}

	inv := body.Invoice.toModel()
	if err := h.store.Create(c.Request.Context(), inv, body.Org, user.ID, body.Client); err != nil {
		response.Internal(c, "failed to create invoice")
		return
	}

	response.Created(c, "Invoice created successfully.", inv)
}

// FetchOne handles GET /invoice/:invoice. Requires superadmin, an org role
// above employee, or being a party to the invoice.
func (h *Handler) FetchOne(c *gin.Context) {
	snap := permissions.CurrentSnapshot(c)
	if !snap.SuperAdmin && !snap.RoleAbove(models.RoleEmployee) && !snap.InvoiceCreator() {
		response.Unauthorized(c, "You do not have permission to access this invoice.")
		return
	}

	inv, err := h.store.GetByID(c.Request.Context(), snap.Invoice.ID)
	if err != nil {
		response.NotFound(c, "invoice not found")
		return
	}

	response.OK(c, "Invoice fetched successfully.", inv)
}

// Update handles PUT /invoice. Requires superadmin, an org role above
// employee, or being a party with a role above client.
func (h *Handler) Update(c *gin.Context) {
	snap := permissions.CurrentSnapshot(c)
	if !h.canMutate(snap) {
		response.Unauthorized(c, "You do not have permission to update this invoice.")
		return
	}

	var body SubmitInvoice
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	updated, err := h.store.Update(c.Request.Context(), body.Invoice.toModel())
	if err != nil {
		response.Internal(c, "failed to update invoice")
		return
	}

	response.OK(c, "Invoice updated successfully.", updated)
}

// Delete handles DELETE /invoice/:invoice. Same gate as update.
func (h *Handler) Delete(c *gin.Context) {
	snap := permissions.CurrentSnapshot(c)
	if !h.canMutate(snap) {
		response.Unauthorized(c, "You do not have permission to delete this invoice.")
		return
	}

	if err := h.store.Delete(c.Request.Context(), snap.Invoice.ID); err != nil {
		response.Internal(c, "failed to delete invoice")
		return
	}

	response.OK(c, "Invoice deleted successfully.", nil)
}

func (h *Handler) canMutate(snap *permissions.Snapshot) bool {
	if snap.SuperAdmin || snap.RoleAbove(models.RoleEmployee) {
		return true
	}
	return snap.InvoiceCreator() && snap.RoleAbove(models.RoleClient)
}
