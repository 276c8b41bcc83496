package permissions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/illustrious-cloud/backend/internal/auth"
	"github.com/illustrious-cloud/backend/internal/models"
	"github.com/illustrious-cloud/backend/pkg/response"
)

const (
	// ContextUser is the gin context key for the resolved principal.
	ContextUser = "auth_user"
	// ContextSnapshot is the gin context key for the permission snapshot.
	ContextSnapshot = "auth_permissions"
)

// TokenVerifier exchanges a bearer credential for verified claims.
// Implemented by auth.JWTService; a hosted identity provider slots in behind
// the same contract.
type TokenVerifier interface {
	Validate(ctx context.Context, token string) (*auth.Claims, error)
}

// Require returns a middleware that derives the permission snapshot for the
// given resource kind. It runs the whole pipeline before the handler: bearer
// verification, user lookup, context extraction, role resolution, creator
// links. Handlers read the result; they never re-derive it.
func Require(verifier TokenVerifier, deriver *Deriver, kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.BearerToken(c)
		if token == "" {
			response.Unauthorized(c, MsgMissingToken)
			c.Abort()
			return
		}

		claims, err := verifier.Validate(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, "Unauthorized: "+err.Error())
			c.Abort()
			return
		}

		user, err := deriver.ResolveUser(c.Request.Context(), claims.Identifier)
		if err != nil {
			abortWith(c, err)
			return
		}

		rc, err := requestContext(c, kind)
		if err != nil {
			abortWith(c, err)
			return
		}

		snap, err := deriver.Derive(c.Request.Context(), user, rc)
		if err != nil {
			abortWith(c, err)
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextSnapshot, snap)
		c.Next()
	}
}

// CurrentUser returns the principal resolved by Require.
func CurrentUser(c *gin.Context) *models.User {
	return c.MustGet(ContextUser).(*models.User)
}

// CurrentSnapshot returns the permission snapshot assembled by Require.
func CurrentSnapshot(c *gin.Context) *Snapshot {
	return c.MustGet(ContextSnapshot).(*Snapshot)
}

func abortWith(c *gin.Context, err error) {
	var derr *Error
	if errors.As(err, &derr) {
		c.JSON(derr.Status, response.Error{Message: derr.Message, Code: derr.Status})
	} else {
		response.Internal(c, "failed to resolve permissions")
	}
	c.Abort()
}

// bodyEnvelope is the subset of create/update bodies the extractor needs.
type bodyEnvelope struct {
	ID      string `json:"id"`
	Org     string `json:"org"`
	Client  string `json:"client"`
	Invoice struct {
		ID string `json:"id"`
	} `json:"invoice"`
	Report struct {
		ID string `json:"id"`
	} `json:"report"`
}

// requestContext inspects path parameters and, for create/update requests,
// the JSON body to decide what the request concerns. The body is restored so
// the handler can bind it again.
func requestContext(c *gin.Context, kind Kind) (ReqContext, error) {
	rc := ReqContext{Kind: kind}

	switch kind {
	case KindUser:
		return rc, nil

	case KindOrg:
		if param := c.Param("org"); param != "" {
			id, err := uuid.Parse(param)
			if err != nil {
				return rc, NewBadRequest("invalid organization id")
			}
			rc.OrgID = id
			return rc, nil
		}
		rc.Create = c.Request.Method == http.MethodPost
		env, err := peekBody(c)
		if err != nil {
			return rc, err
		}
		if env.ID != "" {
			id, err := uuid.Parse(env.ID)
			if err != nil {
				return rc, NewBadRequest("invalid organization id")
			}
			rc.OrgID = id
		}
		return rc, nil

	case KindInvoice:
		if param := c.Param("invoice"); param != "" {
			id, err := uuid.Parse(param)
			if err != nil {
				return rc, NewBadRequest("invalid invoice id")
			}
			rc.ResourceID = id
			return rc, nil
		}
		rc.Create = c.Request.Method == http.MethodPost
		env, err := peekBody(c)
		if err != nil {
			return rc, err
		}
		if err := fillFromEnvelope(&rc, env, env.Invoice.ID, "invalid invoice id"); err != nil {
			return rc, err
		}
		return rc, nil

	case KindReport:
		if param := c.Param("report"); param != "" {
			id, err := uuid.Parse(param)
			if err != nil {
				return rc, NewBadRequest("invalid report id")
			}
			rc.ResourceID = id
			return rc, nil
		}
		rc.Create = c.Request.Method == http.MethodPost
		env, err := peekBody(c)
		if err != nil {
			return rc, err
		}
		if err := fillFromEnvelope(&rc, env, env.Report.ID, "invalid report id"); err != nil {
			return rc, err
		}
		return rc, nil
	}

	return rc, nil
}

func fillFromEnvelope(rc *ReqContext, env *bodyEnvelope, resourceID, badIDMsg string) error {
	if env.Org != "" {
		id, err := uuid.Parse(env.Org)
		if err != nil {
			return NewBadRequest("invalid organization id")
		}
		rc.OrgID = id
	}
	if env.Client != "" {
		id, err := uuid.Parse(env.Client)
		if err != nil {
			return NewBadRequest("invalid client id")
		}
		rc.ClientID = id
	}
	if resourceID != "" {
		id, err := uuid.Parse(resourceID)
		if err != nil {
			return NewBadRequest(badIDMsg)
		}
		rc.ResourceID = id
	}
	return nil
}

// peekBody reads the request body for context extraction and puts it back so
// binding in the handler still works.
func peekBody(c *gin.Context) (*bodyEnvelope, error) {
	if c.Request.Body == nil {
		return &bodyEnvelope{}, nil
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, NewBadRequest("unable to read request body")
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if len(raw) == 0 {
		return &bodyEnvelope{}, nil
	}
	var env bodyEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, NewBadRequest("invalid request body")
	}
	return &env, nil
}
