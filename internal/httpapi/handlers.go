package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"identity-platform/internal/accounts"
	"identity-platform/internal/applications"
	"identity-platform/internal/audit"
	"identity-platform/internal/auth"
	"identity-platform/internal/ratelimit"
	"identity-platform/internal/refresh"
	"identity-platform/internal/users"
	"identity-platform/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Auth         *auth.Service
	Users        *users.Service
	Accounts     *accounts.Service
	Applications *applications.Service
	Audit        *audit.Service
	Throttle     *ratelimit.LoginLimiter
}

// --- Auth ---

type tokenRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Token exchanges a login/password pair for a signed token and a refresh
// token.
//
// Unknown login and wrong password both answer 404 with an identical body so
// the endpoint cannot be used to enumerate identities.
func (h Handlers) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Login == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "login, password required"})
		return
	}

	if h.Throttle != nil {
		allowed, err := h.Throttle.Allow(c.Request.Context(), req.Login)
		if err != nil {
			// Throttle backend trouble must not take logins down with it.
			logger.FromGin(c).Error("login throttle check failed", "err", err)
		} else if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})
			return
		}
	}

	u, err := h.Auth.Authenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		h.recordLoginFailure(c, req.Login, err)
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "authentication failed"})
		return
	}

	creds, err := h.Auth.IssueCredentials(c.Request.Context(), u)
	if err != nil {
		logger.FromGin(c).Error("credential issuance failed", "user_id", u.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token issuance failed"})
		return
	}

	if h.Audit != nil {
		if err := h.Audit.LoginSucceeded(c.Request.Context(), u.ApplicationID, u.ID, u.Login, c.ClientIP()); err != nil {
			logger.FromGin(c).Error("audit write failed", "err", err)
		}
	}
	c.JSON(http.StatusOK, creds)
}

func (h Handlers) recordLoginFailure(c *gin.Context, login string, cause error) {
	if h.Audit == nil {
		return
	}
	var userID int64
	var wrongPassword *auth.WrongPasswordError
	if errors.As(cause, &wrongPassword) {
		userID = wrongPassword.UserID
	}
	if err := h.Audit.LoginFailed(c.Request.Context(), userID, login, c.ClientIP()); err != nil {
		logger.FromGin(c).Error("audit write failed", "err", err)
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshToken exchanges a live refresh token for a fresh credential pair.
// The original refresh token stays valid until its own expiry.
func (h Handlers) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.RefreshToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "refresh_token required"})
		return
	}

	u, creds, err := h.Auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		var expired *refresh.ExpiredError
		switch {
		case errors.Is(err, refresh.ErrNotFound), errors.Is(err, auth.ErrOwnerNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "token not found"})
		case errors.As(err, &expired):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "token expired"})
		default:
			logger.FromGin(c).Error("token refresh failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token refresh failed"})
		}
		return
	}

	if h.Audit != nil {
		if err := h.Audit.TokenRefreshed(c.Request.Context(), u.ApplicationID, u.ID, c.ClientIP()); err != nil {
			logger.FromGin(c).Error("audit write failed", "err", err)
		}
	}
	c.JSON(http.StatusOK, creds)
}

// Me returns the authenticated identity.
func (h Handlers) Me(c *gin.Context) {
	identity, ok := auth.Identity(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, identity)
}

// --- Users ---

func (h Handlers) ListUsers(c *gin.Context) {
	identity, ok := auth.Identity(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	page, perPage := pagination(c)

	list, err := h.Users.List(c.Request.Context(), identity, page, perPage)
	if err != nil {
		if errors.Is(err, users.ErrInvalidArgument) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid pagination"})
			return
		}
		logger.FromGin(c).Error("user listing failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	if list == nil {
		list = []users.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": list, "page": page, "per_page": perPage})
}

func (h Handlers) GetUser(c *gin.Context) {
	_, target, ok := h.resolveTarget(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, target)
}

type createUserRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Login     string `json:"login"`
	Password  string `json:"password"`
}

func (h Handlers) CreateUser(c *gin.Context) {
	identity, ok := auth.Identity(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	u, err := h.Users.Create(c.Request.Context(), identity, users.NewUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Login:     req.Login,
		Password:  req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidArgument):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "login, password required"})
		case errors.Is(err, users.ErrLoginTaken):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "login already exists"})
		default:
			logger.FromGin(c).Error("user creation failed", "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "creation failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, u)
}

type updateUserRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h Handlers) UpdateUser(c *gin.Context) {
	identity, target, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updated, err := h.Users.UpdateProfile(c.Request.Context(), identity, target, users.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h Handlers) DeleteUser(c *gin.Context) {
	identity, target, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	if err := h.Users.Delete(c.Request.Context(), identity, target); err != nil {
		h.writeUserError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Handlers) PromoteUser(c *gin.Context) {
	_, target, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	updated, err := h.Users.Promote(c.Request.Context(), target)
	if err != nil {
		h.writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h Handlers) DemoteUser(c *gin.Context) {
	_, target, ok := h.resolveTarget(c)
	if !ok {
		return
	}

	updated, err := h.Users.Demote(c.Request.Context(), target)
	if err != nil {
		h.writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// resolveTarget loads the user the :id path parameter points at, scoped by
// the actor's visibility. Writes the error response itself on failure.
func (h Handlers) resolveTarget(c *gin.Context) (actor, target users.User, ok bool) {
	identity, authed := auth.Identity(c.Request.Context())
	if !authed {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return users.User{}, users.User{}, false
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return users.User{}, users.User{}, false
	}

	u, found, err := h.Users.Get(c.Request.Context(), identity, id)
	if err != nil {
		logger.FromGin(c).Error("user lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return users.User{}, users.User{}, false
	}
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return users.User{}, users.User{}, false
	}
	return identity, u, true
}

func (h Handlers) writeUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, users.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, users.ErrCrossTenant):
		// Another tenant's user must look exactly like a missing one.
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, users.ErrSelfDelete):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "cannot delete yourself"})
	case errors.Is(err, users.ErrAlreadyPromoted), errors.Is(err, users.ErrNotPromoted):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.FromGin(c).Error("user operation failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}

// --- Accounts ---

func (h Handlers) ListAccounts(c *gin.Context) {
	page, perPage := pagination(c)
	list, err := h.Accounts.List(c.Request.Context(), page, perPage)
	if err != nil {
		logger.FromGin(c).Error("account listing failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	if list == nil {
		list = []accounts.Account{}
	}
	c.JSON(http.StatusOK, gin.H{"accounts": list, "page": page, "per_page": perPage})
}

func (h Handlers) GetAccount(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}
	a, err := h.Accounts.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		logger.FromGin(c).Error("account lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, a)
}

// --- Applications ---

// ListApplications lists the applications sharing the caller's account.
func (h Handlers) ListApplications(c *gin.Context) {
	identity, ok := auth.Identity(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	own, err := h.Applications.Get(c.Request.Context(), identity.ApplicationID)
	if err != nil {
		logger.FromGin(c).Error("application lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	page, perPage := pagination(c)
	list, err := h.Applications.ListForAccount(c.Request.Context(), own.AccountID, page, perPage)
	if err != nil {
		logger.FromGin(c).Error("application listing failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "listing failed"})
		return
	}
	if list == nil {
		list = []applications.Application{}
	}
	c.JSON(http.StatusOK, gin.H{"applications": list, "page": page, "per_page": perPage})
}

// GetApplication exposes only the caller's own application; any other id
// answers 404 regardless of existence.
func (h Handlers) GetApplication(c *gin.Context) {
	identity, ok := auth.Identity(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid application id"})
		return
	}
	if id != identity.ApplicationID {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "application not found"})
		return
	}

	a, err := h.Applications.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, applications.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "application not found"})
			return
		}
		logger.FromGin(c).Error("application lookup failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, a)
}

// pagination reads ?page and ?per_page with sane bounds.
func pagination(c *gin.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}
