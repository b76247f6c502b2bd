package mockapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode"

	"github.com/ErlanBelekov/invoice-console/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const maxAvatarBytes = 5 << 20

type Handler struct {
	store     *Store
	tokens    *TokenIssuer
	rotate    bool
	mediaBase string
	logger    *slog.Logger
}

// NewHandler builds the API handlers. With rotate set, every refresh returns
// a new refresh token and revokes the old one. mediaBase prefixes avatar URLs.
func NewHandler(store *Store, tokens *TokenIssuer, rotate bool, mediaBase string, logger *slog.Logger) *Handler {
	return &Handler{
		store:     store,
		tokens:    tokens,
		rotate:    rotate,
		mediaBase: strings.TrimRight(mediaBase, "/"),
		logger:    logger.With("component", "mockapi"),
	}
}

type registerRequest struct {
	Name      string `json:"name"      binding:"required"`
	Email     string `json:"email"     binding:"required,email"`
	Password1 string `json:"password1" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
}

// POST /api/auth/register/
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fieldErrors(err))
		return
	}
	if req.Password1 != req.Password2 {
		c.JSON(http.StatusBadRequest, gin.H{"password2": []string{errPasswordMismatch}})
		return
	}
	if len(req.Password1) < domain.MinPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"password1": []string{errPasswordTooShort}})
		return
	}

	u, err := h.store.CreateUser(req.Name, req.Email, req.Password1)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"email": []string{errEmailTaken}})
			return
		}
		h.logger.Error("register", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.JSON(http.StatusCreated, u)
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginUser struct {
	PK    string `json:"pk"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type loginResponse struct {
	Access  string    `json:"access"`
	Refresh string    `json:"refresh"`
	User    loginUser `json:"user"`
}

// POST /api/auth/login/
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fieldErrors(err))
		return
	}

	u, err := h.store.Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidLogin})
		return
	}

	access, err := h.tokens.Access(u.ID)
	if err != nil {
		h.internal(c, "issue access token", err)
		return
	}
	refresh, err := h.tokens.Refresh(u.ID)
	if err != nil {
		h.internal(c, "issue refresh token", err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Access:  access,
		Refresh: refresh,
		User:    loginUser{PK: u.ID, Name: u.Name, Email: u.Email},
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// POST /api/auth/token/refresh/
func (h *Handler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fieldErrors(err))
		return
	}

	claims, err := h.tokens.ParseRefresh(req.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": errTokenExpired})
		return
	}
	if h.store.Revoked(claims.ID) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": errTokenBlacklisted})
		return
	}
	if _, err := h.store.User(claims.Subject); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": errTokenExpired})
		return
	}

	access, err := h.tokens.Access(claims.Subject)
	if err != nil {
		h.internal(c, "issue access token", err)
		return
	}
	resp := refreshResponse{Access: access}
	if h.rotate {
		if resp.Refresh, err = h.tokens.Refresh(claims.Subject); err != nil {
			h.internal(c, "issue refresh token", err)
			return
		}
		h.store.Revoke(claims.ID, claims.ExpiresAt.Time)
	}
	c.JSON(http.StatusOK, resp)
}

// POST /api/auth/logout/
func (h *Handler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fieldErrors(err))
		return
	}
	claims, err := h.tokens.ParseRefresh(req.Refresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": errTokenExpired})
		return
	}
	h.store.Revoke(claims.ID, claims.ExpiresAt.Time)
	c.Status(http.StatusNoContent)
}

// GET /api/auth/:id/
func (h *Handler) UserDetail(c *gin.Context) {
	u, err := h.store.User(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		return
	}
	c.JSON(http.StatusOK, u)
}

// POST /api/auth/edit/ (multipart)
// A request without an avatar file keeps the current avatar_url.
func (h *Handler) EditProfile(c *gin.Context) {
	userID := c.GetString(userIDKey)
	if err := c.Request.ParseMultipartForm(maxAvatarBytes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expected a multipart form"})
		return
	}

	update := domain.ProfileUpdate{
		Name:               strings.TrimSpace(c.PostForm("name")),
		Description:        c.PostForm("description"),
		BusinessName:       c.PostForm("business_name"),
		VATNumber:          c.PostForm("vat_number"),
		RegistrationNumber: c.PostForm("registration_number"),
		Address:            c.PostForm("address"),
		City:               c.PostForm("city"),
		PostalCode:         c.PostForm("postal_code"),
		Country:            c.PostForm("country"),
		Phone:              c.PostForm("phone"),
	}
	// older clients send company_name
	if update.BusinessName == "" {
		update.BusinessName = c.PostForm("company_name")
	}

	var avatarURL string
	fh, err := c.FormFile("avatar")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"avatar": []string{"Upload a valid image."}})
		return
	default:
		f, err := fh.Open()
		if err != nil {
			h.internal(c, "open avatar", err)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxAvatarBytes))
		_ = f.Close()
		if err != nil {
			h.internal(c, "read avatar", err)
			return
		}
		if len(data) > 0 {
			name := h.store.SaveAvatar(domain.Upload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
			avatarURL = h.mediaBase + "/media/avatars/" + name
		}
	}

	u, err := h.store.UpdateProfile(userID, update, avatarURL)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.internal(c, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// GET /media/avatars/:name
func (h *Handler) Avatar(c *gin.Context) {
	up, ok := h.store.Avatar(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errAvatarNotFound})
		return
	}
	ct := up.ContentType
	if ct == "" {
		ct = http.DetectContentType(up.Data)
	}
	c.Data(http.StatusOK, ct, up.Data)
}

func (h *Handler) internal(c *gin.Context, op string, err error) {
	h.logger.ErrorContext(c.Request.Context(), op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
}

// fieldErrors renders binding failures as {"field": ["message"]}.
func fieldErrors(err error) gin.H {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return gin.H{"error": "Malformed request body"}
	}
	out := gin.H{}
	for _, fe := range ve {
		key := snake(fe.Field())
		if _, seen := out[key]; seen {
			continue
		}
		out[key] = []string{validationMessage(fe)}
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Ensure this value is at least " + fe.Param() + "."
	case "oneof":
		return "Must be one of: " + fe.Param() + "."
	}
	return "Invalid value."
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
