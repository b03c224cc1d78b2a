package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework

	"storefront/internal/middleware" // Session cookie name and caller identity
	"storefront/internal/service"    // Account flows
	"storefront/internal/utils"      // Session lifetime
)

// SigninRequest is the signin body
type SigninRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// ResetRequestRequest asks for a reset mail
type ResetRequestRequest struct {
	Email string `json:"email" binding:"required"` // Email must be provided
}

// Cookies decides how the session cookie is written
type Cookies struct {
	Secure bool // Only send over HTTPS
}

func (k Cookies) set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(utils.SessionTTL.Seconds()), "/", "", k.Secure, true)
}

func (k Cookies) clear(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", k.Secure, true)
}

// SignupHandler creates an account and signs it in
func SignupHandler(auth *service.Auth, cookies Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.SignupInput
		if !bind(c, &req) {
			return
		}
		user, token, err := auth.Signup(c.Request.Context(), req)
		if err != nil {
			fail(c, err)
			return
		}
		cookies.set(c, token)
		c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
	}
}

// SigninHandler authenticates a user and sets the session cookie
func SigninHandler(auth *service.Auth, cookies Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SigninRequest
		if !bind(c, &req) {
			return
		}
		user, token, err := auth.Signin(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			fail(c, err)
			return
		}
		cookies.set(c, token)
		c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
	}
}

// SignoutHandler clears the session cookie
func SignoutHandler(cookies Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookies.clear(c)
		c.JSON(http.StatusOK, gin.H{"message": "GoodBye!"})
	}
}

// RequestResetHandler mails a password reset link
func RequestResetHandler(auth *service.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetRequestRequest
		if !bind(c, &req) {
			return
		}
		if err := auth.RequestReset(c.Request.Context(), req.Email); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Thanks"})
	}
}

// ResetPasswordHandler sets a new password from a reset token and signs the user in
func ResetPasswordHandler(auth *service.Auth, cookies Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ResetInput
		if !bind(c, &req) {
			return
		}
		user, token, err := auth.ResetPassword(c.Request.Context(), req)
		if err != nil {
			fail(c, err)
			return
		}
		cookies.set(c, token)
		c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
	}
}
