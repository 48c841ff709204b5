package controllers

import (
	"errors"

	"restaurant/middlewares"
	"restaurant/pkg/apperr"
	"restaurant/pkg/resp"
	"restaurant/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type CredentialsRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type AuthController struct {
	Svc    *services.AuthService
	Cookie middlewares.SessionCookie
	Log    zerolog.Logger
}

func NewAuthController(svc *services.AuthService, cookie middlewares.SessionCookie, log zerolog.Logger) *AuthController {
	return &AuthController{Svc: svc, Cookie: cookie, Log: log}
}

// GET /
func (a *AuthController) LoginPage(c *gin.Context) {
	resp.OK(c, gin.H{"form": "login", "error": c.Query("error")})
}

// POST /
func (a *AuthController) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBind(&req); err != nil || req.Username == "" || req.Password == "" {
		resp.BadRequest(c, "username and password are required")
		return
	}
	a.leaveCurrentSession(c)

	issued, err := a.Svc.LoginRegular(req.Username, req.Password)
	if err != nil {
		resp.Error(c, err)
		return
	}
	a.Cookie.Set(c, issued.Token, issued.ExpiresAt)
	if issued.Principal.Kind == services.PrincipalAdmin {
		resp.SeeOther(c, "/admin")
		return
	}
	resp.SeeOther(c, "/home")
}

// GET /register
func (a *AuthController) RegisterPage(c *gin.Context) {
	resp.OK(c, gin.H{"form": "register"})
}

// POST /register
func (a *AuthController) Register(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		resp.BadRequest(c, "invalid form")
		return
	}
	if _, err := a.Svc.Register(req.Username, req.Password); err != nil {
		resp.Error(c, err)
		return
	}
	resp.SeeOther(c, "/")
}

// GET /admin/login
func (a *AuthController) AdminLoginPage(c *gin.Context) {
	resp.OK(c, gin.H{"form": "admin_login", "error": c.Query("error")})
}

// POST /admin/login
func (a *AuthController) AdminLogin(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBind(&req); err != nil || req.Username == "" || req.Password == "" {
		resp.BadRequest(c, "username and password are required")
		return
	}
	a.leaveCurrentSession(c)

	issued, err := a.Svc.LoginAdmin(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCredentials) {
			a.Log.Warn().Str("ip", c.ClientIP()).Msg("failed admin login")
		}
		resp.Error(c, err)
		return
	}
	a.Cookie.Set(c, issued.Token, issued.ExpiresAt)
	resp.SeeOther(c, "/admin")
}

// GET /logout
func (a *AuthController) Logout(c *gin.Context) {
	if !a.endSession(c) {
		return
	}
	resp.SeeOther(c, "/")
}

// GET /admin/logout
func (a *AuthController) AdminLogout(c *gin.Context) {
	if !a.endSession(c) {
		return
	}
	resp.SeeOther(c, "/admin/login")
}

// GET /admin/home
func (a *AuthController) AdminHome(c *gin.Context) {
	p := middlewares.CurrentPrincipal(c)
	data := gin.H{"kind": p.Kind}
	if p.User != nil {
		data["username"] = p.User.Username
	}
	resp.OK(c, data)
}

func (a *AuthController) endSession(c *gin.Context) bool {
	p := middlewares.CurrentPrincipal(c)
	if p != nil {
		if err := a.Svc.Logout(p.SessionID); err != nil {
			resp.ServerError(c, err)
			return false
		}
	}
	a.Cookie.Clear(c)
	return true
}

// leaveCurrentSession drops any session the request already carries, so a
// login always starts from anonymous.
func (a *AuthController) leaveCurrentSession(c *gin.Context) {
	if p := middlewares.CurrentPrincipal(c); p != nil {
		if err := a.Svc.Logout(p.SessionID); err != nil {
			a.Log.Error().Err(err).Msg("revoke previous session")
		}
	}
}
