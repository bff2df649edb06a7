package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"everkeep-api/internal/core/auth"
	"everkeep-api/internal/domain"
	"everkeep-api/internal/service"
	httpez "everkeep-api/internal/transport/http/ez"
	mdw "everkeep-api/internal/transport/http/middleware"
)

type authModule struct {
	db    *gorm.DB
	svc   *service.UserService
	jwter *auth.JWTer
}

func newAuthModule(db *gorm.DB, jwter *auth.JWTer) *authModule {
	return &authModule{db: db, svc: service.NewUserService(db), jwter: jwter}
}

func (m *authModule) Priority() int { return 10 } // 先挂 /auth，路由日志好读

type userOut struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Avatar    string      `json:"avatar,omitempty"`
	Plan      domain.Plan `json:"plan"`
	Role      string      `json:"role"`
}

func toUserOut(u *domain.User) userOut {
	return userOut{
		ID: u.ID, Email: u.Email,
		FirstName: u.FirstName, LastName: u.LastName,
		Avatar: u.Avatar, Plan: u.Plan, Role: u.Role,
	}
}

type sessionOut struct {
	Token string  `json:"token"`
	User  userOut `json:"user"`
}

func (m *authModule) MountAPI(pub, authed *gin.RouterGroup) {
	ezPub := httpez.New(pub)

	type registerIn struct {
		Email     string `json:"email"     binding:"required,email"`
		Password  string `json:"password"  binding:"required,min=8"`
		FirstName string `json:"firstName" binding:"required,max=64"`
		LastName  string `json:"lastName"  binding:"required,max=64"`
	}
	httpez.RegisterAction[registerIn, sessionOut](ezPub, m.db, httpez.Action[registerIn, sessionOut]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ *gorm.DB, in *registerIn) (sessionOut, error) {
			u, err := m.svc.Register(c.Request.Context(), service.RegisterInput{
				Email: in.Email, Password: in.Password,
				FirstName: in.FirstName, LastName: in.LastName,
			})
			if err != nil {
				if errors.Is(err, service.ErrEmailTaken) {
					return sessionOut{}, httpez.BadRequest("email already registered")
				}
				return sessionOut{}, httpez.Internal("register failed", err)
			}
			return m.session(u)
		},
	})

	type loginIn struct {
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	httpez.RegisterAction[loginIn, sessionOut](ezPub, m.db, httpez.Action[loginIn, sessionOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, _ *gorm.DB, in *loginIn) (sessionOut, error) {
			u, err := m.svc.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				if errors.Is(err, service.ErrInvalidCredentials) {
					return sessionOut{}, httpez.Unauthorized("invalid credentials")
				}
				return sessionOut{}, httpez.Internal("login failed", err)
			}
			return m.session(u)
		},
	})

	ezAuth := httpez.New(authed)
	httpez.RegisterAction[struct{}, userOut](ezAuth, m.db, httpez.Action[struct{}, userOut]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *gorm.DB, _ *struct{}) (userOut, error) {
			u, err := m.svc.Get(c.Request.Context(), c.GetString(mdw.KeyUserID))
			if err != nil {
				return userOut{}, err
			}
			return toUserOut(u), nil
		},
	})
}

func (m *authModule) session(u *domain.User) (sessionOut, error) {
	tok, err := m.jwter.Issue(u.ID, u.Role)
	if err != nil || tok == "" {
		return sessionOut{}, httpez.Internal("issue token failed", err)
	}
	return sessionOut{Token: tok, User: toUserOut(u)}, nil
}
