package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Dosada05/mytournaments/middleware"
	"github.com/Dosada05/mytournaments/services"
	"github.com/Dosada05/mytournaments/viewmodels"
	"github.com/Dosada05/mytournaments/views"
	"github.com/rs/zerolog/log"
)

// AccountController handles registration and the cookie-based login.
type AccountController struct {
	base
	auth         *services.AuthService
	secureCookie bool
}

func NewAccountController(v *views.Renderer, auth *services.AuthService, secureCookie bool) *AccountController {
	return &AccountController{base: base{views: v}, auth: auth, secureCookie: secureCookie}
}

func (c *AccountController) RegisterForm(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "account/register", "Register", viewmodels.RegisterViewModel{})
}

// Register redisplays the form with 422 on invalid input, including an
// email that is already taken.
func (c *AccountController) Register(w http.ResponseWriter, r *http.Request) {
	values, err := parseForm(w, r)
	if err != nil {
		c.badRequest(w, r, "The submitted form could not be read.")
		return
	}

	vm, bindErrs := viewmodels.BindRegister(values)
	// Пароли обратно в форму не отдаём.
	redisplay := viewmodels.RegisterViewModel{Email: vm.Email, Year: vm.Year}
	if len(bindErrs) > 0 {
		c.renderInvalid(w, r, "account/register", "Register", redisplay, bindErrs)
		return
	}

	user, err := c.auth.Register(r.Context(), vm)
	if err != nil {
		c.formError(w, r, "account/register", "Register", redisplay, err)
		return
	}

	token, err := c.auth.IssueToken(user)
	if err != nil {
		c.handleServiceError(w, r, err)
		return
	}
	c.setAuthCookie(w, token)
	http.Redirect(w, r, "/Games", http.StatusFound)
}

func (c *AccountController) LoginForm(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "account/login", "Log in", viewmodels.LoginViewModel{
		ReturnURL: r.URL.Query().Get("ReturnUrl"),
	})
}

func (c *AccountController) Login(w http.ResponseWriter, r *http.Request) {
	values, err := parseForm(w, r)
	if err != nil {
		c.badRequest(w, r, "The submitted form could not be read.")
		return
	}

	vm, _ := viewmodels.BindLogin(values)
	redisplay := viewmodels.LoginViewModel{Email: vm.Email, ReturnURL: vm.ReturnURL}

	_, token, err := c.auth.Login(r.Context(), vm)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		log.Ctx(r.Context()).Info().Msg("failed login attempt")
		c.views.Render(w, r, http.StatusUnauthorized, "account/login", views.Page{
			Title:  "Log in",
			Data:   redisplay,
			Errors: viewmodels.FieldErrors{{Message: "Invalid login attempt."}},
		})
		return
	case err != nil:
		c.formError(w, r, "account/login", "Log in", redisplay, err)
		return
	}

	c.setAuthCookie(w, token)
	http.Redirect(w, r, localRedirect(vm.ReturnURL), http.StatusFound)
}

func (c *AccountController) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/Games", http.StatusFound)
}

func (c *AccountController) setAuthCookie(w http.ResponseWriter, token string) {
	ttl := c.auth.TokenTTL()
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// localRedirect keeps ReturnUrl on this site.
func localRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/Games"
	}
	return target
}
