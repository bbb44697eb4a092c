package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/invoiceflow/zerodue/app/models"
	"github.com/invoiceflow/zerodue/app/repository"
	"github.com/invoiceflow/zerodue/internal/pkg/database"
	"github.com/invoiceflow/zerodue/internal/pkg/entitlements"
	"github.com/invoiceflow/zerodue/internal/pkg/env"
	"github.com/invoiceflow/zerodue/internal/pkg/mail"
	"github.com/invoiceflow/zerodue/internal/pkg/session"
	"github.com/invoiceflow/zerodue/internal/pkg/usercontext"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates a new inactive account and mails the activation link.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := models.CreateUser(req.Username, req.Email, req.Password)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := user.GenerateActivationToken(); err != nil {
		return internalError(c, "Failed to prepare activation")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if err := repo.Create(user); err != nil {
		return badRequest(c, "An account with this email already exists")
	}

	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	link := fmt.Sprintf("%s/activate/%s", base, user.ActivationToken)
	go func() {
		_ = mail.SendMail(user.Email, "Activate your ZeroDue account",
			fmt.Sprintf("<p>Welcome to ZeroDue!</p><p><a href=\"%s\">Activate your account</a></p>", link))
	}()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user_id": user.ID,
	})
}

// HandleActivate flips an inactive account to active by token.
func HandleActivate(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Params("token"))
	if token == "" {
		return badRequest(c, "Activation token is required")
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByActivationToken(token)
	if err != nil {
		return notFound(c, "Invalid activation token")
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	if err := repo.Update(user); err != nil {
		return internalError(c, "Failed to activate account")
	}

	return c.JSON(fiber.Map{"success": true})
}

// HandleLogin authenticates against the stored bcrypt hash and starts a session.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	// notice: in production you should not inform the user
	// with detailed messages about login failures
	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(req.Email)
	if err != nil {
		return unauthorized(c)
	}
	if !user.CheckPassword(req.Password) {
		return unauthorized(c)
	}
	if !user.IsActive() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account is not activated"})
	}

	if err := startUserSession(c, user); err != nil {
		return internalError(c, "Failed to start session")
	}

	database.GetDB().Model(user).Update("last_login_at", time.Now())

	return c.JSON(fiber.Map{
		"success":  true,
		"user_id":  user.ID,
		"username": user.Name,
	})
}

// HandleLogout destroys the session.
func HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	c.Locals(usercontext.KeyFromProtected, false)
	return c.JSON(fiber.Map{"success": true})
}

// startUserSession writes the authenticated identity into the session store
// and caches the current plan for display.
func startUserSession(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}

	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyUserEmail, user.Email)
	sess.Set(usercontext.KeyIsAdmin, user.Role == models.ROLE_ADMIN)
	if err := sess.Save(); err != nil {
		return err
	}

	plan := string(entitlements.TierFree)
	if profile, err := models.GetOrCreateUserProfile(database.GetDB(), user.ID); err == nil && profile.Plan != "" {
		plan = string(entitlements.NormalizeTier(profile.Plan))
	}
	return session.SetSessionValue(c, usercontext.KeyUserPlan, plan)
}

// findOrCreateOAuthUser matches an OAuth identity to a local account by email,
// creating an active account with a placeholder password when none exists.
func findOrCreateOAuthUser(provider, providerUserID, name, email string) (*models.User, error) {
	repo := repository.GetGlobalFactory().GetUserRepository()

	if email != "" {
		user, err := repo.GetByEmail(email)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	} else {
		// Ensure unique, non-empty email to satisfy unique index semantics in MySQL
		email = fmt.Sprintf("%s_%s@%s.oauth.local", provider, providerUserID, provider)
	}

	placeholder := fmt.Sprintf("oauth_%d", time.Now().UnixNano())
	hash, err := models.HashPassword(placeholder)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = "User"
	}
	user := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.ROLE_USER,
		Status:   models.STATUS_ACTIVE,
	}
	if err := repo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}
