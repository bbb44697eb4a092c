package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/invoiceflow/zerodue/app/models"
	"github.com/invoiceflow/zerodue/internal/pkg/database"
	"github.com/invoiceflow/zerodue/internal/pkg/entitlements"
	"github.com/invoiceflow/zerodue/internal/pkg/session"
	"github.com/invoiceflow/zerodue/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request.
// This centralizes user session handling and eliminates code duplication.
func UserContextMiddleware(c *fiber.Ctx) error {
	// Avoid interfering with Goth/Fiber session handling on OAuth routes.
	// Goth uses its own fiber session store and relies on per-request locals.
	// We skip our app session on /auth/* to prevent cross-store collisions.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			IsLoggedIn: false,
			IsAdmin:    false,
		})
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	userID, ok := sessionUserID(sess.Get(usercontext.KeyUserID))
	if !ok {
		// Anonymous user: no session data, or a user id a previous build
		// serialized with a different type. Either way the request proceeds
		// unauthenticated instead of panicking.
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			IsLoggedIn: false,
			IsAdmin:    false,
		})
		c.Locals(usercontext.KeyFromProtected, false)
		return c.Next()
	}

	username := session.GetSessionValue(c, usercontext.KeyUsername)
	email := session.GetSessionValue(c, usercontext.KeyUserEmail)
	isAdmin, _ := sess.Get(usercontext.KeyIsAdmin).(bool)

	// Determine plan with session-first strategy. The session copy is a
	// display hint only; entitlement checks re-read the profile store.
	plan := session.GetSessionValue(c, usercontext.KeyUserPlan)
	if plan == "" {
		plan = string(entitlements.TierFree)
		if db := database.GetDB(); db != nil {
			if profile, err := models.GetOrCreateUserProfile(db, userID); err == nil && profile != nil && profile.Plan != "" {
				plan = string(entitlements.NormalizeTier(profile.Plan))
			}
		}
		// cache in session for subsequent requests
		_ = session.SetSessionValue(c, usercontext.KeyUserPlan, plan)
	}

	userCtx := usercontext.UserContext{
		UserID:     userID,
		Username:   username,
		Email:      email,
		IsLoggedIn: true,
		IsAdmin:    isAdmin,
		Plan:       plan,
	}
	c.Locals("USER_CONTEXT", userCtx)

	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyUsername, username)
	c.Locals(usercontext.KeyUserID, userID)
	c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)

	return c.Next()
}

// sessionUserID converts the session's stored user id to a usable uint. A
// corrupt or foreign-typed value yields ok=false rather than a panic; session
// values survive deploys, so the stored type cannot be trusted blindly.
func sessionUserID(v interface{}) (uint, bool) {
	switch id := v.(type) {
	case uint:
		return id, id != 0
	case uint64:
		return uint(id), id != 0
	case int:
		if id > 0 {
			return uint(id), true
		}
	case int64:
		if id > 0 {
			return uint(id), true
		}
	case float64:
		if id > 0 && id == float64(uint(id)) {
			return uint(id), true
		}
	}
	return 0, false
}
