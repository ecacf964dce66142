package http

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"expense-ledger/internal/domain"
	"expense-ledger/internal/service"
	"expense-ledger/internal/session"
	"expense-ledger/internal/storage"
	"expense-ledger/web"
)

// Server-side stash keys for the consume-once filter state. The home view
// takes the total, the export takes the records; each independently.
const (
	keyFilteredTotal    = "filtered_total"
	keyFilteredExpenses = "filtered_expenses"
)

const (
	ctxSession = "session"
	ctxUser    = "user"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth        service.AuthService
	expenses    service.ExpenseService
	reports     service.ReportService
	exports     service.ExportService
	sessions    *session.Manager
	store       *session.Store
	archiver    storage.Archiver
	archiveOpts storage.ArchiveOptions
	logger      *logrus.Logger
}

func NewHandler(
	auth service.AuthService,
	expenses service.ExpenseService,
	reports service.ReportService,
	exports service.ExportService,
	sessions *session.Manager,
	store *session.Store,
	archiver storage.Archiver,
	archiveOpts storage.ArchiveOptions,
	logger *logrus.Logger,
) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		auth:        auth,
		expenses:    expenses,
		reports:     reports,
		exports:     exports,
		sessions:    sessions,
		store:       store,
		archiver:    archiver,
		archiveOpts: archiveOpts,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(template.Must(template.ParseFS(web.TemplatesFS, "templates/*.html")))

	router.GET("/signup", h.signupForm)
	router.POST("/signup", h.signup)
	router.GET("/login", h.loginForm)
	router.POST("/login", h.login)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	authed := router.Group("/", h.requireAuth())
	{
		authed.GET("/", h.home)
		authed.POST("/", h.home)
		authed.GET("/logout", h.logout)
		authed.POST("/add-expense", h.addExpense)
		authed.DELETE("/delete-expense/:id", h.deleteExpense)
		authed.POST("/filter-expense", h.filterExpenses)
		authed.GET("/export-csv", h.exportCSV)
	}
}

// requireAuth verifies the session cookie, resolves the account, and makes
// both available to downstream handlers. Anything invalid redirects to login.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(session.CookieName)
		if err != nil || token == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		sess, err := h.sessions.Verify(token)
		if err != nil {
			h.clearSessionCookie(c)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		user, err := h.auth.GetByID(c.Request.Context(), sess.UserID)
		if err != nil {
			h.clearSessionCookie(c)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(ctxSession, sess)
		c.Set(ctxUser, user)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(ctxSession).(*session.Session)
}

func currentUser(c *gin.Context) *domain.User {
	return c.MustGet(ctxUser).(*domain.User)
}

func (h *Handler) signupForm(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", gin.H{"Flashes": []session.Flash{}})
}

func (h *Handler) signup(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.auth.Signup(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			h.renderAuthPage(c, "signup.html", "User already exists")
			return
		}
		h.logger.Warnf("signup: %v", err)
		h.renderAuthPage(c, "signup.html", "Could not create account")
		return
	}

	if !h.establishSession(c, user.ID) {
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) loginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Flashes": []session.Flash{}})
}

func (h *Handler) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.auth.Authenticate(c.Request.Context(), username, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Warnf("login: %v", err)
		}
		// one message for every failure mode, nothing about which field was wrong
		h.renderAuthPage(c, "login.html", "Invalid credentials")
		return
	}

	if !h.establishSession(c, user.ID) {
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) logout(c *gin.Context) {
	sess := currentSession(c)
	h.store.Drop(sess.ID)
	h.clearSessionCookie(c)
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) home(c *gin.Context) {
	sess := currentSession(c)
	user := currentUser(c)
	ctx := c.Request.Context()

	// consume-once: a stale filtered total must not survive this render
	var filteredTotal int64
	if v, ok := h.store.Take(sess.ID, keyFilteredTotal); ok {
		filteredTotal, _ = v.(int64)
	}

	recent, err := h.expenses.Recent(ctx, user.ID)
	if err != nil {
		h.fail(c, "list recent expenses", err)
		return
	}
	sumAll, err := h.reports.TotalAll(ctx, user.ID)
	if err != nil {
		h.fail(c, "total expenses", err)
		return
	}
	categories, err := h.reports.SumByCategory(ctx, user.ID)
	if err != nil {
		h.fail(c, "sum by category", err)
		return
	}
	dates, err := h.reports.SumByDate(ctx, user.ID)
	if err != nil {
		h.fail(c, "sum by date", err)
		return
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Username":      user.Username,
		"Recent":        recent,
		"SumAll":        sumAll,
		"Categories":    categories,
		"Dates":         dates,
		"FilteredTotal": filteredTotal,
		"Flashes":       h.store.TakeFlashes(sess.ID),
	})
}

func (h *Handler) addExpense(c *gin.Context) {
	sess := currentSession(c)
	user := currentUser(c)

	_, err := h.expenses.Add(
		c.Request.Context(),
		user.ID,
		c.PostForm("desc"),
		c.PostForm("amt"),
		c.PostForm("category"),
		c.PostForm("date"),
	)
	if err != nil {
		if errors.Is(err, service.ErrInvalidExpense) {
			h.store.AddFlash(sess.ID, session.Flash{Kind: "error", Message: err.Error()})
			c.Redirect(http.StatusFound, "/")
			return
		}
		h.fail(c, "add expense", err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) deleteExpense(c *gin.Context) {
	user := currentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.String(http.StatusNotFound, "expense not found")
		return
	}

	if err := h.expenses.Delete(c.Request.Context(), user.ID, id); err != nil {
		if errors.Is(err, service.ErrExpenseNotFound) {
			c.String(http.StatusNotFound, "expense not found")
			return
		}
		h.fail(c, "delete expense", err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) filterExpenses(c *gin.Context) {
	sess := currentSession(c)
	user := currentUser(c)

	result, err := h.reports.Filter(c.Request.Context(), user.ID, service.FilterCriteria{
		StartDate: c.PostForm("startdate"),
		EndDate:   c.PostForm("enddate"),
		Category:  c.PostForm("category"),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidFilter) {
			h.store.AddFlash(sess.ID, session.Flash{Kind: "error", Message: err.Error()})
			c.Redirect(http.StatusFound, "/")
			return
		}
		h.fail(c, "filter expenses", err)
		return
	}

	h.store.Put(sess.ID, keyFilteredExpenses, result.Expenses)
	h.store.Put(sess.ID, keyFilteredTotal, result.Total)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) exportCSV(c *gin.Context) {
	sess := currentSession(c)
	user := currentUser(c)

	var records []domain.ExpenseRecord
	if v, ok := h.store.Take(sess.ID, keyFilteredExpenses); ok {
		records, _ = v.([]domain.ExpenseRecord)
	}

	body, err := h.exports.BuildCSV(records)
	if err != nil {
		h.fail(c, "build csv", err)
		return
	}

	if h.archiver != nil && h.archiveOpts.Bucket != "" {
		name := fmt.Sprintf("user-%d/expenses-%s.csv", user.ID, time.Now().UTC().Format("20060102T150405Z"))
		if location, err := h.archiver.Archive(c.Request.Context(), name, "text/csv", body, h.archiveOpts); err != nil {
			h.logger.Warnf("archive csv export: %v", err)
		} else {
			h.logger.Infof("archived csv export to %s", location)
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", service.ExportFilename))
	c.Data(http.StatusOK, "text/csv", body)
}

func (h *Handler) renderAuthPage(c *gin.Context, page, message string) {
	c.HTML(http.StatusOK, page, gin.H{
		"Flashes": []session.Flash{{Kind: "error", Message: message}},
	})
}

func (h *Handler) establishSession(c *gin.Context, userID int64) bool {
	token, _, err := h.sessions.Issue(userID)
	if err != nil {
		h.fail(c, "issue session", err)
		return false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, int(h.sessions.TTL().Seconds()), "/", "", false, true)
	return true
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", false, true)
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	h.logger.Errorf("%s: %v", op, err)
	c.String(http.StatusInternalServerError, "internal error")
}
