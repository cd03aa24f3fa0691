package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"attendcal/internal/attendance"
	"attendcal/internal/auth"
)

// Handler carries the dependencies for the API routes.
type Handler struct {
	store attendance.Store
	auth  *auth.Authenticator
	cache *attendance.MonthCache // nil when redis is not configured
	log   zerolog.Logger
}

// New creates a handler. cache may be nil.
func New(store attendance.Store, a *auth.Authenticator, cache *attendance.MonthCache, log zerolog.Logger) *Handler {
	return &Handler{store: store, auth: a, cache: cache, log: log}
}

// Register mounts the API routes on r.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)
	api.GET("/session", h.SessionStatus)
	api.GET("/calendar", h.GetCalendar)
	api.POST("/attendance", auth.RequireAdmin(h.auth), h.PostAttendance)
}

// ---------- Auth ----------

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies the admin credential and sets the session cookie. The
// failure message is deliberately generic: it must not reveal which of the
// two fields was wrong.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBindJSON(&req) // empty body behaves like empty credentials

	if !h.auth.Verify(req.Username, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "invalid credentials"})
		return
	}

	token, err := h.auth.IssueSession(req.Username)
	if err != nil {
		h.log.Error().Err(err).Msg("session issue failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "session error"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(h.auth.TTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true, "username": req.Username})
}

// Logout clears the session cookie. The token is stateless, so client-side
// deletion is the whole invalidation.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// SessionStatus reports the current session without requiring one.
func (h *Handler) SessionStatus(c *gin.Context) {
	token, _ := c.Cookie(auth.CookieName)
	sess := h.auth.CurrentSession(token)
	var username any
	if sess.LoggedIn {
		username = sess.Username
	}
	c.JSON(http.StatusOK, gin.H{"logged_in": sess.LoggedIn, "username": username})
}

// ---------- Calendar ----------

// GetCalendar assembles the month view. year and month default to the
// current date when omitted.
func (h *Handler) GetCalendar(c *gin.Context) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())
	var err error
	if v := c.Query("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid year/month"})
			return
		}
	}
	if v := c.Query("month"); v != "" {
		if month, err = strconv.Atoi(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid year/month"})
			return
		}
	}
	if month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid year/month"})
		return
	}

	ctx := c.Request.Context()
	days, hit := h.cache.Get(ctx, year, month)
	if !hit {
		days, err = attendance.BuildMonth(ctx, h.store, year, month)
		if err != nil {
			h.log.Error().Err(err).Int("year", year).Int("month", month).Msg("calendar read failed")
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "storage error"})
			return
		}
		h.cache.Set(ctx, year, month, days)
	}
	calendarReads.WithLabelValues(cacheLabel(hit)).Inc()

	c.JSON(http.StatusOK, gin.H{"ok": true, "year": year, "month": month, "days": days})
}

func cacheLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// ---------- Attendance ----------

type attendanceRequest struct {
	Date   string `json:"date"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// PostAttendance upserts the record for one date. Date is validated before
// status, matching the error precedence clients rely on.
func (h *Handler) PostAttendance(c *gin.Context) {
	var req attendanceRequest
	_ = c.ShouldBindJSON(&req)

	day, err := attendance.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid date"})
		return
	}

	status := attendance.Status(req.Status)
	if req.Status == "" {
		status = attendance.StatusNone
	}
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid status"})
		return
	}

	ctx := c.Request.Context()
	if err := h.store.Upsert(ctx, req.Date, status, req.Reason); err != nil {
		h.log.Error().Err(err).Str("date", req.Date).Msg("upsert failed")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "storage error"})
		return
	}
	h.cache.Invalidate(ctx, day)
	attendanceWrites.WithLabelValues(string(status)).Inc()

	c.JSON(http.StatusOK, gin.H{"ok": true, "date": req.Date, "status": status, "reason": req.Reason})
}
