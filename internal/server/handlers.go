// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/toeirei/ringmaster/internal/analytics"
	"github.com/toeirei/ringmaster/internal/logging"
	"github.com/toeirei/ringmaster/internal/model"
	"github.com/toeirei/ringmaster/internal/moderation"
	"github.com/toeirei/ringmaster/internal/ring"
)

func (s *Server) handleIndex(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to the ring! Try /next/:siteId or /random")
}

func (s *Server) handleSitesJSON(c *gin.Context) {
	sites, err := s.registry.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sites"})
		return
	}
	if sites == nil {
		sites = []model.Site{}
	}
	c.JSON(http.StatusOK, sites)
}

// handleHop serves /next/:id and /prev/:id.
func (s *Server) handleHop(dir ring.Direction) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.resolveAndRedirect(c, c.Param("id"), dir, "")
	}
}

// handleRandom serves /random. The Referer header is reduced to a hostname
// and used as a best-effort origin exclusion; the resolver attributes the
// hop to whichever member the exclusion removed.
func (s *Server) handleRandom(c *gin.Context) {
	origin := refererHost(c.Request.Referer())
	s.resolveAndRedirect(c, "", ring.DirectionRandom, origin)
}

// handleWebring serves the generic form: /webring?from=<id>&to=<direction>.
func (s *Server) handleWebring(c *gin.Context) {
	from := c.Query("from")
	to := c.DefaultQuery("to", "next")

	dir := ring.Direction(to)
	exclude := ""
	if dir == ring.DirectionRandom {
		exclude = from
	}
	s.resolveAndRedirect(c, from, dir, exclude)
}

// resolveAndRedirect runs one ring hop: fetch the membership snapshot,
// resolve the target, record analytics, redirect. Analytics failures are
// logged and never block the redirect.
func (s *Server) resolveAndRedirect(c *gin.Context, from string, dir ring.Direction, exclude string) {
	sites, err := s.registry.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sites"})
		return
	}

	res, err := ring.Resolve(sites, from, dir, exclude, s.intn)
	if err != nil {
		switch {
		case errors.Is(err, ring.ErrEmptyRing), errors.Is(err, ring.ErrNoCandidates):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ring.ErrInvalidDirection):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "navigation failed"})
		}
		return
	}

	if err := s.recorder.Record(res.From, res.Target.ID); err != nil {
		logging.Warnf("analytics: failed to record %s hop to %s: %v", dir, res.Target.ID, err)
	}
	c.Redirect(http.StatusFound, res.Target.URL)
}

type submitRequest struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

func (s *Server) handleSubmit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sub, err := s.moderation.Submit(c.ClientIP(), req.Domain, req.Name, req.URL)
	if err != nil {
		switch {
		case errors.Is(err, moderation.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, moderation.ErrDuplicatePending):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "you already have a pending submission"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save submission"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Thanks for submitting! Your site will be reviewed.",
		"id":      sub.ID,
	})
}

func (s *Server) handleAdminSubmissions(c *gin.Context) {
	pending, err := s.moderation.ListPending()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list submissions"})
		return
	}
	if pending == nil {
		pending = []model.Submission{}
	}
	c.JSON(http.StatusOK, pending)
}

// adminSite is a ring member enriched with its analytics projection.
type adminSite struct {
	model.Site
	TotalVisits int                   `json:"totalVisits"`
	Referrals   []model.ReferralCount `json:"referrals"`
}

func (s *Server) handleAdminSites(c *gin.Context) {
	sites, err := s.registry.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list sites"})
		return
	}

	enriched := make([]adminSite, 0, len(sites))
	for _, site := range sites {
		stats, err := s.recorder.Get(site.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analytics"})
			return
		}
		refs := stats.Referrals
		if refs == nil {
			refs = []model.ReferralCount{}
		}
		enriched = append(enriched, adminSite{Site: site, TotalVisits: stats.TotalVisits, Referrals: refs})
	}
	c.JSON(http.StatusOK, enriched)
}

func (s *Server) handleAdminAnalytics(c *gin.Context) {
	stats, err := s.recorder.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, analytics.ErrUnknownSite) {
			c.JSON(http.StatusNotFound, gin.H{"error": "site not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analytics"})
		return
	}
	if stats.Referrals == nil {
		stats.Referrals = []model.ReferralCount{}
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleAdminApprove(c *gin.Context) {
	id, ok := submissionID(c)
	if !ok {
		return
	}
	site, err := s.moderation.Approve(id)
	if err != nil {
		moderationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Approved!", "site": site})
}

func (s *Server) handleAdminDeny(c *gin.Context) {
	id, ok := submissionID(c)
	if !ok {
		return
	}
	if err := s.moderation.Deny(id); err != nil {
		moderationError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Denied."})
}

func (s *Server) handleAdminRemove(c *gin.Context) {
	if err := s.registry.Remove(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove site"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Site removed."})
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) handleAdminReorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.registry.Reorder(req.IDs); err != nil {
		if errors.Is(err, ring.ErrInvalidReorder) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reorder sites"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ring order updated."})
}

func submissionID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "submission id must be numeric"})
		return 0, false
	}
	return id, true
}

func moderationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, moderation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "submission not found"})
	case errors.Is(err, moderation.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": "submission has already been decided"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "moderation action failed"})
	}
}

// refererHost reduces a Referer header value to its hostname, or "" when the
// header is absent or unparseable. This is a best-effort attribution hint,
// never a security boundary.
func refererHost(referer string) string {
	if referer == "" {
		return ""
	}
	u, err := url.Parse(referer)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
