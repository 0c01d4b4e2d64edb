package seatmap

import (
	"context"
	"errors"
	"net/http"

	"clustermap/internal/shared/utils/response"
	"clustermap/internal/upstream"
	"clustermap/internal/users"
	"clustermap/pkg/cache"
	"clustermap/pkg/logger"

	"github.com/gin-gonic/gin"
)

// VenueResolver maps a venue id or slug from the URL to the upstream venue
// id. Implemented by the venues service.
type VenueResolver interface {
	ResolveUpstreamID(ctx context.Context, idOrSlug string) (string, error)
}

// MapResponse is the payload of the occupancy map endpoint.
type MapResponse struct {
	Zones []ZoneView `json:"zones"`
	Stats *Stats     `json:"stats"`
	Meta  MapMeta    `json:"meta"`
}

type MapMeta struct {
	Venue       string      `json:"venue"`
	VenueID     string      `json:"venue_id"`
	ActiveCount int         `json:"active_count"`
	Source      string      `json:"source"`
	GeneratedAt int64       `json:"generated_at"`
	HostsCount  int         `json:"hosts_count"`
	Building    bool        `json:"building"`
	Notice      string      `json:"notice,omitempty"`
	LastError   *BuildError `json:"last_error,omitempty"`
}

type Controller struct {
	service  Service
	client   upstream.Client
	users    users.Service
	resolver VenueResolver
	logger   *logger.Logger
}

func NewController(service Service, client upstream.Client, usersService users.Service, resolver VenueResolver) *Controller {
	return &Controller{
		service:  service,
		client:   client,
		users:    usersService,
		resolver: resolver,
		logger:   logger.GetDefault(),
	}
}

// GetMap is the main endpoint: geometry from the cache, occupancy overlaid
// live. An upstream failure on the active set degrades to an empty overlay
// instead of failing the request.
func (c *Controller) GetMap(ctx *gin.Context) {
	venueID, ok := c.resolveVenue(ctx)
	if !ok {
		return
	}
	token := ctx.GetString("access_token")
	reqCtx := ctx.Request.Context()

	active, err := c.client.ListActiveLocations(reqCtx, token, venueID)
	notice := ""
	if err != nil {
		c.logger.WithVenueID(venueID).WithError(err).Warn("active locations unavailable")
		active = nil
		notice = "active_unavailable"
	}

	snapshot := c.service.GetSnapshot(reqCtx, venueID, token, hostsOf(active))
	record := snapshot.Record

	summaries, err := c.users.SummariesByIDs(reqCtx, token, userIDsOf(active))
	if err != nil {
		summaries = nil
	}

	zones, stats := Overlay(record.Zones, active, summaries)

	meta := MapMeta{
		Venue:       ctx.Param("venue"),
		VenueID:     venueID,
		ActiveCount: len(active),
		Source:      record.Source,
		GeneratedAt: record.GeneratedAt,
		HostsCount:  record.HostsCount,
		Building:    snapshot.Building,
		Notice:      snapshot.Notice,
		LastError:   snapshot.LastError,
	}
	if notice != "" {
		meta.Notice = notice
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seatmap retrieved successfully", MapResponse{
		Zones: zones,
		Stats: stats,
		Meta:  meta,
	}, nil)
}

// GetRawRecord exposes the persisted cache record for inspection.
func (c *Controller) GetRawRecord(ctx *gin.Context) {
	venueID, ok := c.resolveVenue(ctx)
	if !ok {
		return
	}

	record, err := c.service.RawRecord(ctx.Request.Context(), venueID)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "No seatmap record for venue", nil, "record not found")
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to read seatmap record", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seatmap record retrieved successfully", record, nil)
}

// Rebuild runs one crawl step synchronously under the build lock. A held
// lock means a build is already running; the caller should retry later.
func (c *Controller) Rebuild(ctx *gin.Context) {
	venueID, ok := c.resolveVenue(ctx)
	if !ok {
		return
	}
	token := ctx.GetString("access_token")
	reqCtx := ctx.Request.Context()

	acquired, err := c.service.AcquireLock(reqCtx, venueID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to acquire build lock", nil, err.Error())
		return
	}
	if !acquired {
		response.RespondJSON(ctx, "error", http.StatusConflict, "Build already in progress", nil, "build lock held")
		return
	}
	defer c.service.ReleaseLock(venueID)

	result, err := c.service.BuildStep(reqCtx, venueID, token)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadGateway, "Build step failed", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Build step completed", result, nil)
}

func (c *Controller) resolveVenue(ctx *gin.Context) (string, bool) {
	idOrSlug := ctx.Param("venue")
	if idOrSlug == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Venue is required", nil, "missing venue")
		return "", false
	}

	venueID, err := c.resolver.ResolveUpstreamID(ctx.Request.Context(), idOrSlug)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Unknown venue", nil, err.Error())
		return "", false
	}
	return venueID, true
}

func hostsOf(active []upstream.Location) []string {
	hosts := make([]string, 0, len(active))
	for _, loc := range active {
		if loc.Host != "" {
			hosts = append(hosts, loc.Host)
		}
	}
	return hosts
}

func userIDsOf(active []upstream.Location) []int {
	seen := make(map[int]struct{}, len(active))
	ids := make([]int, 0, len(active))
	for _, loc := range active {
		if loc.User == nil {
			continue
		}
		if _, dup := seen[loc.User.ID]; dup {
			continue
		}
		seen[loc.User.ID] = struct{}{}
		ids = append(ids, loc.User.ID)
	}
	return ids
}
