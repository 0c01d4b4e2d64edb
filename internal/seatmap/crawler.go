package seatmap

import (
	"context"
	"errors"
	"time"

	"clustermap/internal/notifications"
	"clustermap/internal/shared/constants"
	"clustermap/internal/upstream"
)

// BuildStep fetches a bounded number of upstream pages, folds the collected
// seat tokens into the persisted record and advances (or clears) the resume
// cursor. Every successful step writes a strictly more complete record, so
// a venue is independently useful long before the crawl completes.
//
// Errors are recorded under the venue's error key and returned for logging;
// they never reach a request path.
func (s *service) BuildStep(ctx context.Context, venueID, token string) (*StepResult, error) {
	page := s.readCursor(ctx, venueID)
	prev := s.readRecord(ctx, venueID)

	var hosts []string
	result := &StepResult{}

	for i := 0; i < s.cfg.PagesPerRun; i++ {
		locations, err := s.client.ListLocations(ctx, token, venueID, page, s.cfg.PageSize, false)
		if err != nil {
			if errors.Is(err, upstream.ErrThrottled) {
				// Leave the cursor exactly where it was: once the cooldown
				// lapses the crawl resumes from this same page.
				s.installCooldown(ctx, venueID)
			}
			s.recordBuildError(ctx, venueID, err)
			return result, err
		}

		result.Pages++
		for _, loc := range locations {
			if loc.Host != "" {
				hosts = append(hosts, loc.Host)
			}
		}

		// A short page is the completion signal.
		if len(locations) < s.cfg.PageSize {
			result.Done = true
			break
		}

		page++
		if i < s.cfg.PagesPerRun-1 {
			s.sleep(ctx, s.cfg.PageDelay)
		}
	}

	result.Hosts = len(hosts)
	result.NextPage = page

	prevMaxima := Maxima{}
	prevCount := 0
	if prev != nil {
		prevMaxima = prev.Maxima
		prevCount = prev.HostsCount
	}

	maxima := MergeMaxima(prevMaxima, parseHosts(hosts))
	record := &CacheRecord{
		Source:      SourceIncremental,
		GeneratedAt: s.now().UnixMilli(),
		HostsCount:  prevCount + len(hosts),
		Maxima:      maxima,
		Zones:       Materialize(maxima),
	}

	// Whole-record replacement: readers only ever observe a complete
	// generation, and replaying a batch cannot shrink maxima.
	if err := s.store.Set(ctx, constants.SeatmapRecordKey(venueID), record, s.cfg.RecordTTL); err != nil {
		s.recordBuildError(ctx, venueID, err)
		return result, err
	}

	if result.Done {
		if err := s.store.Delete(ctx, constants.SeatmapCursorKey(venueID)); err != nil {
			s.recordBuildError(ctx, venueID, err)
			return result, err
		}
	} else {
		if err := s.store.Set(ctx, constants.SeatmapCursorKey(venueID), page, s.cfg.CursorTTL); err != nil {
			s.recordBuildError(ctx, venueID, err)
			return result, err
		}
	}

	_ = s.store.Delete(ctx, constants.SeatmapErrorKey(venueID))

	s.logger.LogBuildStep(ctx, venueID, result.Pages, result.Hosts, result.Done)
	s.publishStep(ctx, venueID, record, result)

	return result, nil
}

func (s *service) readCursor(ctx context.Context, venueID string) int {
	var page int
	if err := s.store.Get(ctx, constants.SeatmapCursorKey(venueID), &page); err != nil || page < 1 {
		return 1
	}
	return page
}

func (s *service) installCooldown(ctx context.Context, venueID string) {
	until := s.now().Add(s.cfg.Cooldown)
	_ = s.store.Set(ctx, constants.SeatmapCooldownKey(venueID), until.UnixMilli(), s.cfg.Cooldown)
	s.logger.LogBuildCooldown(ctx, venueID, until)

	s.publish(ctx, &notifications.BuildEvent{
		Type:    notifications.EventCooldownEntered,
		VenueID: venueID,
		At:      s.now(),
	})
}

func (s *service) recordBuildError(ctx context.Context, venueID string, err error) {
	buildErr := BuildError{
		At:    s.now().UTC().Format(time.RFC3339),
		Error: err.Error(),
	}
	_ = s.store.Set(ctx, constants.SeatmapErrorKey(venueID), buildErr, s.cfg.ErrorTTL)
}

func (s *service) publishStep(ctx context.Context, venueID string, record *CacheRecord, result *StepResult) {
	eventType := notifications.EventStepCompleted
	if result.Done {
		eventType = notifications.EventCrawlFinished
	}

	s.publish(ctx, &notifications.BuildEvent{
		Type:       eventType,
		VenueID:    venueID,
		Pages:      result.Pages,
		Hosts:      result.Hosts,
		HostsCount: record.HostsCount,
		NextPage:   result.NextPage,
		Done:       result.Done,
		At:         s.now(),
	})
}

func (s *service) publish(ctx context.Context, event *notifications.BuildEvent) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishBuildEvent(ctx, event); err != nil {
		s.logger.ErrorWithContext(ctx, "Build event publish failed", err, map[string]interface{}{
			"venue_id": event.VenueID,
			"type":     event.Type,
		})
	}
}
