// Copyright Bandroom contributors.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bandroom/rehearsal-service/internal/domain"
	"github.com/bandroom/rehearsal-service/internal/domain/models"
	"github.com/bandroom/rehearsal-service/internal/logging"
	"github.com/bandroom/rehearsal-service/pkg/concurrent"
)

// RehearsalService is the lifecycle manager for rehearsal occurrences.
// It keeps each band's rolling window of occurrences current (pruning past
// dates, repairing gaps in recurring series) and propagates edits and
// deletes across a series.
type RehearsalService struct {
	BandReader           domain.BandReader
	OccurrenceRepository domain.OccurrenceRepository
	ResponseRepository   domain.ResponseRepository
	Expander             domain.RecurrenceExpander
	Reconciler           domain.ResponseReconciler
	MessageBuilder       domain.MessageBuilder
	Config               ServiceConfig

	// nowFunc returns the current time; overridable in tests.
	nowFunc func() time.Time
	pool    *concurrent.WorkerPool
}

// NewRehearsalService creates a new RehearsalService.
func NewRehearsalService(
	bandReader domain.BandReader,
	occurrenceRepository domain.OccurrenceRepository,
	responseRepository domain.ResponseRepository,
	expander domain.RecurrenceExpander,
	reconciler domain.ResponseReconciler,
	messageBuilder domain.MessageBuilder,
	config ServiceConfig,
) *RehearsalService {
	return &RehearsalService{
		BandReader:           bandReader,
		OccurrenceRepository: occurrenceRepository,
		ResponseRepository:   responseRepository,
		Expander:             expander,
		Reconciler:           reconciler,
		MessageBuilder:       messageBuilder,
		Config:               config,
		nowFunc:              time.Now,
		pool:                 concurrent.NewWorkerPool(4),
	}
}

// ServiceReady checks if the service is ready for use.
func (s *RehearsalService) ServiceReady() bool {
	return s.BandReader != nil &&
		s.OccurrenceRepository != nil &&
		s.ResponseRepository != nil &&
		s.Expander != nil &&
		s.Reconciler != nil &&
		s.MessageBuilder != nil
}

// today returns the current UTC day. All pruning and series-window decisions
// compare against the server's UTC date, never the client's local date.
func (s *RehearsalService) today() time.Time {
	now := s.nowFunc().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// GetRehearsal returns one occurrence by UID.
func (s *RehearsalService) GetRehearsal(ctx context.Context, occurrenceUID string) (*models.RehearsalOccurrence, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("rehearsal service not ready")
	}
	return s.OccurrenceRepository.Get(ctx, occurrenceUID)
}

// ListRehearsals returns the band's occurrences ordered by date ascending.
func (s *RehearsalService) ListRehearsals(ctx context.Context, bandUID string) ([]*models.RehearsalOccurrence, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("rehearsal service not ready")
	}
	return s.OccurrenceRepository.ListByBand(ctx, bandUID)
}

func (s *RehearsalService) validateCreateRequest(req *models.CreateRehearsalRequest) error {
	if req == nil {
		return domain.NewValidationError("request payload is required")
	}
	if req.Date == "" {
		return domain.NewValidationError("date is required")
	}
	if _, err := models.ParseDate(req.Date); err != nil {
		return domain.NewValidationError(fmt.Sprintf("invalid date %q", req.Date), err)
	}
	for _, v := range []string{req.StartTime, req.EndTime} {
		if v == "" {
			continue
		}
		if _, err := time.Parse(models.TimeLayout, v); err != nil {
			return domain.NewValidationError(fmt.Sprintf("invalid time %q", v), err)
		}
	}
	return nil
}

// CreateRehearsal creates a standalone occurrence, or materializes a full
// recurring series when the request carries a recurrence rule. Series
// creation is eager: the whole expansion is stored up front and auto-manage
// only repairs gaps afterwards.
func (s *RehearsalService) CreateRehearsal(ctx context.Context, bandUID string, req *models.CreateRehearsalRequest) ([]*models.RehearsalOccurrence, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("rehearsal service not ready")
	}

	ctx = logging.AppendCtx(ctx, slog.String("band_uid", bandUID))

	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	if !req.IsRecurring {
		occurrence, err := s.createStandalone(ctx, bandUID, req)
		if err != nil {
			return nil, err
		}
		return []*models.RehearsalOccurrence{occurrence}, nil
	}

	return s.createSeries(ctx, bandUID, req)
}

func (s *RehearsalService) createStandalone(ctx context.Context, bandUID string, req *models.CreateRehearsalRequest) (*models.RehearsalOccurrence, error) {
	now := s.nowFunc().UTC()
	occurrence := &models.RehearsalOccurrence{
		UID:       uuid.New().String(),
		BandUID:   bandUID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Title:     req.Title,
		CreatedAt: &now,
		UpdatedAt: &now,
	}

	if err := s.OccurrenceRepository.Create(ctx, occurrence); err != nil {
		return nil, err
	}

	if _, err := s.Reconciler.Reconcile(ctx, bandUID); err != nil {
		slog.ErrorContext(ctx, "error reconciling responses after create", logging.ErrKey, err)
	}

	s.publishRehearsalActivity(ctx, models.ActionCreated, occurrence, "rehearsal scheduled on "+occurrence.Date)

	return occurrence, nil
}

func (s *RehearsalService) createSeries(ctx context.Context, bandUID string, req *models.CreateRehearsalRequest) ([]*models.RehearsalOccurrence, error) {
	if req.Rule == nil {
		return nil, domain.NewValidationError("recurrence rule is required for a recurring rehearsal")
	}

	rule := *req.Rule
	if rule.AnchorDate == "" {
		rule.AnchorDate = req.Date
	}
	if err := rule.Validate(); err != nil {
		return nil, domain.NewValidationError("invalid recurrence rule", err)
	}

	dates := s.Expander.Expand(rule)
	if len(dates) == 0 {
		return nil, domain.NewValidationError(
			"recurrence rule yields no occurrences: duration too short for the chosen day and frequency")
	}

	seriesUID := uuid.New().String()
	now := s.nowFunc().UTC()
	occurrences := make([]*models.RehearsalOccurrence, len(dates))
	for i, date := range dates {
		occurrences[i] = &models.RehearsalOccurrence{
			UID:       uuid.New().String(),
			BandUID:   bandUID,
			Date:      models.FormatDate(date),
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Title:     req.Title,
			SeriesUID: seriesUID,
			Rule:      &rule,
			CreatedAt: &now,
			UpdatedAt: &now,
		}
	}

	// All or nothing: a colliding date rolls back the whole series.
	if err := s.OccurrenceRepository.CreateSeries(ctx, occurrences); err != nil {
		return nil, err
	}

	if _, err := s.Reconciler.Reconcile(ctx, bandUID); err != nil {
		slog.ErrorContext(ctx, "error reconciling responses after series create", logging.ErrKey, err)
	}

	for _, occurrence := range occurrences {
		s.publishRehearsalActivity(ctx, models.ActionCreated, occurrence, "rehearsal scheduled on "+occurrence.Date)
	}

	slog.DebugContext(ctx, "created recurring series",
		"series_uid", seriesUID, "occurrence_count", len(occurrences))

	return occurrences, nil
}

// UpdateRehearsal patches one occurrence, or every today-or-later occurrence
// of its series when updateAllRecurring is set. Past occurrences are
// immutable history for series updates; series updates never move dates.
// Returns the number of occurrences updated.
func (s *RehearsalService) UpdateRehearsal(ctx context.Context, occurrenceUID string, patch *models.RehearsalPatch, updateAllRecurring bool) (int, error) {
	if !s.ServiceReady() {
		return 0, domain.NewUnavailableError("rehearsal service not ready")
	}
	if patch.IsEmpty() {
		return 0, domain.NewValidationError("update must change at least one field")
	}
	if err := s.validatePatch(patch); err != nil {
		return 0, err
	}

	occurrence, revision, err := s.OccurrenceRepository.GetWithRevision(ctx, occurrenceUID)
	if err != nil {
		return 0, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("band_uid", occurrence.BandUID))

	if !updateAllRecurring || !occurrence.IsRecurring() {
		if err := s.updateOne(ctx, occurrence, revision, patch); err != nil {
			return 0, err
		}
		return 1, nil
	}

	return s.updateSeries(ctx, occurrence.SeriesUID, patch)
}

func (s *RehearsalService) validatePatch(patch *models.RehearsalPatch) error {
	if patch.Date != nil {
		if _, err := models.ParseDate(*patch.Date); err != nil {
			return domain.NewValidationError(fmt.Sprintf("invalid date %q", *patch.Date), err)
		}
	}
	for _, v := range []*string{patch.StartTime, patch.EndTime} {
		if v == nil || *v == "" {
			continue
		}
		if _, err := time.Parse(models.TimeLayout, *v); err != nil {
			return domain.NewValidationError(fmt.Sprintf("invalid time %q", *v), err)
		}
	}
	return nil
}

func (s *RehearsalService) updateOne(ctx context.Context, occurrence *models.RehearsalOccurrence, revision uint64, patch *models.RehearsalPatch) error {
	if patch.Date != nil {
		occurrence.Date = *patch.Date
	}
	s.applyFieldPatch(occurrence, patch)

	if err := s.OccurrenceRepository.Update(ctx, occurrence, revision); err != nil {
		return err
	}

	s.publishRehearsalActivity(ctx, models.ActionUpdated, occurrence, "rehearsal updated")
	return nil
}

// updateSeries applies the field patch to every occurrence of the series
// dated today or later. An edited single occurrence stays in its series; the
// next series-wide edit overwrites its fields again.
func (s *RehearsalService) updateSeries(ctx context.Context, seriesUID string, patch *models.RehearsalPatch) (int, error) {
	if patch.Date != nil {
		return 0, domain.NewValidationError("series-wide updates cannot change dates")
	}

	occurrences, err := s.OccurrenceRepository.ListBySeries(ctx, seriesUID)
	if err != nil {
		return 0, err
	}

	today := models.FormatDate(s.today())
	updated := 0
	for _, occurrence := range occurrences {
		if occurrence.Date < today {
			continue
		}
		current, revision, err := s.OccurrenceRepository.GetWithRevision(ctx, occurrence.UID)
		if err != nil {
			slog.ErrorContext(ctx, "error loading series occurrence for update",
				logging.ErrKey, err, "occurrence_uid", occurrence.UID)
			continue
		}
		s.applyFieldPatch(current, patch)
		if err := s.OccurrenceRepository.Update(ctx, current, revision); err != nil {
			slog.ErrorContext(ctx, "error updating series occurrence",
				logging.ErrKey, err, "occurrence_uid", occurrence.UID)
			continue
		}
		s.publishRehearsalActivity(ctx, models.ActionUpdated, current, "rehearsal series updated")
		updated++
	}

	slog.DebugContext(ctx, "updated series occurrences",
		"series_uid", seriesUID, "updated", updated)

	return updated, nil
}

func (s *RehearsalService) applyFieldPatch(occurrence *models.RehearsalOccurrence, patch *models.RehearsalPatch) {
	if patch.StartTime != nil {
		occurrence.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		occurrence.EndTime = *patch.EndTime
	}
	if patch.Title != nil {
		occurrence.Title = *patch.Title
	}
	now := s.nowFunc().UTC()
	occurrence.UpdatedAt = &now
}

// DeleteRehearsal deletes one occurrence and its responses, or the entire
// series past dates included when deleteAllRecurring is set. The full-series
// delete is the only path that removes past records, because the user asked
// for exactly that. Returns the number of occurrences deleted.
func (s *RehearsalService) DeleteRehearsal(ctx context.Context, occurrenceUID string, deleteAllRecurring bool) (int, error) {
	if !s.ServiceReady() {
		return 0, domain.NewUnavailableError("rehearsal service not ready")
	}

	occurrence, err := s.OccurrenceRepository.Get(ctx, occurrenceUID)
	if err != nil {
		return 0, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("band_uid", occurrence.BandUID))

	if !deleteAllRecurring || !occurrence.IsRecurring() {
		if err := s.deleteOccurrenceCascade(ctx, occurrence); err != nil {
			return 0, err
		}
		return 1, nil
	}

	occurrences, err := s.OccurrenceRepository.ListBySeries(ctx, occurrence.SeriesUID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, o := range occurrences {
		if err := s.deleteOccurrenceCascade(ctx, o); err != nil {
			slog.ErrorContext(ctx, "error deleting series occurrence",
				logging.ErrKey, err, "occurrence_uid", o.UID)
			continue
		}
		deleted++
	}

	slog.DebugContext(ctx, "deleted series",
		"series_uid", occurrence.SeriesUID, "deleted", deleted)

	return deleted, nil
}

// deleteOccurrenceCascade removes an occurrence together with every response
// attached to it.
func (s *RehearsalService) deleteOccurrenceCascade(ctx context.Context, occurrence *models.RehearsalOccurrence) error {
	responses, err := s.ResponseRepository.ListByOccurrence(ctx, occurrence.UID)
	if err != nil {
		return err
	}
	for _, response := range responses {
		if err := s.ResponseRepository.DeleteWithoutRevision(ctx, response.UID); err != nil {
			slog.ErrorContext(ctx, "error deleting response of occurrence",
				logging.ErrKey, err, "response_uid", response.UID)
		}
	}

	if err := s.OccurrenceRepository.DeleteWithoutRevision(ctx, occurrence.UID); err != nil {
		return err
	}

	s.publishRehearsalActivity(ctx, models.ActionDeleted, occurrence, "rehearsal removed")
	return nil
}

// AutoManage runs the rolling-window procedure for a band: prune past
// occurrences, repair gaps in active recurring series, then reconcile
// responses. The steps run in that order because each depends on the
// previous step's output. Every step commits its own work and is idempotent,
// so the call is safe to re-invoke after a partial failure and safe to run
// concurrently: duplicate creations collapse into conflicts that are treated
// as already satisfied.
func (s *RehearsalService) AutoManage(ctx context.Context, bandUID string) (*models.AutoManageSummary, error) {
	if !s.ServiceReady() {
		return nil, domain.NewUnavailableError("rehearsal service not ready")
	}

	ctx = logging.AppendCtx(ctx, slog.String("band_uid", bandUID))

	exists, err := s.BandReader.Exists(ctx, bandUID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NewNotFoundError(fmt.Sprintf("band '%s' not found", bandUID))
	}

	summary := &models.AutoManageSummary{}

	occurrences, err := s.OccurrenceRepository.ListByBand(ctx, bandUID)
	if err != nil {
		return nil, err
	}

	remaining := s.prune(ctx, occurrences, summary)
	s.extend(ctx, bandUID, occurrences, remaining, summary)

	reconcile, err := s.Reconciler.Reconcile(ctx, bandUID)
	if err != nil {
		// Auto-manage must never block a login; the next pass repairs this.
		slog.ErrorContext(ctx, "error reconciling responses during auto-manage", logging.ErrKey, err)
	} else {
		summary.ResponsesCreated = reconcile.Created
		summary.ResponsesRemoved = reconcile.Removed
	}

	slog.InfoContext(ctx, "auto-managed band rehearsals",
		"pruned", summary.Pruned,
		"created", summary.Created,
		"responses_created", summary.ResponsesCreated,
		"responses_removed", summary.ResponsesRemoved,
		"series_errors", summary.SeriesErrors)

	return summary, nil
}

// prune deletes every occurrence dated strictly before today, cascading its
// responses, and returns the surviving occurrences. Only occurrence rows are
// deleted; extend reads series rules off the pre-prune list, so pruning
// never loses rule metadata.
func (s *RehearsalService) prune(ctx context.Context, occurrences []*models.RehearsalOccurrence, summary *models.AutoManageSummary) []*models.RehearsalOccurrence {
	today := models.FormatDate(s.today())

	remaining := make([]*models.RehearsalOccurrence, 0, len(occurrences))
	for _, occurrence := range occurrences {
		if occurrence.Date >= today {
			remaining = append(remaining, occurrence)
			continue
		}
		if err := s.deleteOccurrenceCascade(ctx, occurrence); err != nil {
			slog.ErrorContext(ctx, "error pruning past occurrence",
				logging.ErrKey, err, "occurrence_uid", occurrence.UID, "date", occurrence.Date)
			remaining = append(remaining, occurrence)
			continue
		}
		summary.Pruned++
	}
	return remaining
}

// extend re-expands each known series against its original rule and creates
// any missing occurrence dated between today and the series end. Series rules
// are harvested from the pre-prune list, so a series whose stored rows were
// all pruned is still repaired while its window reaches beyond today.
// Generation is eager at series creation, so this is a self-healing repair
// step, not the primary producer. Series repairs run concurrently; one bad
// series only increments the error count.
func (s *RehearsalService) extend(ctx context.Context, bandUID string, all, remaining []*models.RehearsalOccurrence, summary *models.AutoManageSummary) {
	type series struct {
		template *models.RehearsalOccurrence
		dates    map[string]bool
	}

	bySeries := make(map[string]*series)
	for _, occurrence := range all {
		if !occurrence.IsRecurring() {
			continue
		}
		sr, ok := bySeries[occurrence.SeriesUID]
		if !ok {
			sr = &series{template: occurrence, dates: make(map[string]bool)}
			bySeries[occurrence.SeriesUID] = sr
		}
		if occurrence.Date < sr.template.Date {
			sr.template = occurrence
		}
	}
	for _, occurrence := range remaining {
		if sr, ok := bySeries[occurrence.SeriesUID]; ok {
			sr.dates[occurrence.Date] = true
		}
	}

	if len(bySeries) == 0 {
		return
	}

	today := models.FormatDate(s.today())
	var created atomic.Int64

	seriesUIDs := make([]string, 0, len(bySeries))
	for uid := range bySeries {
		seriesUIDs = append(seriesUIDs, uid)
	}
	sort.Strings(seriesUIDs)

	repairs := make([]func() error, 0, len(seriesUIDs))
	for _, seriesUID := range seriesUIDs {
		sr := bySeries[seriesUID]
		repairs = append(repairs, func() error {
			n, err := s.repairSeries(ctx, bandUID, seriesUID, sr.template, sr.dates, today)
			created.Add(int64(n))
			return err
		})
	}

	errs := s.pool.RunAll(ctx, repairs...)
	for _, err := range errs {
		slog.ErrorContext(ctx, "error repairing series", logging.ErrKey, err)
	}

	summary.Created = int(created.Load())
	summary.SeriesErrors = len(errs)
}

// repairSeries creates the missing future dates of one series. Conflicts
// mean another invocation already created the date and count as satisfied.
func (s *RehearsalService) repairSeries(ctx context.Context, bandUID, seriesUID string, template *models.RehearsalOccurrence, existingDates map[string]bool, today string) (int, error) {
	if template.Rule == nil {
		return 0, fmt.Errorf("series '%s' has no recurrence rule recorded", seriesUID)
	}

	created := 0
	now := s.nowFunc().UTC()
	for _, date := range s.Expander.Expand(*template.Rule) {
		day := models.FormatDate(date)
		if day < today || existingDates[day] {
			continue
		}
		occurrence := &models.RehearsalOccurrence{
			UID:       uuid.New().String(),
			BandUID:   bandUID,
			Date:      day,
			StartTime: template.StartTime,
			EndTime:   template.EndTime,
			Title:     template.Title,
			SeriesUID: seriesUID,
			Rule:      template.Rule,
			CreatedAt: &now,
			UpdatedAt: &now,
		}
		err := s.OccurrenceRepository.Create(ctx, occurrence)
		if err != nil {
			if domain.GetErrorType(err) == domain.ErrorTypeConflict {
				continue
			}
			return created, err
		}
		s.publishRehearsalActivity(ctx, models.ActionCreated, occurrence, "rehearsal restored on "+day)
		created++
	}

	return created, nil
}

// PurgeBand removes every occurrence and response of a band. Invoked when
// the bands service reports the band as deleted.
func (s *RehearsalService) PurgeBand(ctx context.Context, bandUID string) (int, error) {
	if !s.ServiceReady() {
		return 0, domain.NewUnavailableError("rehearsal service not ready")
	}

	ctx = logging.AppendCtx(ctx, slog.String("band_uid", bandUID))

	occurrences, err := s.OccurrenceRepository.ListByBand(ctx, bandUID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, occurrence := range occurrences {
		if err := s.deleteOccurrenceCascade(ctx, occurrence); err != nil {
			slog.ErrorContext(ctx, "error purging occurrence",
				logging.ErrKey, err, "occurrence_uid", occurrence.UID)
			continue
		}
		deleted++
	}

	// Responses can outlive their occurrence if a previous cascade failed.
	responses, err := s.ResponseRepository.ListByBand(ctx, bandUID)
	if err != nil {
		return deleted, err
	}
	for _, response := range responses {
		if err := s.ResponseRepository.DeleteWithoutRevision(ctx, response.UID); err != nil {
			slog.ErrorContext(ctx, "error purging response",
				logging.ErrKey, err, "response_uid", response.UID)
		}
	}

	slog.InfoContext(ctx, "purged band schedule", "deleted", deleted)

	return deleted, nil
}

func (s *RehearsalService) publishRehearsalActivity(ctx context.Context, action models.MessageAction, occurrence *models.RehearsalOccurrence, summary string) {
	if err := s.MessageBuilder.SendRehearsalActivity(ctx, action, occurrence, summary); err != nil {
		slog.ErrorContext(ctx, "error publishing rehearsal activity",
			logging.ErrKey, err, "occurrence_uid", occurrence.UID)
	}
}
