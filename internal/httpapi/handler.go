package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/maine/polymer_news/internal/export"
	"github.com/maine/polymer_news/internal/news"
	"github.com/maine/polymer_news/internal/state"
)

// SnapshotLoader читает результат последнего прогона.
type SnapshotLoader interface {
	Load(ctx context.Context) (news.Snapshot, error)
}

// StatsLister читает журнал статистики.
type StatsLister interface {
	List(ctx context.Context, period string) ([]news.StatRecord, error)
}

// DigestBuilder собирает письмо-дайджест.
type DigestBuilder interface {
	BuildDigest(articles []news.Article, periodLabel string) (news.Digest, error)
}

// Handler обслуживает запросы сервера предпросмотра.
type Handler struct {
	snapshots SnapshotLoader
	stats     StatsLister
	digests   DigestBuilder
	clock     func() time.Time
	logger    zerolog.Logger
}

// NewHandler создаёт обработчик. stats может быть nil.
func NewHandler(snapshots SnapshotLoader, stats StatsLister, digests DigestBuilder, clock func() time.Time, logger zerolog.Logger) *Handler {
	if clock == nil {
		clock = time.Now
	}
	return &Handler{snapshots: snapshots, stats: stats, digests: digests, clock: clock, logger: logger}
}

type healthResponse struct {
	Status string `json:"status"`
}

// Healthz отвечает на проверку живости.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

type statsResponse struct {
	Records []news.StatRecord `json:"records"`
}

// ListStats отдаёт журнал статистики, опционально по одному периоду (?period=).
func (h *Handler) ListStats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeError(w, http.StatusServiceUnavailable, "stats_unavailable", "statistics log is not configured")
		return
	}

	records, err := h.stats.List(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		h.logger.Error().Err(err).Msg("list stats")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to read statistics")
		return
	}
	if records == nil {
		records = []news.StatRecord{}
	}
	writeJSON(w, http.StatusOK, statsResponse{Records: records})
}

// Articles отдаёт снапшот последнего прогона в JSON.
func (h *Handler) Articles(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Digest отдаёт HTML-письмо последнего прогона.
func (h *Handler) Digest(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}

	digest, err := h.digests.BuildDigest(snap.Articles, snap.PeriodLabel)
	if err != nil {
		h.logger.Error().Err(err).Msg("build digest")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to build digest")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(digest.HTML))
}

// Report собирает xlsx-отчёт по снапшоту и отдаёт его как вложение.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}

	f, err := export.Build(snap.Articles, snap.PeriodLabel, h.clock())
	if err != nil {
		h.logger.Error().Err(err).Msg("build workbook")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to build report")
		return
	}
	defer f.Close()

	name := export.FileName(snap.PeriodLabel)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(name)))
	if err := f.Write(w); err != nil {
		h.logger.Error().Err(err).Msg("write workbook")
	}
}

func (h *Handler) loadSnapshot(w http.ResponseWriter, r *http.Request) (news.Snapshot, bool) {
	snap, err := h.snapshots.Load(r.Context())
	if err != nil {
		if errors.Is(err, state.ErrNoSnapshot) {
			writeError(w, http.StatusNotFound, "not_found", "no digest has been built yet")
			return news.Snapshot{}, false
		}
		h.logger.Error().Err(err).Msg("load snapshot")
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load snapshot")
		return news.Snapshot{}, false
	}
	return snap, true
}
