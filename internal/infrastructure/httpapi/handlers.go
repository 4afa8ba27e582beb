package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"NewsRecommender/internal/domain"
	"NewsRecommender/internal/ports"
	"NewsRecommender/internal/recommend"
)

type articleResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type recommendationResponse struct {
	ArticleID         int64     `json:"article_id"`
	Title             string    `json:"title"`
	Category          string    `json:"category"`
	Source            string    `json:"source"`
	PublishedAt       time.Time `json:"published_at"`
	ContentSimilarity float64   `json:"content_similarity"`
	PopularityScore   float64   `json:"popularity_score"`
	HybridScore       float64   `json:"hybrid_score"`
}

type trackRequest struct {
	UserID          string   `json:"user_id"`
	ArticleID       int64    `json:"article_id"`
	InteractionType string   `json:"interaction_type"`
	Rating          *float64 `json:"rating"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"index_built": s.service.Ready(),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]any{
		"name": "news recommendation api",
		"endpoints": map[string]string{
			"articles":  "GET /api/articles?page=&page_size=&category=&search=",
			"article":   "GET /api/articles/{id}",
			"recommend": "GET /api/recommend/{id}?top_n=&use_hybrid=",
			"stats":     "GET /api/stats",
			"track":     "POST /api/track",
			"reload":    "POST /api/admin/reload",
			"health":    "GET /healthz",
		},
	})
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	query := ports.ArticleQuery{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 20),
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}
	if query.Page < 1 {
		s.respondError(w, http.StatusBadRequest, "page must be positive")
		return
	}
	if query.PageSize < 1 {
		s.respondError(w, http.StatusBadRequest, "page_size must be positive")
		return
	}
	if query.PageSize > s.opts.MaxPageSize {
		query.PageSize = s.opts.MaxPageSize
	}

	articles, total, err := s.articles.List(r.Context(), query)
	if err != nil {
		s.logger.Error("list articles failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list articles")
		return
	}

	items := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		items = append(items, toArticleResponse(a))
	}
	s.respond(w, http.StatusOK, map[string]any{
		"articles":  items,
		"total":     total,
		"page":      query.Page,
		"page_size": query.PageSize,
	})
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	article, err := s.service.GetArticle(r.Context(), id)
	if errors.Is(err, recommend.ErrArticleNotFound) {
		s.respondError(w, http.StatusNotFound, "article not found")
		return
	}
	if err != nil {
		s.logger.Error("get article failed", "article_id", id, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to load article")
		return
	}
	s.respond(w, http.StatusOK, toArticleResponse(article))
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	topN := queryInt(r, "top_n", s.opts.DefaultTopN)
	if topN < 1 {
		s.respondError(w, http.StatusBadRequest, "top_n must be positive")
		return
	}

	mode := s.opts.DefaultMode
	if raw := r.URL.Query().Get("use_hybrid"); raw != "" {
		useHybrid, err := strconv.ParseBool(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "use_hybrid must be a boolean")
			return
		}
		if useHybrid {
			mode = recommend.ModeHybrid
		} else {
			mode = recommend.ModeContent
		}
	}

	recs, err := s.service.Recommend(r.Context(), id, topN, mode)
	if errors.Is(err, recommend.ErrArticleNotFound) {
		s.respondError(w, http.StatusNotFound, "article not found")
		return
	}
	if err != nil {
		s.logger.Error("recommend failed", "article_id", id, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to compute recommendations")
		return
	}

	items := make([]recommendationResponse, 0, len(recs))
	for _, rec := range recs {
		items = append(items, recommendationResponse{
			ArticleID:         rec.ArticleID,
			Title:             rec.Title,
			Category:          rec.Category,
			Source:            rec.Source,
			PublishedAt:       rec.PublishedAt,
			ContentSimilarity: rec.ContentSimilarity,
			PopularityScore:   rec.PopularityScore,
			HybridScore:       rec.HybridScore,
		})
	}
	s.respond(w, http.StatusOK, map[string]any{
		"seed_id":         id,
		"mode":            string(mode),
		"count":           len(items),
		"recommendations": items,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.articles.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	s.respond(w, http.StatusOK, map[string]any{
		"total_articles": stats.TotalArticles,
		"categories":     stats.Categories,
		"sources":        stats.Sources,
		"index_built":    s.service.Ready(),
	})
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	interactionType := domain.InteractionType(req.InteractionType)
	if !interactionType.Valid() {
		s.respondError(w, http.StatusBadRequest, "unknown interaction_type")
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		s.respondError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	if _, err := s.articles.GetByID(r.Context(), req.ArticleID); err != nil {
		if errors.Is(err, recommend.ErrArticleNotFound) {
			s.respondError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("track lookup failed", "article_id", req.ArticleID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to record interaction")
		return
	}

	// Anonymous clients get a generated identity so their events still
	// aggregate per user.
	userID := req.UserID
	if userID == "" {
		userID = uuid.NewString()
	}

	event := domain.InteractionEvent{
		UserID:    userID,
		ArticleID: req.ArticleID,
		Type:      interactionType,
		Rating:    req.Rating,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.interactions.Append(r.Context(), event); err != nil {
		s.logger.Error("track append failed", "article_id", req.ArticleID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to record interaction")
		return
	}

	s.respond(w, http.StatusCreated, map[string]any{
		"status":  "tracked",
		"user_id": userID,
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.reload(r.Context()); err != nil {
		s.logger.Error("reload failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "reload failed")
		return
	}
	s.respond(w, http.StatusOK, map[string]any{"status": "reloaded"})
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		s.respondError(w, http.StatusBadRequest, "invalid article id")
		return 0, false
	}
	return id, true
}

func (s *Server) respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response failed", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respond(w, status, map[string]string{"error": message})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return value
}

func toArticleResponse(a domain.Article) articleResponse {
	return articleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		Category:    a.Category,
		Source:      a.Source,
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
	}
}
