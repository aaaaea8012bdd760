package match

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/quattro-app/quattro/config"
	"github.com/quattro-app/quattro/internal/level"
	responses "github.com/quattro-app/quattro/pkg/matchresponse"
	"github.com/gin-gonic/gin"
)

// MatchController handles match-related HTTP requests
type MatchController struct {
	repo       MatchRepository
	ledger     *RegistrationLedger
	engine     *LifecycleEngine
	feedback   *FeedbackService
	strategies map[string]SortFunc
	appConfig  *config.Config
}

// NewMatchController creates a new match controller
func NewMatchController(repo MatchRepository, ledger *RegistrationLedger, engine *LifecycleEngine, feedback *FeedbackService, strategies map[string]SortFunc, appConfig *config.Config) *MatchController {
	return &MatchController{
		repo:       repo,
		ledger:     ledger,
		engine:     engine,
		feedback:   feedback,
		strategies: strategies,
		appConfig:  appConfig,
	}
}

// --- Helper Functions ---

func getCurrentUserID(c *gin.Context) (uint, bool) {
	userIDVal, exists := c.Get("auth_user_id")
	if !exists {
		return 0, false
	}
	userID, ok := userIDVal.(uint)
	return userID, ok
}

func parseMatchID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		responses.ErrorResponse(c, http.StatusBadRequest, "Invalid match ID")
		return 0, false
	}
	return uint(id), true
}

// respondDomainError maps the domain error kinds onto HTTP statuses.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMatchNotFound), errors.Is(err, ErrUserNotFound):
		responses.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyRegistered),
		errors.Is(err, ErrNotRegistered),
		errors.Is(err, ErrMatchFull),
		errors.Is(err, ErrInvalidMatchStatus),
		errors.Is(err, ErrDuplicateFeedback):
		responses.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrSelfFeedback):
		responses.ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		responses.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

// --- DTOs for requests ---

// CreateMatchRequest defines the request payload for creating a match
type CreateMatchRequest struct {
	Type          MatchType   `json:"type" binding:"required,oneof=fixed proposed"`
	RequiredLevel level.Level `json:"required_level" binding:"required,oneof=beginner intermediate advanced professional"`
	ScheduledAt   *time.Time  `json:"scheduled_at,omitempty"`
	Location      string      `json:"location,omitempty" binding:"max=200"`
	Description   string      `json:"description,omitempty" binding:"max=2000"`
}

// SubmitFeedbackRequest defines the request payload for rating a peer
type SubmitFeedbackRequest struct {
	TargetID       uint        `json:"target_id" binding:"required"`
	SuggestedLevel level.Level `json:"suggested_level" binding:"required,oneof=beginner intermediate advanced professional"`
	Comment        string      `json:"comment,omitempty" binding:"max=500"`
}

// MatchResponse is the list/detail representation of a match
type MatchResponse struct {
	Match
	ActivePlayers int `json:"active_players"`
}

func toMatchResponse(m Match) MatchResponse {
	return MatchResponse{Match: m, ActivePlayers: m.ActiveCount()}
}

func toMatchResponses(ms []Match) []MatchResponse {
	out := make([]MatchResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMatchResponse(m))
	}
	return out
}

// --- Match Controller Methods ---

// CreateMatch handles the creation of a new match
// @Summary      Create a match
// @Description  Create a fixed match (schedule set now) or a proposed match (details negotiated once players gather). The creator is automatically registered as the first player.
// @Tags         Matches
// @Accept       json
// @Produce      json
// @Param        match  body  CreateMatchRequest  true  "Match details"
// @Success      201  {object} MatchResponse "Match created"
// @Failure      400  {object} map[string]string "Validation error"
// @Failure      401  {object} map[string]string "Unauthorized"
// @Router       /matches [post]
func (mc *MatchController) CreateMatch(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	if req.Type == TypeFixed && (req.ScheduledAt == nil || req.ScheduledAt.IsZero()) {
		responses.ErrorResponse(c, http.StatusBadRequest, "Fixed matches require a scheduled date and time")
		return
	}

	m := Match{
		Type:            req.Type,
		Status:          StatusWaiting,
		RequiredLevel:   req.RequiredLevel,
		Location:        req.Location,
		Description:     req.Description,
		CreatedByUserID: userID,
	}
	if req.ScheduledAt != nil {
		m.ScheduledAt = *req.ScheduledAt
	}

	if err := mc.repo.CreateMatch(&m); err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to create match")
		return
	}

	// The creator takes the first slot.
	if _, err := mc.ledger.Join(userID, m.ID); err != nil {
		respondDomainError(c, err)
		return
	}

	created, err := mc.repo.GetMatchByID(m.ID)
	if err != nil || created == nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to load created match")
		return
	}

	responses.SuccessResponse(c, http.StatusCreated, toMatchResponse(*created))
}

// GetMatches lists matches with optional filters and a display sort strategy
// @Summary      List matches
// @Tags         Matches
// @Produce      json
// @Param        status  query  string false "Filter by status (waiting, confirmed, finished)"
// @Param        level   query  string false "Filter by required level"
// @Param        sort    query  string false "Sort strategy: date, fill or level (default date)"
// @Param        page    query  int    false "Page number"
// @Param        page_size query int   false "Page size"
// @Success      200 {object} map[string]interface{} "Paginated match list"
// @Router       /matches [get]
func (mc *MatchController) GetMatches(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	filters := make(map[string]interface{})
	if status := c.Query("status"); status != "" {
		filters["status = ?"] = status
	}
	if lvl := c.Query("level"); lvl != "" {
		parsed, err := level.Parse(lvl)
		if err != nil {
			responses.ErrorResponse(c, http.StatusBadRequest, "Invalid level filter")
			return
		}
		filters["required_level = ?"] = parsed
	}

	// The strategy orders the collection SQL-side so pagination slices it
	// consistently, then ApplySort gives the page its final display order.
	sortName := c.Query("sort")
	matches, total, err := mc.repo.GetMatches(filters, OrderClause(sortName), page, pageSize)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve matches")
		return
	}

	sorted := ApplySort(mc.strategies, sortName, matches)
	responses.PaginatedResponse(c, http.StatusOK, toMatchResponses(sorted), page, pageSize, total)
}

// GetMyMatches lists the matches the caller is actively registered for
// @Summary      List my matches
// @Tags         Matches
// @Produce      json
// @Success      200 {array} Registration "Active registrations with their matches"
// @Failure      401 {object} map[string]string "Unauthorized"
// @Router       /matches/mine [get]
func (mc *MatchController) GetMyMatches(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	regs, err := mc.ledger.ActiveRegistrationsForUser(userID)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve registrations")
		return
	}
	responses.SuccessResponse(c, http.StatusOK, regs)
}

// GetMatchByID returns a single match with its active registrations
// @Summary      Get a match
// @Tags         Matches
// @Produce      json
// @Param        id  path  int  true  "Match ID"
// @Success      200 {object} MatchResponse "Match detail"
// @Failure      404 {object} map[string]string "Match not found"
// @Router       /matches/{id} [get]
func (mc *MatchController) GetMatchByID(c *gin.Context) {
	matchID, ok := parseMatchID(c)
	if !ok {
		return
	}

	m, err := mc.repo.GetMatchByID(matchID)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve match")
		return
	}
	if m == nil {
		responses.ErrorResponse(c, http.StatusNotFound, "Match not found")
		return
	}
	responses.SuccessResponse(c, http.StatusOK, toMatchResponse(*m))
}

// JoinMatch registers the caller for a match
// @Summary      Join a match
// @Description  Takes one of the four slots. Joining the fourth slot confirms the match.
// @Tags         Matches
// @Produce      json
// @Param        id  path  int  true  "Match ID"
// @Success      201 {object} Registration "Registration created"
// @Failure      404 {object} map[string]string "Match not found"
// @Failure      409 {object} map[string]string "Already registered or match full"
// @Router       /matches/{id}/join [post]
func (mc *MatchController) JoinMatch(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	matchID, ok := parseMatchID(c)
	if !ok {
		return
	}

	reg, err := mc.ledger.Join(userID, matchID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	responses.SuccessResponse(c, http.StatusCreated, reg)
}

// LeaveMatch cancels the caller's registration
// @Summary      Leave a match
// @Description  Cancels the caller's registration. Leaving a confirmed match does not move it back to waiting.
// @Tags         Matches
// @Produce      json
// @Param        id  path  int  true  "Match ID"
// @Success      200 {object} map[string]string "Registration cancelled"
// @Failure      404 {object} map[string]string "Match not found"
// @Failure      409 {object} map[string]string "Not registered"
// @Router       /matches/{id}/leave [post]
func (mc *MatchController) LeaveMatch(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	matchID, ok := parseMatchID(c)
	if !ok {
		return
	}

	if err := mc.ledger.Leave(userID, matchID); err != nil {
		respondDomainError(c, err)
		return
	}
	responses.SuccessResponse(c, http.StatusOK, gin.H{"message": "Registration cancelled"})
}

// FinishMatch moves a confirmed match to finished
// @Summary      Finish a match
// @Description  Only a confirmed match can be finished. Any authenticated caller holding the match ID may finish it.
// @Tags         Matches
// @Produce      json
// @Param        id  path  int  true  "Match ID"
// @Success      200 {object} MatchResponse "Finished match"
// @Failure      404 {object} map[string]string "Match not found"
// @Failure      409 {object} map[string]string "Match is not confirmed"
// @Router       /matches/{id}/finish [post]
func (mc *MatchController) FinishMatch(c *gin.Context) {
	if _, ok := getCurrentUserID(c); !ok {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	matchID, ok := parseMatchID(c)
	if !ok {
		return
	}

	m, err := mc.engine.Finish(matchID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	responses.SuccessResponse(c, http.StatusOK, toMatchResponse(*m))
}

// SubmitFeedback records the caller's rating of a peer for a finished match
// @Summary      Rate a peer
// @Tags         Feedback
// @Accept       json
// @Produce      json
// @Param        id        path  int                    true  "Match ID"
// @Param        feedback  body  SubmitFeedbackRequest  true  "Rating"
// @Success      201 {object} Feedback "Feedback stored"
// @Failure      400 {object} map[string]string "Validation error or self-rating"
// @Failure      404 {object} map[string]string "Match or player not found"
// @Failure      409 {object} map[string]string "Match not finished or duplicate feedback"
// @Router       /matches/{id}/feedback [post]
func (mc *MatchController) SubmitFeedback(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	matchID, ok := parseMatchID(c)
	if !ok {
		return
	}

	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.ValidationErrorResponse(c, err)
		return
	}

	fb, err := mc.feedback.Submit(userID, req.TargetID, matchID, req.SuggestedLevel, req.Comment)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	responses.SuccessResponse(c, http.StatusCreated, fb)
}

// GetMatchFeedback lists the feedback recorded for a match
// @Summary      List match feedback
// @Tags         Feedback
// @Produce      json
// @Param        id  path  int  true  "Match ID"
// @Success      200 {array} Feedback "Feedback for the match"
// @Failure      404 {object} map[string]string "Match not found"
// @Router       /matches/{id}/feedback [get]
func (mc *MatchController) GetMatchFeedback(c *gin.Context) {
	matchID, ok := parseMatchID(c)
	if !ok {
		return
	}

	m, err := mc.repo.GetMatchByID(matchID)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve match")
		return
	}
	if m == nil {
		responses.ErrorResponse(c, http.StatusNotFound, "Match not found")
		return
	}

	fbs, err := mc.repo.GetMatchFeedback(matchID)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve feedback")
		return
	}
	responses.SuccessResponse(c, http.StatusOK, fbs)
}

// DeleteMatch removes a match and, with it, its registrations and feedback
// @Summary      Delete a match
// @Description  Creator only; admins use the admin route. Registrations and feedback are deleted with the match.
// @Tags         Matches
// @Produce      json
// @Param        id  path  int  true  "Match ID"
// @Success      200 {object} map[string]string "Match deleted"
// @Failure      403 {object} map[string]string "Not the creator"
// @Failure      404 {object} map[string]string "Match not found"
// @Router       /matches/{id} [delete]
func (mc *MatchController) DeleteMatch(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		responses.ErrorResponse(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	matchID, ok := parseMatchID(c)
	if !ok {
		return
	}

	m, err := mc.repo.GetMatchByID(matchID)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve match")
		return
	}
	if m == nil {
		responses.ErrorResponse(c, http.StatusNotFound, "Match not found")
		return
	}

	if m.CreatedByUserID != userID {
		responses.ErrorResponse(c, http.StatusForbidden, "Only the creator may delete this match")
		return
	}

	if err := mc.repo.DeleteMatch(matchID); err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete match")
		return
	}
	responses.SuccessResponse(c, http.StatusOK, gin.H{"message": "Match deleted"})
}

// AdminDeleteMatch removes any match regardless of creator
// @Summary      Delete a match (admin)
// @Tags         Admin
// @Produce      json
// @Param        id  path  int  true  "Match ID"
// @Success      200 {object} map[string]string "Match deleted"
// @Failure      404 {object} map[string]string "Match not found"
// @Router       /admin/matches/{id} [delete]
func (mc *MatchController) AdminDeleteMatch(c *gin.Context) {
	matchID, ok := parseMatchID(c)
	if !ok {
		return
	}

	m, err := mc.repo.GetMatchByID(matchID)
	if err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to retrieve match")
		return
	}
	if m == nil {
		responses.ErrorResponse(c, http.StatusNotFound, "Match not found")
		return
	}

	if err := mc.repo.DeleteMatch(matchID); err != nil {
		responses.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete match")
		return
	}
	responses.SuccessResponse(c, http.StatusOK, gin.H{"message": "Match deleted"})
}
