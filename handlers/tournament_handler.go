package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Dosada05/tennis-roundrobin/services"
)

type TournamentHandler struct {
	responder
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService, logger *slog.Logger) *TournamentHandler {
	return &TournamentHandler{
		responder:         responder{logger: logger},
		tournamentService: ts,
	}
}

// tournamentID достаёт идентификатор турнира и сам отвечает 400 при ошибке.
func (h *TournamentHandler) tournamentID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := pathString(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return "", false
	}
	return id, true
}

func (h *TournamentHandler) tournamentAndPlayer(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return "", "", false
	}
	player, err := pathString(r, "player")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return "", "", false
	}
	return id, player, true
}

// CreateHandler обрабатывает POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, jsonResponse{"tournament": tournament})
}

// GetByIDHandler обрабатывает GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	tournament, err := h.tournamentService.GetTournament(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"tournament": tournament})
}

// AddPlayerHandler обрабатывает POST /tournaments/{tournamentID}/players
func (h *TournamentHandler) AddPlayerHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	var input services.AddPlayerInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.AddPlayer(r.Context(), id, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"tournament": tournament})
}

// GenerateScheduleHandler обрабатывает POST /tournaments/{tournamentID}/schedule
func (h *TournamentHandler) GenerateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	schedule, err := h.tournamentService.GenerateSchedule(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, jsonResponse{"schedule": schedule})
}

func (h *TournamentHandler) GetScheduleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	schedule, err := h.tournamentService.GetSchedule(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"schedule": schedule})
}

func (h *TournamentHandler) GetFairnessHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	report, err := h.tournamentService.GetFairness(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"fairness": report})
}

// NextDayHandler обрабатывает GET /tournaments/{tournamentID}/days/next.
// Если все дни завершены, возвращается {"day": null}.
func (h *TournamentHandler) NextDayHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	day, err := h.tournamentService.NextIncompleteDay(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"day": day})
}

// CompleteDayHandler обрабатывает POST /tournaments/{tournamentID}/days/{day}/complete
func (h *TournamentHandler) CompleteDayHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	day, err := pathInt(r, "day")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	if err := h.tournamentService.MarkDayCompleted(r.Context(), id, day); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"message": "day marked as completed", "day": day})
}

// RescheduleHandler обрабатывает POST /tournaments/{tournamentID}/reschedule
func (h *TournamentHandler) RescheduleHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	var input services.RescheduleInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	schedule, err := h.tournamentService.Reschedule(r.Context(), id, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"schedule": schedule})
}

// RecordResultHandler обрабатывает POST /tournaments/{tournamentID}/results
func (h *TournamentHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	var input services.RecordResultInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	result, err := h.tournamentService.RecordResult(r.Context(), id, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, jsonResponse{"result": result})
}

// LookupResultHandler обрабатывает GET /tournaments/{tournamentID}/results?player1=&player2=
func (h *TournamentHandler) LookupResultHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	p1, p2 := query.Get("player1"), query.Get("player2")
	if p1 == "" || p2 == "" {
		h.badRequestResponse(w, r, errors.New("player1 and player2 query parameters are required"))
		return
	}

	result, err := h.tournamentService.LookupResult(r.Context(), id, p1, p2)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"result": result})
}

func (h *TournamentHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	entries, err := h.tournamentService.Standings(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"standings": entries})
}

func (h *TournamentHandler) RankingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	entries, err := h.tournamentService.CompleteRanking(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"ranking": entries})
}

func (h *TournamentHandler) PlayerStatsHandler(w http.ResponseWriter, r *http.Request) {
	id, player, ok := h.tournamentAndPlayer(w, r)
	if !ok {
		return
	}
	stats, err := h.tournamentService.PlayerStatistics(r.Context(), id, player)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"player": player, "stats": stats})
}

func (h *TournamentHandler) PlayerMatchesHandler(w http.ResponseWriter, r *http.Request) {
	id, player, ok := h.tournamentAndPlayer(w, r)
	if !ok {
		return
	}
	matches, err := h.tournamentService.PlayerMatches(r.Context(), id, player)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"player": player, "matches": matches})
}

func (h *TournamentHandler) PlayerRankHandler(w http.ResponseWriter, r *http.Request) {
	id, player, ok := h.tournamentAndPlayer(w, r)
	if !ok {
		return
	}
	rank, err := h.tournamentService.PlayerRanking(r.Context(), id, player)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"player": player, "rank": rank})
}

// ExportHandler обрабатывает POST /tournaments/{tournamentID}/export
func (h *TournamentHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.tournamentID(w, r)
	if !ok {
		return
	}
	upload, err := h.tournamentService.ExportStandings(r.Context(), id)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, jsonResponse{"export": upload})
}
