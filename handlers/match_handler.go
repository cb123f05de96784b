package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/courtside/tennis-api/export"
	"github.com/courtside/tennis-api/services"
)

const dateLayout = "2006-01-02"

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

type matchRequest struct {
	Name         string `json:"name" validate:"required"`
	MatchDate    string `json:"match_date" validate:"required,datetime=2006-01-02"`
	MatchTime    string `json:"match_time" validate:"required,datetime=15:04"`
	Location     string `json:"location" validate:"required"`
	RefereeID    *int   `json:"referee_id"`
	Player1ID    *int   `json:"player1_id"`
	Player1Score *int   `json:"player1_score"`
	Player2ID    *int   `json:"player2_id"`
	Player2Score *int   `json:"player2_score"`
}

func (req *matchRequest) toInput() (services.MatchInput, error) {
	date, err := time.Parse(dateLayout, req.MatchDate)
	if err != nil {
		return services.MatchInput{}, fmt.Errorf("invalid match_date: %w", err)
	}
	return services.MatchInput{
		Name:         req.Name,
		MatchDate:    date,
		MatchTime:    req.MatchTime,
		Location:     req.Location,
		RefereeID:    req.RefereeID,
		Player1ID:    req.Player1ID,
		Player1Score: req.Player1Score,
		Player2ID:    req.Player2ID,
		Player2Score: req.Player2Score,
	}, nil
}

func (h *MatchHandler) CreateMatchHandler(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	input, err := req.toInput()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatchesHandler отдаёт матчи, прошедшие через все заданные фильтры;
// без фильтров — все матчи.
func (h *MatchHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := matchFilterFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.Filter(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) UpdateMatchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req matchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	input, err := req.toInput()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) DeleteMatchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MatchHandler) RegisterPlayerHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	playerID, err := queryInt(r, "playerId")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if playerID == nil {
		badRequestResponse(w, r, errors.New("playerId parameter is required"))
		return
	}

	match, err := h.matchService.RegisterPlayer(r.Context(), matchID, *playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) RemovePlayerHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	playerID, err := queryInt(r, "playerId")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if playerID == nil {
		badRequestResponse(w, r, errors.New("playerId parameter is required"))
		return
	}

	match, err := h.matchService.RemovePlayer(r.Context(), matchID, *playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) UpdateScoreHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player1Score, err := queryInt(r, "player1Score")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	player2Score, err := queryInt(r, "player2Score")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateScore(r.Context(), matchID, player1Score, player2Score)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportMatchesHandler выгружает отфильтрованные матчи в csv или txt.
func (h *MatchHandler) ExportMatchesHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := matchFilterFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	format, strategy, contentType, err := exportFormat(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"matches.%s\"", format))

	if err := h.matchService.Export(r.Context(), filter, strategy, w); err != nil {
		mapServiceErrorToHTTP(w, r, err)
	}
}

// ExportUploadHandler формирует отчёт и загружает его в объектное
// хранилище; в ответе — публичная ссылка.
func (h *MatchHandler) ExportUploadHandler(w http.ResponseWriter, r *http.Request) {
	filter, err := matchFilterFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	format, strategy, contentType, err := exportFormat(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	key := fmt.Sprintf("exports/matches-%s.%s", time.Now().UTC().Format("20060102T150405"), format)
	result, err := h.matchService.ExportToStorage(r.Context(), filter, strategy, key, contentType)
	if err != nil {
		if errors.Is(err, services.ErrUploaderNotConfigured) {
			errorResponse(w, r, http.StatusServiceUnavailable, err.Error())
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"key": result.Key, "url": result.Location}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func exportFormat(r *http.Request) (string, export.MatchExportStrategy, string, error) {
	format := r.URL.Query().Get("format")
	switch format {
	case "csv":
		return "csv", export.CSVStrategy{}, "text/csv", nil
	case "txt":
		return "txt", export.TXTStrategy{}, "text/plain", nil
	default:
		return "", nil, "", errors.New("format parameter must be csv or txt")
	}
}

func matchFilterFromQuery(r *http.Request) (services.MatchFilter, error) {
	var filter services.MatchFilter

	if str := r.URL.Query().Get("startDate"); str != "" {
		date, err := time.Parse(dateLayout, str)
		if err != nil {
			return filter, fmt.Errorf("invalid startDate: %w", err)
		}
		filter.StartDate = &date
	}
	if str := r.URL.Query().Get("endDate"); str != "" {
		date, err := time.Parse(dateLayout, str)
		if err != nil {
			return filter, fmt.Errorf("invalid endDate: %w", err)
		}
		filter.EndDate = &date
	}
	filter.Location = queryString(r, "location")

	refereeID, err := queryInt(r, "refereeId")
	if err != nil {
		return filter, err
	}
	filter.RefereeID = refereeID

	playerID, err := queryInt(r, "playerId")
	if err != nil {
		return filter, err
	}
	filter.PlayerID = playerID

	return filter, nil
}
