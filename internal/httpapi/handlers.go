package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shopping-consolidator/internal/logger"
	"shopping-consolidator/internal/shopping"
)

const (
	sourceAPI    = "api"
	maxBodyBytes = 1 << 20
)

// ListService is what the handlers need from the consolidation service.
type ListService interface {
	Consolidate(ctx context.Context, source string, list shopping.ShoppingList) shopping.Result
	SaveAndConsolidate(ctx context.Context, userID, source string, list shopping.ShoppingList) (*shopping.SavedList, error)
	Get(ctx context.Context, id string) (*shopping.SavedList, error)
	Delete(ctx context.Context, userID, id string) error
}

type apiError struct {
	Error string `json:"error"`
}

func respondError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, apiError{Error: err.Error()})
}

// savedResponse is the body returned when a list is stored.
type savedResponse struct {
	ID           string                `json:"id"`
	Original     shopping.ShoppingList `json:"original"`
	Consolidated shopping.Result       `json:"consolidated"`
	Applied      bool                  `json:"applied"`
}

// Handler serves the shopping-list endpoints.
type Handler struct {
	svc ListService
	log *logger.Logger
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Consolidate returns the consolidated view of the posted list without storing it.
func (h *Handler) Consolidate(c *gin.Context) {
	list, ok := bindList(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.svc.Consolidate(c.Request.Context(), sourceAPI, list))
}

// Create consolidates and stores the posted list for ?user_id=.
func (h *Handler) Create(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		respondError(c, http.StatusBadRequest, errors.New("user_id is required"))
		return
	}
	list, ok := bindList(c)
	if !ok {
		return
	}

	saved, err := h.svc.SaveAndConsolidate(c.Request.Context(), userID, sourceAPI, list)
	if err != nil {
		h.log.Error("failed to save shopping list", "user_id", userID, "error", err)
		respondError(c, http.StatusInternalServerError, errors.New("failed to save shopping list"))
		return
	}

	c.JSON(http.StatusCreated, savedResponse{
		ID:           saved.ID,
		Original:     saved.Result.Original,
		Consolidated: saved.Result,
		Applied:      saved.Result.Applied(),
	})
}

// Get returns a stored list. ?view=original shows the list as submitted; the default is the
// consolidated view.
func (h *Handler) Get(c *gin.Context) {
	view := c.DefaultQuery("view", "consolidated")
	if view != "consolidated" && view != "original" {
		respondError(c, http.StatusBadRequest, fmt.Errorf("unknown view %q", view))
		return
	}

	saved, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, shopping.ErrListNotFound) {
		respondError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.log.Error("failed to load shopping list", "id", c.Param("id"), "error", err)
		respondError(c, http.StatusInternalServerError, errors.New("failed to load shopping list"))
		return
	}

	if view == "original" {
		c.JSON(http.StatusOK, saved.Result.Original)
		return
	}
	c.JSON(http.StatusOK, saved.Result)
}

// Delete removes a stored list owned by ?user_id=.
func (h *Handler) Delete(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		respondError(c, http.StatusBadRequest, errors.New("user_id is required"))
		return
	}

	err := h.svc.Delete(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, shopping.ErrListNotFound) {
		respondError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		h.log.Error("failed to delete shopping list", "id", c.Param("id"), "error", err)
		respondError(c, http.StatusInternalServerError, errors.New("failed to delete shopping list"))
		return
	}
	c.Status(http.StatusNoContent)
}

func bindList(c *gin.Context) (shopping.ShoppingList, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var list shopping.ShoppingList
	if err := c.ShouldBindJSON(&list); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("invalid shopping list: %w", err))
		return shopping.ShoppingList{}, false
	}
	return list, true
}
