package handlers

import (
	"errors"
	"net/http"
	"time"

	"esiapp/internal/auth"
	dom "esiapp/internal/domain"
	"esiapp/internal/dto"
	"esiapp/internal/service"

	"github.com/gin-gonic/gin"
)

const errNumberInput = "numberKey (string) and value (number) are required."

// DataHandler handles the per-user numbers map routes.
type DataHandler struct {
	svc *service.LedgerService
}

// NewDataHandler returns a new DataHandler.
func NewDataHandler(svc *service.LedgerService) *DataHandler {
	return &DataHandler{svc: svc}
}

// Get godoc
// @Summary      Get the numbers map for the current user
// @Tags         data
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /data [get]
func (h *DataHandler) Get(c *gin.Context) {
	numbers, err := h.svc.GetNumbers(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "numbers": numbers})
}

// Create godoc
// @Summary      Set or add a single entry
// @Description  Sets numbers[numberKey] = value, or adds value to the
// @Description  existing entry when isAddValue is true.
// @Tags         data
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDataRequest  true  "Entry"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /data [post]
func (h *DataHandler) Create(c *gin.Context) {
	var req dto.CreateDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errNumberInput})
		return
	}
	value, err := req.Value.Float64()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errNumberInput})
		return
	}
	numbers, err := h.svc.Upsert(c.Request.Context(), auth.UserIDFromContext(c), req.NumberKey, value, req.IsAddValue)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errNumberInput})
			return
		}
		serverError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "numbers": numbers})
}

// Edit godoc
// @Summary      Set a single entry or clear the whole map
// @Tags         data
// @Accept       json
// @Produce      json
// @Param        body  body  dto.EditDataRequest  true  "Entry or clearAll"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /data/edit [put]
func (h *DataHandler) Edit(c *gin.Context) {
	var req dto.EditDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errNumberInput})
		return
	}
	userID := auth.UserIDFromContext(c)

	if req.ClearAll {
		numbers, err := h.svc.ClearAll(c.Request.Context(), userID)
		if err != nil {
			serverError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "numbers": numbers})
		return
	}

	value, err := req.Value.Float64()
	if err != nil || req.NumberKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errNumberInput})
		return
	}
	numbers, err := h.svc.Upsert(c.Request.Context(), userID, req.NumberKey, value, false)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errNumberInput})
			return
		}
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "numbers": numbers})
}

// Reset godoc
// @Summary      Reset one entry to a fixed value
// @Description  Overwrites numbers[numberKey] with the given value, 50 when
// @Description  the body omits one. Fails when the user has no ledger yet.
// @Tags         data
// @Accept       json
// @Produce      json
// @Param        numberKey  path  string  true  "Entry key"
// @Param        body  body  dto.ResetDataRequest  false  "Optional value"
// @Success      200   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /data/reset/{numberKey} [put]
func (h *DataHandler) Reset(c *gin.Context) {
	var req dto.ResetDataRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errNumberInput})
			return
		}
	}
	value := 50.0
	if req.Value != nil {
		v, err := req.Value.Float64()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errNumberInput})
			return
		}
		value = v
	}
	numbers, err := h.svc.ResetKey(c.Request.Context(), auth.UserIDFromContext(c), c.Param("numberKey"), value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "No data found for this user"})
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Number key is required"})
		default:
			serverError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "numbers": numbers})
}

// DeleteKey godoc
// @Summary      Delete one entry
// @Description  Removes the key entirely; the map shrinks.
// @Tags         data
// @Produce      json
// @Param        numberKey  path  string  true  "Entry key"
// @Success      200   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /data/delete/{numberKey} [delete]
func (h *DataHandler) DeleteKey(c *gin.Context) {
	numbers, err := h.svc.DeleteKey(c.Request.Context(), auth.UserIDFromContext(c), c.Param("numberKey"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Number key not found"})
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Number key is required"})
		default:
			serverError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "numbers": numbers})
}

// GetByID godoc
// @Summary      Get a ledger record by ID
// @Tags         data
// @Produce      json
// @Param        id  path  string  true  "Ledger ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /data/{id} [get]
func (h *DataHandler) GetByID(c *gin.Context) {
	l, err := h.svc.GetByID(c.Request.Context(), auth.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.recordError(c, err, "access")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ledgerResponse(l)})
}

// Update godoc
// @Summary      Replace a ledger record's numbers map
// @Tags         data
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "Ledger ID"
// @Param        body  body  dto.UpdateDataRequest  true  "Replacement map"
// @Success      200   {object}  map[string]interface{}
// @Failure      401   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /data/{id} [put]
func (h *DataHandler) Update(c *gin.Context) {
	var req dto.UpdateDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	l, err := h.svc.UpdateRecord(c.Request.Context(), auth.UserIDFromContext(c), c.Param("id"), req.Numbers)
	if err != nil {
		h.recordError(c, err, "update")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": ledgerResponse(l)})
}

// Delete godoc
// @Summary      Delete a ledger record
// @Tags         data
// @Produce      json
// @Param        id  path  string  true  "Ledger ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Security     BearerAuth
// @Router       /data/{id} [delete]
func (h *DataHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteRecord(c.Request.Context(), auth.UserIDFromContext(c), c.Param("id")); err != nil {
		h.recordError(c, err, "delete")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}

func (h *DataHandler) recordError(c *gin.Context, err error, verb string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Data not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authorized to " + verb + " this data"})
	default:
		serverError(c, err)
	}
}

func ledgerResponse(l dom.Ledger) dto.LedgerResponse {
	return dto.LedgerResponse{
		ID:        l.ID,
		UserID:    l.UserID,
		Numbers:   l.Numbers,
		CreatedAt: l.CreatedAt.Format(time.RFC3339),
	}
}
