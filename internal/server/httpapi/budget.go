package httpapi

import (
	"net/http"
	"strconv"

	"github.com/avoropay/finsync/internal/server/models"
	"github.com/gin-gonic/gin"
)

type budgetRequest struct {
	CategoryID string  `json:"categoryId"`
	Amount     float64 `json:"amount"`
	Year       int     `json:"year"`
	Month      int     `json:"month"`
}

func (s *Server) listBudgets(c *gin.Context) {
	budgets, err := s.budgets.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	if budgets == nil {
		budgets = []*models.Budget{}
	}
	c.JSON(http.StatusOK, budgets)
}

func (s *Server) setBudget(c *gin.Context) {
	var req budgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_input"})
		return
	}

	b, err := s.budgets.Set(c.Request.Context(), currentUserID(c), req.CategoryID, req.Amount, req.Year, req.Month)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

func (s *Server) updateBudget(c *gin.Context) {
	var req budgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_input"})
		return
	}

	b := &models.Budget{
		ID:         c.Param("id"),
		UserID:     currentUserID(c),
		CategoryID: req.CategoryID,
		Amount:     req.Amount,
		Year:       req.Year,
		Month:      req.Month,
	}
	if err := s.budgets.Update(c.Request.Context(), b); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

func (s *Server) deleteBudget(c *gin.Context) {
	if err := s.budgets.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// budgetUsage reports spend against the budget for category/year/month.
func (s *Server) budgetUsage(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_input"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_input"})
		return
	}

	usage, err := s.budgets.Usage(c.Request.Context(), currentUserID(c), c.Query("categoryId"), year, month)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, usage)
}
