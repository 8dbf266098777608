package httpapi

import (
	"net/http"
	"strconv"

	"github.com/avoropay/finsync/internal/server/models"
	"github.com/gin-gonic/gin"
)

type deltaResponse struct {
	Records []*models.Transaction `json:"records"`
	Version int64                 `json:"version"`
}

type pushResponse struct {
	Applied int   `json:"applied"`
	Version int64 `json:"version"`
}

// pull returns every record changed since last_version, tombstones
// included, plus the current watermark.
func (s *Server) pull(c *gin.Context) {
	since := int64(0)
	if raw := c.Query("last_version"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_input"})
			return
		}
		since = v
	}

	delta, err := s.sync.Pull(c.Request.Context(), currentUserID(c), since)
	if err != nil {
		s.fail(c, err)
		return
	}

	if delta.Records == nil {
		delta.Records = []*models.Transaction{}
	}
	c.JSON(http.StatusOK, deltaResponse{Records: delta.Records, Version: delta.Version})
}

// push applies a client batch atomically and returns the new watermark.
func (s *Server) push(c *gin.Context) {
	var incoming []*models.Transaction
	if err := c.ShouldBindJSON(&incoming); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_input"})
		return
	}

	res, err := s.sync.Push(c.Request.Context(), currentUserID(c), incoming)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, pushResponse{Applied: res.Applied, Version: res.Version})
}

// listTransactions serves the full live set for clients that do not track
// a watermark.
func (s *Server) listTransactions(c *gin.Context) {
	records, err := s.sync.ListAll(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	if records == nil {
		records = []*models.Transaction{}
	}
	c.JSON(http.StatusOK, records)
}

// uploadTransactions is the thin-client path: apply the batch, then
// re-serve the full live set in one round trip.
func (s *Server) uploadTransactions(c *gin.Context) {
	var incoming []*models.Transaction
	if err := c.ShouldBindJSON(&incoming); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_input"})
		return
	}

	userID := currentUserID(c)
	if _, err := s.sync.Push(c.Request.Context(), userID, incoming); err != nil {
		s.fail(c, err)
		return
	}

	records, err := s.sync.ListAll(c.Request.Context(), userID)
	if err != nil {
		s.fail(c, err)
		return
	}

	if records == nil {
		records = []*models.Transaction{}
	}
	c.JSON(http.StatusOK, records)
}
