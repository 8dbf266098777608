package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type receiptUploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type receiptURLResponse struct {
	URL string `json:"url"`
}

// createReceiptUpload returns a presigned PUT URL and the object key the
// client should attach to the transaction.
func (s *Server) createReceiptUpload(c *gin.Context) {
	key, url, err := s.receipts.GetUploadURL(c.Request.Context(), currentUserID(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, receiptUploadResponse{Key: key, URL: url})
}

// receiptDownloadURL presigns a GET for one of the caller's own objects.
// Upload keys are namespaced receipts/<user-id>/..., so anything outside the
// caller's namespace is treated as nonexistent.
func (s *Server) receiptDownloadURL(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_input"})
		return
	}
	if !strings.HasPrefix(key, "receipts/"+currentUserID(c)+"/") {
		c.JSON(http.StatusNotFound, errorResponse{Error: "not_found"})
		return
	}

	url, err := s.receipts.GetDownloadURL(c.Request.Context(), key)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, receiptURLResponse{URL: url})
}
