package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/invoicekit/internal/backup"
)

func (s *Server) ExportBackup(c *gin.Context) {
	doc, err := s.backupSvc.Export(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", attachment(backup.Filename(doc.Timestamp)))
	c.JSON(http.StatusOK, doc)
}

func (s *Server) ImportBackup(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	doc, err := backup.Decode(body)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.backupSvc.Import(c.Request.Context(), doc)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
