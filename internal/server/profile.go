package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	partydomain "github.com/smallbiznis/invoicekit/internal/party/domain"
)

func (s *Server) ListProfiles(kind partydomain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := s.partySvc.List(c.Request.Context(), kind)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}

func (s *Server) SaveProfile(kind partydomain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var party partydomain.Party
		if err := c.ShouldBindJSON(&party); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}

		resp, err := s.partySvc.Save(c.Request.Context(), partydomain.SaveProfileRequest{
			Kind:  kind,
			Party: party,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}

		status := http.StatusCreated
		if resp.Updated {
			status = http.StatusOK
		}
		c.JSON(status, gin.H{"data": resp.Profile})
	}
}

func (s *Server) GetProfileByID(c *gin.Context) {
	item, err := s.partySvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteProfile(c *gin.Context) {
	if err := s.partySvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
