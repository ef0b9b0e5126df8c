package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/dmitrijs2005/productkeeper/internal/server/failure"
)

type generateRequest struct {
	Description string `json:"description"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// generate proxies a raw description to the text generator. Statuses: 400
// missing input, 401 rejected key, 429 rate limited, 502 upstream down, 500
// not configured or unclassified.
func (s *Server) generate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return s.failProxy(c, failure.StepEnhance, common.ErrEmptyDescription)
	}

	text, err := s.enhancer.Enhance(detached(c), req.Description)
	if err != nil {
		return s.failProxy(c, failure.StepEnhance, err)
	}
	return c.JSON(http.StatusOK, generateResponse{Text: text})
}
