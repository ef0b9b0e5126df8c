package httpapi

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/dmitrijs2005/productkeeper/internal/server/failure"
	"github.com/dmitrijs2005/productkeeper/internal/server/workflow"
)

type openRequest struct {
	ProductID string `json:"product_id"`
}

type noticeRequest struct {
	Choice workflow.NoticeChoice `json:"choice"`
}

type descriptionRequest struct {
	Text string `json:"text"`
}

type conflictRequest struct {
	Decision workflow.Decision `json:"decision"`
}

type meResponse struct {
	UserID                string `json:"user_id"`
	Email                 string `json:"email,omitempty"`
	PasswordSetupRequired bool   `json:"password_setup_required"`
}

func (s *Server) me(c echo.Context) error {
	claims := claimsFrom(c)
	return c.JSON(http.StatusOK, meResponse{
		UserID:                claims.UserID(),
		Email:                 claims.Email,
		PasswordSetupRequired: claims.RequiresPasswordSetup(),
	})
}

func (s *Server) openSession(c echo.Context) error {
	var req openRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, failure.StepValidate, common.ErrInvalidProductID)
	}

	sess, err := s.sessions.Open(c.Request().Context(), userID(c), req.ProductID)
	if err != nil {
		return s.fail(c, failure.StepValidate, err)
	}
	return c.JSON(http.StatusCreated, sess.View())
}

// session resolves :id for the calling user.
func (s *Server) session(c echo.Context) (*workflow.Session, error) {
	return s.sessions.Get(userID(c), c.Param("id"))
}

func (s *Server) getSession(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return s.fail(c, "", err)
	}
	return c.JSON(http.StatusOK, sess.View())
}

func (s *Server) closeSession(c echo.Context) error {
	if err := s.sessions.Remove(userID(c), c.Param("id")); err != nil {
		return s.fail(c, "", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) dismissNotice(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return s.fail(c, "", err)
	}

	var req noticeRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, failure.StepValidate, common.ErrInvalidDecision)
	}
	if err := sess.DismissNotice(req.Choice); err != nil {
		return s.fail(c, failure.StepValidate, err)
	}
	if req.Choice == workflow.NoticeBack {
		_ = s.sessions.Remove(userID(c), sess.ID())
	}
	return c.JSON(http.StatusOK, sess.View())
}

// addPhotos reads the multipart "photos" files into memory.
func (s *Server) addPhotos(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return s.fail(c, "", err)
	}

	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, s.maxUploadBytes)
	form, err := c.MultipartForm()
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, multipart.ErrMessageTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: errorDetail{
			Category:  failure.Validation,
			Step:      failure.StepValidate,
			Message:   "photo upload exceeds " + strconv.FormatInt(s.maxUploadBytes, 10) + " bytes",
			RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
		}})
	case err != nil:
		return s.fail(c, failure.StepValidate, common.ErrMalformedUpload)
	}
	defer func() { _ = form.RemoveAll() }()

	var uploads []workflow.Upload
	for _, fh := range form.File["photos"] {
		f, err := fh.Open()
		if err != nil {
			return s.fail(c, failure.StepValidate, err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return s.fail(c, failure.StepValidate, err)
		}
		uploads = append(uploads, workflow.Upload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Data:        data,
		})
	}

	if _, err := sess.AddPhotos(uploads); err != nil {
		return s.fail(c, failure.StepValidate, err)
	}
	return c.JSON(http.StatusOK, sess.View())
}

func (s *Server) removePhoto(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return s.fail(c, "", err)
	}

	confirmed, _ := strconv.ParseBool(c.QueryParam("confirm"))
	if err := sess.RemovePhoto(detached(c), c.Param("photo"), confirmed); err != nil {
		v := sess.View()
		return s.failWithSession(c, failure.StepDelete, err, &v)
	}
	return c.JSON(http.StatusOK, sess.View())
}

func (s *Server) preview(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return s.fail(c, "", err)
	}

	handle := c.Param("handle")
	if !sess.HasPreview(handle) {
		return s.fail(c, "", common.ErrPhotoNotFound)
	}
	p, ok := s.previews.Get(handle)
	if !ok {
		return s.fail(c, "", common.ErrPhotoNotFound)
	}
	c.Response().Header().Set("Cache-Control", "private, no-store")
	return c.Blob(http.StatusOK, p.ContentType, p.Data)
}

func (s *Server) setDescription(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return s.fail(c, "", err)
	}

	var req descriptionRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, failure.StepValidate, common.ErrEmptyDescription)
	}
	if err := sess.SetDescription(req.Text); err != nil {
		return s.fail(c, "", err)
	}
	return c.JSON(http.StatusOK, sess.View())
}

func (s *Server) enhance(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return s.fail(c, "", err)
	}

	if _, err := sess.Enhance(detached(c)); err != nil {
		v := sess.View()
		return s.failWithSession(c, failure.StepEnhance, err, &v)
	}
	return c.JSON(http.StatusOK, sess.View())
}

func (s *Server) save(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return s.fail(c, "", err)
	}

	if _, err := sess.Save(detached(c)); err != nil {
		v := sess.View()
		return s.failWithSession(c, "", err, &v)
	}
	return c.JSON(http.StatusOK, sess.View())
}

func (s *Server) resolveConflict(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return s.fail(c, "", err)
	}

	var req conflictRequest
	if err := c.Bind(&req); err != nil {
		return s.fail(c, failure.StepValidate, common.ErrInvalidDecision)
	}
	if _, err := sess.ResolveConflict(detached(c), req.Decision); err != nil {
		v := sess.View()
		return s.failWithSession(c, failure.StepDescribe, err, &v)
	}
	return c.JSON(http.StatusOK, sess.View())
}

// detached keeps request values but not cancellation: once started, a
// remote call runs to completion even if the client goes away.
func detached(c echo.Context) context.Context {
	return context.WithoutCancel(c.Request().Context())
}
