package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/alexanderramin/casework/internal/contract"
	"github.com/alexanderramin/casework/internal/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleGetTask(c *gin.Context) {
	t, err := s.records.FetchTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract.FromTask(t))
}

func (s *Server) bindTask(c *gin.Context) (*domain.Task, bool) {
	var rec contract.TaskRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		s.badRequest(c, err)
		return nil, false
	}
	t, err := rec.ToDomain()
	if err != nil {
		s.badRequest(c, err)
		return nil, false
	}
	// Nested sub-resources have their own routes.
	t.Phases, t.Documents, t.Customer = nil, nil, nil
	return t, true
}

func (s *Server) handleCreateTask(c *gin.Context) {
	t, ok := s.bindTask(c)
	if !ok {
		return
	}
	t.ID = ""
	if err := s.records.CreateTask(c.Request.Context(), t); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract.FromTask(t))
}

func (s *Server) handleSaveTask(c *gin.Context) {
	t, ok := s.bindTask(c)
	if !ok {
		return
	}
	t.ID = c.Param("id")
	if err := s.records.SaveTask(c.Request.Context(), t); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract.FromTask(t))
}

func (s *Server) bindPhase(c *gin.Context) (domain.PaymentPhase, bool) {
	var rec contract.PhaseRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		s.badRequest(c, err)
		return domain.PaymentPhase{}, false
	}
	p, err := rec.ToDomain()
	if err != nil {
		s.badRequest(c, err)
		return domain.PaymentPhase{}, false
	}
	return p, true
}

func (s *Server) handleCreatePhase(c *gin.Context) {
	p, ok := s.bindPhase(c)
	if !ok {
		return
	}
	if err := s.records.CreatePaymentPhase(c.Request.Context(), c.Param("id"), &p); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract.FromPhase(p))
}

func (s *Server) handleUpdatePhase(c *gin.Context) {
	p, ok := s.bindPhase(c)
	if !ok {
		return
	}
	p.ID = c.Param("id")
	if err := s.records.UpdatePaymentPhase(c.Request.Context(), &p); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract.FromPhase(p))
}

func (s *Server) handleLatestInvoiceNumber(c *gin.Context) {
	n, ok, err := s.records.FetchLatestInvoiceNumber(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, contract.InvoiceNumberPayload{InvoiceNumber: n})
}

func (s *Server) handleRecordInvoiceNumber(c *gin.Context) {
	var payload contract.InvoiceNumberPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		s.badRequest(c, err)
		return
	}
	if err := s.records.RecordInvoiceNumber(c.Request.Context(), c.Param("id"), payload.InvoiceNumber); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListCategories(c *gin.Context) {
	cats, err := s.records.FetchDocumentCategories(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]contract.CategoryRecord, 0, len(cats))
	for label, id := range cats {
		out = append(out, contract.CategoryRecord{ID: id, Label: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var req contract.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	id, err := s.records.CreateDocumentCategory(c.Request.Context(), c.Param("id"), req.Label)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract.CategoryRecord{ID: id, Label: req.Label})
}

func (s *Server) handleUploadDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.writeError(c, errTooLarge)
			return
		}
		s.writeError(c, domain.NewValidationError("file", "required", "multipart file part is required"))
		return
	}
	if fh.Size > s.maxUpload {
		s.writeError(c, fmt.Errorf("%s is %d bytes: %w", fh.Filename, fh.Size, errTooLarge))
		return
	}

	categoryID, err := strconv.ParseInt(c.DefaultPostForm("category_id", "0"), 10, 64)
	if err != nil {
		s.writeError(c, domain.NewValidationError("category_id", "integer", "category_id must be an integer"))
		return
	}
	visible, err := strconv.ParseBool(c.DefaultPostForm("visible", "true"))
	if err != nil {
		s.writeError(c, domain.NewValidationError("visible", "boolean", "visible must be true or false"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.writeError(c, fmt.Errorf("opening upload: %w", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		s.writeError(c, fmt.Errorf("reading upload: %w", err))
		return
	}

	doc, err := s.records.UploadDocument(c.Request.Context(), domain.UploadRequest{
		TaskID:     c.Param("id"),
		CategoryID: categoryID,
		Label:      c.PostForm("label"),
		File:       domain.NewPendingFile(fh.Filename, fh.Header.Get("Content-Type"), data),
		Visible:    visible,
		UploadedBy: c.PostForm("uploaded_by"),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract.FromDocument(*doc))
}

func (s *Server) handleDeleteDocument(c *gin.Context) {
	if err := s.records.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUpsertCustomer(c *gin.Context) {
	var rec contract.CustomerRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		s.badRequest(c, err)
		return
	}
	cust := rec.ToDomain()
	cust.ID = c.Param("id")
	if err := s.records.UpsertCustomer(c.Request.Context(), &cust); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract.FromCustomer(cust))
}
