package handlers

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-report/internal/api/dto"
	"github.com/spec-kit/ticket-report/internal/domain"
	"github.com/spec-kit/ticket-report/internal/service"
	"github.com/spec-kit/ticket-report/internal/snapshot"
	apperrors "github.com/spec-kit/ticket-report/pkg/util/errorutil"
)

const (
	headerFingerprint = "X-Report-Fingerprint"
	headerCached      = "X-Report-Cached"
	headerRunID       = "X-Report-Run-ID"

	maxRunsLimit = 100
)

// ReportService is the part of the report service the handlers use.
type ReportService interface {
	Preview(ctx context.Context, snap *snapshot.Snapshot) ([]byte, error)
	Stats(ctx context.Context, snap *snapshot.Snapshot) (*service.StatsResult, error)
	Generate(ctx context.Context, clientID string) (*service.GeneratedReport, error)
	GenerateLatest(ctx context.Context) (*service.GeneratedReport, error)
	ListRuns(ctx context.Context, clientID string, limit, offset int) ([]domain.ReportRun, error)
	ShareLink(ctx context.Context, clientID string) (*service.ShareLink, error)
	OpenShared(ctx context.Context, token string) (*service.GeneratedReport, error)
}

// ReportsHandler serves report generation endpoints.
type ReportsHandler struct {
	service          ReportService
	defaultRunsLimit int
	sharedPrefix     string
}

// NewReportsHandler constructs handler. sharedPrefix is the public path
// share tokens are appended to.
func NewReportsHandler(reportService ReportService, defaultRunsLimit int, sharedPrefix string) *ReportsHandler {
	if defaultRunsLimit <= 0 {
		defaultRunsLimit = 20
	}
	return &ReportsHandler{service: reportService, defaultRunsLimit: defaultRunsLimit, sharedPrefix: sharedPrefix}
}

// Preview POST /reports/preview.
func (h *ReportsHandler) Preview(c *fiber.Ctx) error {
	snap, err := decodeSnapshot(c)
	if err != nil {
		return err
	}
	html, err := h.service.Preview(c.UserContext(), snap)
	if err != nil {
		return err
	}
	c.Set(headerFingerprint, snap.Fingerprint)
	return sendHTML(c, html)
}

// Stats POST /reports/stats.
func (h *ReportsHandler) Stats(c *fiber.Ctx) error {
	snap, err := decodeSnapshot(c)
	if err != nil {
		return err
	}
	res, err := h.service.Stats(c.UserContext(), snap)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": res})
}

// Generate POST /reports/:client_id/generate.
func (h *ReportsHandler) Generate(c *fiber.Ctx) error {
	clientID := strings.TrimSpace(c.Params("client_id"))
	if clientID == "" {
		return apperrors.NewValidationError("client_id required", nil)
	}
	out, err := h.service.Generate(c.UserContext(), clientID)
	if err != nil {
		return err
	}
	return sendGenerated(c, out)
}

// Latest GET /reports/latest.
func (h *ReportsHandler) Latest(c *fiber.Ctx) error {
	out, err := h.service.GenerateLatest(c.UserContext())
	if err != nil {
		return err
	}
	return sendGenerated(c, out)
}

// ListRuns GET /reports/:client_id/runs.
func (h *ReportsHandler) ListRuns(c *fiber.Ctx) error {
	query, err := h.parseRunQuery(c)
	if err != nil {
		return err
	}
	runs, err := h.service.ListRuns(c.UserContext(), c.Params("client_id"), query.Limit, query.Offset)
	if err != nil {
		return err
	}
	items := make([]dto.ReportRunSummary, 0, len(runs))
	for _, run := range runs {
		items = append(items, dto.NewReportRunSummary(run))
	}
	return c.JSON(dto.RunListResponse{Data: items, Limit: query.Limit, Offset: query.Offset})
}

// Share POST /reports/:client_id/share.
func (h *ReportsHandler) Share(c *fiber.Ctx) error {
	link, err := h.service.ShareLink(c.UserContext(), c.Params("client_id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.ShareLinkResponse{
		ClientID:  link.ClientID,
		Token:     link.Token,
		URL:       strings.TrimRight(h.sharedPrefix, "/") + "/" + link.Token,
		ExpiresAt: link.ExpiresAt,
	}})
}

// Shared GET /shared/reports/:token.
func (h *ReportsHandler) Shared(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return apperrors.NewValidationError("token required", nil)
	}
	out, err := h.service.OpenShared(c.UserContext(), token)
	if err != nil {
		return err
	}
	return sendGenerated(c, out)
}

func (h *ReportsHandler) parseRunQuery(c *fiber.Ctx) (dto.RunListQuery, error) {
	query := dto.RunListQuery{Limit: h.defaultRunsLimit}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return query, apperrors.NewValidationError("limit must be a positive integer", map[string]any{"limit": v})
		}
		query.Limit = min(n, maxRunsLimit)
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return query, apperrors.NewValidationError("offset must be a non-negative integer", map[string]any{"offset": v})
		}
		query.Offset = n
	}
	return query, nil
}

func decodeSnapshot(c *fiber.Ctx) (*snapshot.Snapshot, error) {
	snap, err := snapshot.Decode(bytes.NewReader(c.Body()))
	if err != nil {
		if errors.Is(err, snapshot.ErrEmpty) {
			return nil, apperrors.NewValidationError("snapshot body required", nil)
		}
		return nil, apperrors.NewValidationError("invalid snapshot payload", map[string]any{"reason": err.Error()})
	}
	return snap, nil
}

func sendGenerated(c *fiber.Ctx, out *service.GeneratedReport) error {
	c.Set(headerFingerprint, out.Fingerprint)
	c.Set(headerCached, strconv.FormatBool(out.Cached))
	if out.Run != nil {
		c.Set(headerRunID, out.Run.ID)
	}
	return sendHTML(c, out.HTML)
}

func sendHTML(c *fiber.Ctx, html []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(html)
}
