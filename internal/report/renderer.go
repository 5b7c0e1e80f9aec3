package report

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-report/internal/domain"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

const defaultTemplate = "email_report.html.tmpl"

// GeneratedAtLayout is the footer timestamp format.
const GeneratedAtLayout = "2006-01-02 15:04:05"

// RendererConfig selects the template. An empty TemplatePath uses the
// built-in document.
type RendererConfig struct {
	TemplatePath string
	Logger       *zap.Logger
}

// Renderer executes the report template. It is safe for concurrent use.
type Renderer struct {
	tmpl   *template.Template
	logger *zap.Logger
}

// NewRenderer parses the configured template once.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		tmpl *template.Template
		err  error
	)
	if cfg.TemplatePath != "" {
		tmpl, err = parseFile(cfg.TemplatePath)
	} else {
		tmpl, err = template.New(defaultTemplate).Funcs(funcMap()).ParseFS(templateFS, "templates/"+defaultTemplate)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &Renderer{tmpl: tmpl, logger: logger}, nil
}

func parseFile(path string) (*template.Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return template.New(filepath.Base(path)).Funcs(funcMap()).Parse(string(content))
}

type page struct {
	Client      domain.ClientInfo
	ClientName  string
	Stats       *domain.TicketStats
	Tickets     []domain.TicketView
	Ratings     []RatingCount
	GeneratedAt string
}

// Render produces the complete HTML document.
func (r *Renderer) Render(rep *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Write(&buf, rep); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders the document into w.
func (r *Renderer) Write(w io.Writer, rep *Report) error {
	if rep == nil || rep.Stats == nil {
		return errors.New("report has no statistics")
	}
	generated := rep.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	data := page{
		Client:      rep.Client,
		ClientName:  rep.Client.DisplayName(),
		Stats:       rep.Stats,
		Tickets:     rep.SortedTickets(),
		Ratings:     rep.RatingBreakdown(),
		GeneratedAt: generated.Format(GeneratedAtLayout),
	}
	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute report template: %w", err)
	}
	r.logger.Debug("report rendered",
		zap.String("client", data.ClientName),
		zap.Int("tickets", len(data.Tickets)),
	)
	return nil
}
