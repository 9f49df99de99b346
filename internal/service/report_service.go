package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/MASTFAX12/MAKERS/internal/models"
	"github.com/MASTFAX12/MAKERS/pkg/config"
	"github.com/MASTFAX12/MAKERS/pkg/errors"
	"github.com/MASTFAX12/MAKERS/pkg/export"
)

// ReportService renders roster and project exports. Every export is
// audited, and a dated copy lands in the configured storage directory.
type ReportService struct {
	cfg      config.ReportsConfig
	members  MemberRepositoryFull
	projects ProjectStorage
	activity ActivityRecorder
	pdf      *export.PDFExporter
	csv      *export.CSVExporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService creates a report service.
func NewReportService(
	cfg config.ReportsConfig,
	members MemberRepositoryFull,
	projects ProjectStorage,
	activity ActivityRecorder,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		cfg:      cfg,
		members:  members,
		projects: projects,
		activity: activity,
		pdf:      export.NewPDFExporter(),
		csv:      export.NewCSVExporter(),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *ReportService) authorize(session *models.Session) error {
	if !s.cfg.Enabled {
		return errors.Clone(errors.ErrForbidden, "report exports are disabled")
	}
	if !session.Can(models.PermissionAnalyticsView) {
		return errors.ErrForbidden
	}
	return nil
}

// TeamReportPDF renders the roster with workload counters as a PDF.
func (s *ReportService) TeamReportPDF(ctx context.Context, session *models.Session) ([]byte, error) {
	if err := s.authorize(session); err != nil {
		return nil, err
	}

	data, err := s.memberDataset(ctx)
	if err != nil {
		return nil, err
	}

	out, err := s.pdf.Render(data, "Team Workload Report")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal.Code, errors.ErrInternal.Status, "failed to render report")
	}

	s.archive("team_report", "pdf", out)
	s.audit(ctx, session, "team_report_pdf")
	return out, nil
}

// MembersCSV renders the roster as CSV.
func (s *ReportService) MembersCSV(ctx context.Context, session *models.Session) ([]byte, error) {
	if err := s.authorize(session); err != nil {
		return nil, err
	}

	data, err := s.memberDataset(ctx)
	if err != nil {
		return nil, err
	}

	out, err := s.csv.Render(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal.Code, errors.ErrInternal.Status, "failed to render export")
	}

	s.archive("members", "csv", out)
	s.audit(ctx, session, "members_csv")
	return out, nil
}

// ProjectsCSV renders the project collection as CSV.
func (s *ReportService) ProjectsCSV(ctx context.Context, session *models.Session) ([]byte, error) {
	if err := s.authorize(session); err != nil {
		return nil, err
	}

	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}

	data := export.Dataset{
		Headers: []string{"ID", "Title", "Subject", "Status", "Priority", "Team", "Deadline", "Grade"},
	}
	for _, p := range projects {
		grade := ""
		if p.Grade != nil {
			grade = fmt.Sprintf("%.1f", *p.Grade)
		}
		data.Rows = append(data.Rows, map[string]string{
			"ID":       p.ID,
			"Title":    p.Title,
			"Subject":  p.Subject,
			"Status":   string(p.Status),
			"Priority": string(p.Priority),
			"Team":     fmt.Sprintf("%d", len(p.AssignedMembers)),
			"Deadline": p.Deadline.Format(time.RFC3339),
			"Grade":    grade,
		})
	}

	out, err := s.csv.Render(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal.Code, errors.ErrInternal.Status, "failed to render export")
	}

	s.archive("projects", "csv", out)
	s.audit(ctx, session, "projects_csv")
	return out, nil
}

// archive keeps a dated copy of the export on disk. Best effort, a failed
// write only logs and never fails the download.
func (s *ReportService) archive(kind, ext string, out []byte) {
	if s.cfg.StorageDir == "" {
		return
	}
	if err := os.MkdirAll(s.cfg.StorageDir, 0o755); err != nil {
		s.logger.Warn("report archive failed", zap.Error(err))
		return
	}

	name := fmt.Sprintf("%s_%s.%s", kind, s.now().UTC().Format("20060102_150405"), ext)
	if err := os.WriteFile(filepath.Join(s.cfg.StorageDir, name), out, 0o644); err != nil {
		s.logger.Warn("report archive failed", zap.String("file", name), zap.Error(err))
	}
}

func (s *ReportService) memberDataset(ctx context.Context) (export.Dataset, error) {
	members, err := s.members.List(ctx)
	if err != nil {
		return export.Dataset{}, err
	}

	data := export.Dataset{
		Headers: []string{"ID", "Name", "Role", "Availability", "Active", "Completed", "Total", "Contribution"},
	}
	for _, m := range members {
		data.Rows = append(data.Rows, map[string]string{
			"ID":           m.ID,
			"Name":         m.Name,
			"Role":         m.Role,
			"Availability": string(m.Availability),
			"Active":       fmt.Sprintf("%d", m.Stats.ActiveProjects),
			"Completed":    fmt.Sprintf("%d", m.Stats.CompletedProjects),
			"Total":        fmt.Sprintf("%d", m.Stats.TotalProjects),
			"Contribution": fmt.Sprintf("%.0f", m.Stats.ContributionScore),
		})
	}
	return data, nil
}

func (s *ReportService) audit(ctx context.Context, session *models.Session, kind string) {
	s.activity.Record(ctx, models.ActionDataExport, session.MemberID, map[string]string{
		"report": kind,
	})
}
