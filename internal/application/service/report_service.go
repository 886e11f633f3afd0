package service

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/garyjia/lecturer-claims/internal/report"
)

// ReportWriter renders a claims report to a stream
type ReportWriter interface {
	Write(r *report.ClaimReport, w io.Writer) error
}

// ReportService builds HR reports over every claim
type ReportService interface {
	ClaimsReport(ctx context.Context) (*report.ClaimReport, error)
	ExportClaims(ctx context.Context, w io.Writer) error
}

type reportServiceImpl struct {
	claimRepo port.ClaimRepository
	userRepo  port.UserRepository
	txManager port.TransactionManager
	writer    ReportWriter
	logger    *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(claimRepo port.ClaimRepository, userRepo port.UserRepository, txManager port.TransactionManager, writer ReportWriter, logger *zap.Logger) ReportService {
	return &reportServiceImpl{
		claimRepo: claimRepo,
		userRepo:  userRepo,
		txManager: txManager,
		writer:    writer,
		logger:    logger,
	}
}

// ClaimsReport lists all claims with lecturer names and per-status totals.
// The listing and the totals are read in one transaction so they agree.
func (s *reportServiceImpl) ClaimsReport(ctx context.Context) (*report.ClaimReport, error) {
	var (
		named   []*entity.ClaimWithLecturer
		summary []entity.StatusSummary
	)
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		claims, err := s.claimRepo.ListAll(ctx)
		if err != nil {
			return err
		}
		if named, err = withLecturerNames(ctx, s.userRepo, claims); err != nil {
			return err
		}
		summary, err = s.claimRepo.SummarizeByStatus(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return report.New(named, summary, time.Now().UTC()), nil
}

// ExportClaims writes the claims report as a workbook
func (s *reportServiceImpl) ExportClaims(ctx context.Context, w io.Writer) error {
	r, err := s.ClaimsReport(ctx)
	if err != nil {
		return err
	}
	if err := s.writer.Write(r, w); err != nil {
		s.logger.Error("Failed to export claims report", zap.Error(err))
		return err
	}
	return nil
}
