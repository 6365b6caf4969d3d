package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"time"

	"collisionos/internal/domain"
	"collisionos/internal/estimate"
	"collisionos/internal/normalize"
	"collisionos/internal/parser"
	"collisionos/internal/port"
	"collisionos/internal/validator"
)

// ImportContext identifies the caller and the document being ingested.
// A non-empty UploadID becomes the import id.
type ImportContext struct {
	FileName string
	UploadID string
	UserID   string
	TenantID string
}

// ProcessFileInput is the DTO for the combined ingest path. Content is used
// when set; otherwise the document is downloaded from StorageBucket and
// StorageKey. An empty FileType is detected from the name and content.
type ProcessFileInput struct {
	Content       []byte
	StorageBucket string
	StorageKey    string
	FileType      domain.FileType
	AutoCreate    bool
	ImportContext
}

// IngestConfig holds orchestration settings.
type IngestConfig struct {
	DevelopmentMode    bool
	MinAutoCreateScore int
	ArchiveBucket      string
}

// ImportService runs estimate documents through parse, normalize, total,
// validate and (optionally) reconcile, recording each attempt in the ledger.
type ImportService interface {
	ImportBMS(ctx context.Context, content []byte, ic ImportContext) (*estimate.ImportResult, error)
	ImportEMS(ctx context.Context, content []byte, ic ImportContext) (*estimate.ImportResult, error)
	ProcessFile(ctx context.Context, input *ProcessFileInput) (*estimate.ImportResult, error)
	ProcessBatch(ctx context.Context, inputs []ProcessFileInput, concurrency int) *BatchResult
}

type importService struct {
	ledger     port.ImportLedger
	reconciler Reconciler
	storage    port.ObjectStorage
	notifier   port.Notifier
	validator  *validator.Engine
	cfg        IngestConfig
	now        func() time.Time
}

// NewImportService creates a new ImportService. storage and notifier may be
// nil; reconciler may be nil when auto-creation is never requested.
func NewImportService(
	ledger port.ImportLedger,
	reconciler Reconciler,
	storage port.ObjectStorage,
	notifier port.Notifier,
	validationEngine *validator.Engine,
	cfg IngestConfig,
) ImportService {
	if validationEngine == nil {
		validationEngine = validator.NewEngine(nil)
	}
	return &importService{
		ledger:     ledger,
		reconciler: reconciler,
		storage:    storage,
		notifier:   notifier,
		validator:  validationEngine,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *importService) ImportBMS(ctx context.Context, content []byte, ic ImportContext) (*estimate.ImportResult, error) {
	return s.ProcessFile(ctx, &ProcessFileInput{Content: content, FileType: domain.FileTypeBMS, ImportContext: ic})
}

func (s *importService) ImportEMS(ctx context.Context, content []byte, ic ImportContext) (*estimate.ImportResult, error) {
	return s.ProcessFile(ctx, &ProcessFileInput{Content: content, FileType: domain.FileTypeEMS, ImportContext: ic})
}

func (s *importService) ProcessFile(ctx context.Context, input *ProcessFileInput) (*estimate.ImportResult, error) {
	start := s.now()

	fileName := input.FileName
	if fileName == "" && input.StorageKey != "" {
		fileName = path.Base(input.StorageKey)
	}

	rec := &domain.ImportRecord{
		ImportID:  input.UploadID,
		FileName:  fileName,
		FileType:  input.FileType,
		Status:    domain.ImportStatusProcessing,
		StartTime: start,
		UserID:    input.UserID,
		TenantID:  input.TenantID,
	}
	importID, err := s.ledger.Record(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("importService.ProcessFile: %w", err)
	}

	if input.AutoCreate && input.TenantID == "" && !s.cfg.DevelopmentMode {
		err := &TenantScopeError{Operation: "importService.ProcessFile"}
		s.fail(ctx, rec, start, err)
		return nil, err
	}

	content, err := s.loadContent(ctx, input)
	if err != nil {
		s.fail(ctx, rec, start, err)
		return nil, fmt.Errorf("importService.ProcessFile: %w", err)
	}

	fileType := input.FileType
	if fileType == "" {
		fileType, err = parser.DetectFileType(fileName, content)
		if err != nil {
			s.fail(ctx, rec, start, err)
			return nil, fmt.Errorf("importService.ProcessFile: %w", err)
		}
		rec.FileType = fileType
	}

	s.archive(ctx, input.TenantID, importID, fileName, fileType, content)

	p, err := parser.New(fileType)
	if err != nil {
		s.fail(ctx, rec, start, err)
		return nil, fmt.Errorf("importService.ProcessFile: %w", err)
	}
	doc, err := p.Parse(content)
	if err != nil {
		log.Printf("importService.ProcessFile: parse failed for import %s (%s): %v", importID, fileName, err)
		s.fail(ctx, rec, start, err)
		return nil, err
	}

	result := s.buildResult(doc, importID, fileName, fileType)

	if input.AutoCreate {
		s.autoCreate(ctx, result, input)
	}

	elapsed := s.now().Sub(start).Milliseconds()
	result.Metadata.ProcessingTimeMs = elapsed
	result.Metadata.ParsedAt = s.now().UTC()

	rec.Result = result
	s.finish(ctx, rec, start, domain.ImportStatusCompleted, "")

	return result, nil
}

// buildResult runs the pure part of the pipeline.
func (s *importService) buildResult(doc *estimate.ParsedDocument, importID, fileName string, fileType domain.FileType) *estimate.ImportResult {
	customer, vehicle, lines, seed := normalize.Normalize(doc)
	totals := normalize.ComputeTotals(doc, lines)

	validation := s.validator.Validate(&validator.Input{
		Document: doc,
		Customer: customer,
		Vehicle:  vehicle,
		Lines:    lines,
		Totals:   totals,
	})

	damage := estimate.DamageSummary{Lines: lines, Totals: totals}
	for i := range lines {
		switch lines[i].Kind {
		case estimate.LineKindPart:
			damage.PartCount++
		case estimate.LineKindLabor:
			damage.LaborCount++
		}
	}

	return &estimate.ImportResult{
		ImportID: importID,
		Customer: customer,
		Vehicle:  vehicle,
		Job:      seed,
		Document: estimate.DocumentInfo{
			EstimateNumber:   seed.EstimateNumber,
			EstimateDate:     seed.EstimateDate,
			Estimator:        seed.Estimator,
			ShopName:         doc.Estimate.ShopName,
			ClaimNumber:      seed.ClaimNumber,
			PolicyNumber:     seed.PolicyNumber,
			InsuranceCompany: seed.InsuranceCompany,
			LossDate:         seed.LossDate,
		},
		Damage:     damage,
		Validation: validation,
		Metadata: estimate.Metadata{
			ImportID: importID,
			FileName: fileName,
			FileType: string(fileType),
		},
	}
}

// autoCreate reconciles the result, downgrading failures into the result
// instead of returning them.
func (s *importService) autoCreate(ctx context.Context, result *estimate.ImportResult, input *ProcessFileInput) {
	result.AutoCreationRequested = true

	if s.cfg.MinAutoCreateScore > 0 && result.Validation.Score < s.cfg.MinAutoCreateScore {
		s.downgrade(ctx, result, input, &estimate.AutoCreationError{
			Code:    CodeScoreBelowThreshold,
			Stage:   "validation",
			Message: fmt.Sprintf("completeness score %d is below the auto-create threshold %d", result.Validation.Score, s.cfg.MinAutoCreateScore),
		})
		return
	}
	if s.reconciler == nil {
		s.downgrade(ctx, result, input, &estimate.AutoCreationError{
			Code:    CodeReconciliationFailed,
			Message: "no stores configured for auto-creation",
		})
		return
	}

	outcome, err := s.reconciler.Reconcile(ctx, result, Scope{TenantID: input.TenantID, UserID: input.UserID})
	result.Reconciliation = outcome
	if err == nil {
		result.AutoCreationSuccess = true
		return
	}

	ace := &estimate.AutoCreationError{Code: CodeReconciliationFailed, Message: err.Error()}
	var recErr *ReconciliationError
	switch {
	case errors.As(err, &recErr):
		ace.Stage = string(recErr.Stage)
	case isTenantScopeError(err):
		ace.Code = CodeTenantScopeMissing
	}
	s.downgrade(ctx, result, input, ace)
}

func (s *importService) downgrade(ctx context.Context, result *estimate.ImportResult, input *ProcessFileInput, ace *estimate.AutoCreationError) {
	ace.RequiresManualIntervention = true
	result.AutoCreationSuccess = false
	result.RequiresManualIntervention = true
	result.AutoCreationError = ace

	log.Printf("importService.autoCreate: import %s needs manual intervention (%s): %s", result.ImportID, ace.Code, ace.Message)

	if s.notifier == nil {
		return
	}
	stage := ace.Stage
	if stage == "" {
		stage = ace.Code
	}
	err := s.notifier.NotifyManualIntervention(ctx, port.ManualInterventionNotice{
		ImportID:       result.ImportID,
		TenantID:       input.TenantID,
		FileName:       result.Metadata.FileName,
		Stage:          stage,
		Reason:         ace.Message,
		CustomerName:   result.Customer.FullName,
		EstimateNumber: result.Job.EstimateNumber,
	})
	if err != nil {
		log.Printf("importService.autoCreate: notification failed for import %s: %v", result.ImportID, err)
	}
}

func (s *importService) loadContent(ctx context.Context, input *ProcessFileInput) ([]byte, error) {
	if len(input.Content) > 0 || input.StorageKey == "" {
		return input.Content, nil
	}
	if s.storage == nil {
		return nil, domain.ErrStorageUnavailable
	}
	return s.storage.Download(ctx, input.StorageBucket, input.StorageKey)
}

// ArchiveKey is the object key under which a raw source document is kept.
func ArchiveKey(tenantID, importID, fileName string) string {
	if tenantID == "" {
		tenantID = "unscoped"
	}
	if fileName == "" {
		fileName = "document"
	}
	return fmt.Sprintf("tenants/%s/imports/%s/%s", tenantID, importID, path.Base(fileName))
}

func (s *importService) archive(ctx context.Context, tenantID, importID, fileName string, fileType domain.FileType, content []byte) {
	if s.cfg.ArchiveBucket == "" || s.storage == nil || len(content) == 0 {
		return
	}
	contentType := "text/plain"
	if fileType == domain.FileTypeBMS {
		contentType = "application/xml"
	}
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.ArchiveBucket,
		Key:         ArchiveKey(tenantID, importID, fileName),
		Body:        bytes.NewReader(content),
		ContentType: contentType,
		Size:        int64(len(content)),
	})
	if err != nil {
		log.Printf("WARN: importService.archive: upload failed for import %s: %v", importID, err)
	}
}

func (s *importService) fail(ctx context.Context, rec *domain.ImportRecord, start time.Time, cause error) {
	s.finish(ctx, rec, start, domain.ImportStatusFailed, cause.Error())
}

func (s *importService) finish(ctx context.Context, rec *domain.ImportRecord, start time.Time, status domain.ImportStatus, errMsg string) {
	end := s.now()
	rec.Status = status
	rec.EndTime = &end
	rec.ProcessingTimeMs = end.Sub(start).Milliseconds()
	rec.Error = errMsg
	if _, err := s.ledger.Record(ctx, rec); err != nil {
		log.Printf("importService.finish: ledger update failed for import %s: %v", rec.ImportID, err)
	}
}
