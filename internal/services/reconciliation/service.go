package reconciliation

import (
	"bytes"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"ledger-reconciliation-backend/internal/ingest"
	"ledger-reconciliation-backend/internal/models"
	"ledger-reconciliation-backend/internal/repository"
	"ledger-reconciliation-backend/internal/services/audit"
	"ledger-reconciliation-backend/internal/services/matching"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEmptyFile       = errors.New("no file content supplied")
	ErrBadMapping      = errors.New("malformed mapping payload")
	ErrJobNotFound     = errors.New("job not found")
	ErrResultNotFound  = errors.New("result not found")
	ErrNoCompletedJobs = errors.New("no completed jobs")
)

// Service owns the job lifecycle: content-hash idempotency, dispatch of the
// asynchronous pipeline, status queries and manual corrections.
type Service struct {
	jobs    *repository.JobRepository
	results *repository.ResultRepository
	engine  *matching.Engine
	audit   *audit.Service
}

func NewService(
	jobs *repository.JobRepository,
	results *repository.ResultRepository,
	engine *matching.Engine,
	auditSvc *audit.Service,
) *Service {
	return &Service{
		jobs:    jobs,
		results: results,
		engine:  engine,
		audit:   auditSvc,
	}
}

type SubmitOutcome struct {
	JobID  uuid.UUID
	Status string
	Cached bool
}

// Submit registers a reconciliation job for the uploaded bytes and launches
// the pipeline in the background. Byte-identical content that already has a
// completed job returns that job instead: no new job, no pipeline run, no
// audit entry.
func (s *Service) Submit(fileBytes []byte, filename, mappingJSON string, actor audit.Actor) (*SubmitOutcome, error) {
	if len(fileBytes) == 0 {
		return nil, ErrEmptyFile
	}

	var mapping *ingest.Mapping
	if mappingJSON != "" {
		mapping = &ingest.Mapping{}
		if err := json.Unmarshal([]byte(mappingJSON), mapping); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadMapping, err)
		}
	}

	fileHash := fmt.Sprintf("%x", md5.Sum(fileBytes))

	cached, err := s.jobs.FindCompletedByHash(fileHash)
	if err != nil {
		return nil, fmt.Errorf("hash lookup: %w", err)
	}
	if cached != nil {
		return &SubmitOutcome{JobID: cached.ID, Status: cached.Status, Cached: true}, nil
	}

	job := &models.UploadJob{
		ID:         uuid.New(),
		Filename:   filename,
		FileHash:   fileHash,
		UploadedBy: actor.Name,
		Status:     models.JobProcessing,
		CreatedAt:  time.Now(),
	}
	if mappingJSON != "" {
		job.Mapping = datatypes.JSON(mappingJSON)
	}
	if err := s.jobs.Create(job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	go s.process(job.ID, fileBytes, mapping, actor)

	return &SubmitOutcome{JobID: job.ID, Status: models.JobProcessing}, nil
}

// process is the pipeline boundary: any error or panic leaves the job in the
// terminal Failed state with an audit record, never stuck in Processing.
func (s *Service) process(jobID uuid.UUID, fileBytes []byte, mapping *ingest.Mapping, actor audit.Actor) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("pipeline panic: %v", r)
			}
		}()
		return s.runPipeline(jobID, fileBytes, mapping, actor)
	}()
	if err != nil {
		log.Printf("reconciliation job %s failed: %v", jobID, err)
		s.audit.Record(audit.Entry{
			Action:  "File Reconciliation",
			Actor:   actor,
			Details: fmt.Sprintf("Job %s Failed. Error: %v", jobID, err),
			Status:  "Failed",
			JobID:   &jobID,
		})
		if err := s.jobs.MarkFailed(jobID); err != nil {
			log.Printf("reconciliation job %s: mark failed: %v", jobID, err)
		}
	}
}

func (s *Service) runPipeline(jobID uuid.UUID, fileBytes []byte, mapping *ingest.Mapping, actor audit.Actor) error {
	_, rows, err := ingest.ParseRows(bytes.NewReader(fileBytes))
	if err != nil {
		return fmt.Errorf("parse file: %w", err)
	}
	records := ingest.Resolve(rows, mapping)
	dupes := matching.DuplicateIDs(records)

	results := make([]models.ReconciliationResult, 0, len(records))
	for i, rec := range records {
		var res models.ReconciliationResult
		if dupes[rec.FileID] {
			res = matching.DuplicateResult(rec)
		} else {
			res, err = s.engine.Classify(rec)
			if err != nil {
				return err
			}
		}
		res.ID = uuid.New()
		res.UploadJobID = jobID
		res.RowNumber = i
		res.CreatedAt = time.Now()
		results = append(results, res)
	}

	if err := s.results.BulkInsert(results); err != nil {
		return fmt.Errorf("persist results: %w", err)
	}
	if err := s.jobs.MarkCompleted(jobID, len(results)); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}

	stats := map[string]int{}
	for _, r := range results {
		stats[r.Status]++
	}
	summary := fmt.Sprintf(
		"Reconciliation Completed. Total: %d | Matched: %d | Partial: %d | Exceptions: %d | Duplicates: %d",
		len(results),
		stats[models.StatusMatched],
		stats[models.StatusPartialMatch],
		stats[models.StatusMismatch]+stats[models.StatusUnmatched],
		stats[models.StatusDuplicate],
	)
	s.audit.Record(audit.Entry{
		Action:  "File Reconciliation",
		Actor:   actor,
		Details: summary,
		JobID:   &jobID,
	})
	return nil
}

type JobStatus struct {
	Status       string
	Results      []models.ReconciliationResult
	TotalRecords int
}

// GetStatus reports a job's state. Results are only exposed once the job is
// Completed; callers poll until then.
func (s *Service) GetStatus(jobID uuid.UUID) (*JobStatus, error) {
	job, err := s.jobs.GetByID(jobID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	if job.Status != models.JobCompleted {
		return &JobStatus{Status: job.Status}, nil
	}

	results, err := s.results.ListByJob(jobID)
	if err != nil {
		return nil, err
	}
	return &JobStatus{
		Status:       job.Status,
		Results:      results,
		TotalRecords: job.TotalRecords,
	}, nil
}

type LatestJob struct {
	JobID        uuid.UUID
	Filename     string
	UploadedBy   string
	Status       string
	Results      []models.ReconciliationResult
	TotalRecords int
}

// LatestCompleted returns the most recent completed job with its results.
func (s *Service) LatestCompleted() (*LatestJob, error) {
	job, err := s.jobs.LatestCompleted()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoCompletedJobs
	}
	if err != nil {
		return nil, err
	}
	results, err := s.results.ListByJob(job.ID)
	if err != nil {
		return nil, err
	}
	return &LatestJob{
		JobID:        job.ID,
		Filename:     job.Filename,
		UploadedBy:   job.UploadedBy,
		Status:       job.Status,
		Results:      results,
		TotalRecords: job.TotalRecords,
	}, nil
}

// Correction carries the fields an operator wants to change. Nil means
// untouched; the engine never recomputes status after a manual correction.
type Correction struct {
	NewAmount *float64 `json:"newAmount"`
	Status    *string  `json:"status"`
	Notes     *string  `json:"notes"`
}

// CorrectResult applies a manual correction, marks the record as corrected
// and records one audit entry against the result's parent job. Corrections
// are last-writer-wins.
func (s *Service) CorrectResult(resultID uuid.UUID, c Correction, actor audit.Actor) (*models.ReconciliationResult, error) {
	res, err := s.results.GetByID(resultID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}

	oldAmount := res.FileAmount
	oldStatus := res.Status

	if c.NewAmount != nil {
		res.FileAmount = *c.NewAmount
	}
	if c.Status != nil {
		res.Status = *c.Status
	}
	if c.Notes != nil {
		res.AdminNotes = *c.Notes
	}
	res.IsManuallyCorrected = true

	if err := s.results.Save(res); err != nil {
		return nil, fmt.Errorf("save correction: %w", err)
	}

	var changes []string
	if c.NewAmount != nil && *c.NewAmount != oldAmount {
		changes = append(changes, fmt.Sprintf("Amount: $%s -> $%s", formatAmount(oldAmount), formatAmount(*c.NewAmount)))
	}
	if c.Status != nil && *c.Status != oldStatus {
		changes = append(changes, fmt.Sprintf("Status: %s -> %s", oldStatus, *c.Status))
	}
	changeLog := "Only Notes updated"
	if len(changes) > 0 {
		changeLog = strings.Join(changes, " | ")
	}

	jobID := res.UploadJobID
	s.audit.Record(audit.Entry{
		Action:  "Manual Correction",
		Actor:   actor,
		Details: fmt.Sprintf("Correction on %s. [ %s ]", res.TransactionID, changeLog),
		JobID:   &jobID,
	})
	return res, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
