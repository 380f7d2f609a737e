package docjob

import (
	"fmt"
	"sync"
	"time"

	"agent-service/internal/model"
	"agent-service/pkg/database"
	"agent-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Worker owns document status transitions. Documents are enqueued by handlers
// and chunked off the request path; the status column in the database is the
// durable record, so rows found stuck in processing after a restart are
// simply re-enqueued by RequeueStuck.
type Worker struct {
	log       *zap.Logger
	chunkSize int
	jobs      chan uint
	done      chan struct{}
	closeOnce sync.Once
}

// NewWorker creates a document processing worker
func NewWorker(log *zap.Logger, chunkSize, queueSize int) *Worker {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Worker{
		log:       log,
		chunkSize: chunkSize,
		jobs:      make(chan uint, queueSize),
		done:      make(chan struct{}),
	}
}

// Start launches the processing loop
func (w *Worker) Start() {
	go func() {
		for docID := range w.jobs {
			w.process(docID)
		}
		close(w.done)
	}()
}

// Stop closes the queue and waits for in-flight work to finish
func (w *Worker) Stop() {
	w.closeOnce.Do(func() {
		close(w.jobs)
	})
	<-w.done
}

// Enqueue schedules a document for processing. Returns an error when the
// queue is full rather than blocking the request handler.
func (w *Worker) Enqueue(docID uint) error {
	select {
	case w.jobs <- docID:
		return nil
	default:
		return fmt.Errorf("document queue is full")
	}
}

// enqueueBlocking waits for queue space instead of failing. Only safe while
// the worker is running and guaranteed to drain the queue, which is the case
// at startup before the server accepts requests.
func (w *Worker) enqueueBlocking(docID uint) {
	w.jobs <- docID
}

// RequeueStuck re-enqueues documents left in processing by a previous run.
// Called once at startup before the server accepts requests, so a full queue
// just means waiting for the worker to drain it.
func (w *Worker) RequeueStuck() error {
	var docs []model.Document
	if result := database.GetDB().Where("status = ?", model.DocumentStatusProcessing).Find(&docs); result.Error != nil {
		return result.Error
	}

	for _, doc := range docs {
		w.enqueueBlocking(doc.ID)
		w.log.Info("Re-enqueued stuck document", zap.Uint("document_id", doc.ID))
	}

	return nil
}

// RequeueAged re-enqueues processing documents that have not been touched for
// minAge. Runs on a schedule so documents deferred by a full queue are picked
// up again; minAge keeps documents already sitting in the queue from being
// enqueued a second time.
func (w *Worker) RequeueAged(minAge time.Duration) {
	cutoff := time.Now().Add(-minAge)

	var docs []model.Document
	result := database.GetDB().
		Where("status = ? AND updated_at < ?", model.DocumentStatusProcessing, cutoff).
		Find(&docs)
	if result.Error != nil {
		w.log.Error("Failed to query aged documents", zap.Error(result.Error))
		return
	}

	for _, doc := range docs {
		if err := w.Enqueue(doc.ID); err != nil {
			w.log.Warn("Document queue full, will retry on next tick", zap.Uint("document_id", doc.ID))
			return
		}
		w.log.Info("Re-enqueued aged document", zap.Uint("document_id", doc.ID))
	}
}

// process chunks a single document and flips its status
func (w *Worker) process(docID uint) {
	db := database.GetDB()

	var doc model.Document
	if result := db.First(&doc, docID); result.Error != nil {
		w.log.Error("Document vanished before processing", zap.Uint("document_id", docID), zap.Error(result.Error))
		return
	}

	// The same id can sit in the queue twice when a deferred document is
	// re-enqueued. Only processing documents get chunked.
	if doc.Status != model.DocumentStatusProcessing {
		return
	}

	content := doc.Content
	if content == "" {
		// Metadata-only upload: index the document by its name so the record
		// still becomes searchable.
		content = doc.Name
	}

	chunks := SplitText(content, w.chunkSize)

	err := db.Transaction(func(tx *gorm.DB) error {
		for i, chunk := range chunks {
			row := model.DocumentChunk{
				DocumentID: doc.ID,
				Position:   i,
				Content:    chunk,
			}
			if result := tx.Create(&row); result.Error != nil {
				return result.Error
			}
		}

		updates := map[string]interface{}{
			"status":      model.DocumentStatusReady,
			"chunk_count": len(chunks),
		}
		return tx.Model(&model.Document{}).Where("id = ?", doc.ID).Updates(updates).Error
	})

	if err != nil {
		w.log.Error("Document processing failed", zap.Uint("document_id", doc.ID), zap.Error(err))
		prometheus.DocumentProcessCounter.WithLabelValues(model.DocumentStatusError).Inc()
		result := db.Model(&model.Document{}).Where("id = ?", doc.ID).Updates(map[string]interface{}{
			"status":         model.DocumentStatusError,
			"status_message": err.Error(),
		})
		if result.Error != nil {
			w.log.Error("Failed to record document error status",
				zap.Uint("document_id", doc.ID),
				zap.Error(result.Error))
		}
		return
	}

	prometheus.DocumentProcessCounter.WithLabelValues(model.DocumentStatusReady).Inc()
	w.log.Info("Document processed",
		zap.Uint("document_id", doc.ID),
		zap.Int("chunks", len(chunks)))
}
