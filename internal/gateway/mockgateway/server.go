// Package mockgateway is an in-memory stand-in for the salon payments
// backend, used in local development and tests. It accepts initiations,
// settles them asynchronously through a worker pool and serves status
// lookups, so the whole session flow can run without network access to the
// real gateway.
package mockgateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/bosco250/myUrutiSaluni-sub007/internal/payment"
)

type settleJob struct {
	PaymentID string
	Amount    int64
}

type worker struct {
	id         int
	workerPool chan chan settleJob
	jobChannel chan settleJob
	logger     *slog.Logger
}

func newWorker(id int, workerPool chan chan settleJob, logger *slog.Logger) *worker {
	return &worker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan settleJob),
		logger:     logger,
	}
}

func (w *worker) start(ctx context.Context, wg *sync.WaitGroup, settle func(settleJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {

			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.logger.Debug("worker settling payment", "worker_id", w.id, "payment_id", job.PaymentID)
				settle(job)
			case <-ctx.Done():
				w.logger.Debug("worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

type Config struct {
	MaxWorkers      int
	JobQueueSize    int
	ProcessingDelay time.Duration
}

// Server keeps every payment it has issued and moves asynchronous ones
// from pending to a settled status after ProcessingDelay. Amounts whose
// last three digits are 999 are declined, so tests and demos can force
// failures deterministically.
type Server struct {
	mu       sync.RWMutex
	payments map[string]*payment.Payment

	jobQueue   chan settleJob
	workerPool chan chan settleJob
	maxWorkers int
	delay      time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
	logger *slog.Logger
}

func NewServer(cfg Config, logger *slog.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	queueSize := cfg.JobQueueSize
	if queueSize <= 0 {
		queueSize = 64
	}
	delay := cfg.ProcessingDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}

	s := &Server{
		payments:   make(map[string]*payment.Payment),
		jobQueue:   make(chan settleJob, queueSize),
		workerPool: make(chan chan settleJob, maxWorkers),
		maxWorkers: maxWorkers,
		delay:      delay,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}

	s.startWorkerPool()
	return s
}

func (s *Server) startWorkerPool() {
	s.once.Do(func() {

		for i := 0; i < s.maxWorkers; i++ {
			w := newWorker(i, s.workerPool, s.logger)
			w.start(s.ctx, &s.wg, s.settle)
		}

		s.wg.Add(1)
		go s.dispatch()

		s.logger.Info("mock gateway worker pool started",
			"max_workers", s.maxWorkers,
			"queue_size", cap(s.jobQueue))
	})
}

func (s *Server) dispatch() {
	defer s.wg.Done()

	for {
		select {
		case job := <-s.jobQueue:

			select {
			case jobChannel := <-s.workerPool:

				select {
				case jobChannel <- job:

				case <-s.ctx.Done():
					return
				}
			case <-s.ctx.Done():
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Server) Shutdown() {
	s.logger.Info("shutting down mock gateway")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("mock gateway shutdown complete")
}

// Handler returns the HTTP surface matching the real payments backend:
// POST /v1/payments, GET /v1/payments/{paymentID}, GET /v1/health.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/payments", s.handleInitiate)
	r.Get("/v1/payments/{paymentID}", s.handleGetStatus)
	r.Get("/v1/health", s.handleHealth)
	return r
}

type initiateRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Method      string `json:"method"`
	PhoneNumber string `json:"phone_number"`
}

type envelope struct {
	Data *payment.Payment `json:"data"`
}

func (s *Server) handleInitiate(w http.ResponseWriter, r *http.Request) {
	var req initiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	now := time.Now().UTC()
	p := &payment.Payment{
		ID:        uuid.NewString(),
		Status:    payment.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	method := payment.Method(req.Method)
	if !method.RequiresConfirmation() {
		// Wallet debits settle inside the initiate call.
		s.settleNow(p, req.Amount)
	}

	s.mu.Lock()
	s.payments[p.ID] = p
	resp := snapshot(p)
	s.mu.Unlock()

	if !resp.Status.Terminal() {
		select {
		case s.jobQueue <- settleJob{PaymentID: p.ID, Amount: req.Amount}:
			s.logger.Info("mock gateway queued settlement",
				"payment_id", p.ID,
				"amount", req.Amount,
				"queue_length", len(s.jobQueue))
		default:
			s.logger.Warn("mock gateway queue full, rejecting payment", "payment_id", p.ID)
			writeError(w, http.StatusServiceUnavailable, "settlement queue full")
			return
		}
	}

	writeJSON(w, http.StatusCreated, envelope{Data: resp})
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")

	s.mu.RLock()
	p, ok := s.payments[paymentID]
	var copied *payment.Payment
	if ok {
		copied = snapshot(p)
	}
	s.mu.RUnlock()

	if !ok {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}

	writeJSON(w, http.StatusOK, envelope{Data: copied})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// settle is run by a worker: mark the payment processing, wait out the
// configured delay, then complete or decline it.
func (s *Server) settle(job settleJob) {
	s.setStatus(job.PaymentID, payment.StatusProcessing, nil)

	select {
	case <-time.After(s.delay):

	case <-s.ctx.Done():
		s.logger.Info("settlement cancelled by shutdown", "payment_id", job.PaymentID)
		return
	}

	if declined(job.Amount) {
		reason := "insufficient funds"
		s.setStatus(job.PaymentID, payment.StatusFailed, &reason)
		s.logger.Info("mock gateway declined payment", "payment_id", job.PaymentID, "reason", reason)
		return
	}

	s.setStatus(job.PaymentID, payment.StatusCompleted, nil)
	s.logger.Info("mock gateway completed payment", "payment_id", job.PaymentID)
}

func (s *Server) settleNow(p *payment.Payment, amount int64) {
	if declined(amount) {
		reason := "insufficient funds"
		p.Status = payment.StatusFailed
		p.FailureReason = &reason
	} else {
		p.Status = payment.StatusCompleted
	}
	p.UpdatedAt = time.Now().UTC()
}

func (s *Server) setStatus(paymentID string, status payment.Status, failureReason *string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[paymentID]
	if !ok || p.Status.Terminal() {
		return
	}
	p.Status = status
	p.FailureReason = failureReason
	p.UpdatedAt = time.Now().UTC()
}

func declined(amount int64) bool {
	return amount%1000 == 999
}

func snapshot(p *payment.Payment) *payment.Payment {
	copied := *p
	return &copied
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
