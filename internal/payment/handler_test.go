package payment_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/bosco250/myUrutiSaluni-sub007/internal"
	"github.com/bosco250/myUrutiSaluni-sub007/internal/payment"
)

// Mock session manager for testing
type mockSessionManager struct {
	session    *payment.Session
	startErr   error
	getErr     error
	retryErr   error
	cancelErr  error
	destroyErr error

	startCalls int
	lastReq    payment.PaymentRequest
	lastID     string
}

func (m *mockSessionManager) StartPayment(req payment.PaymentRequest) (*payment.Session, error) {
	m.startCalls++
	m.lastReq = req
	if m.startErr != nil {
		return nil, m.startErr
	}
	return m.session, nil
}

func (m *mockSessionManager) Get(sessionID string) (*payment.Session, error) {
	m.lastID = sessionID
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.session, nil
}

func (m *mockSessionManager) Retry(sessionID string) (*payment.Session, error) {
	m.lastID = sessionID
	if m.retryErr != nil {
		return nil, m.retryErr
	}
	return m.session, nil
}

func (m *mockSessionManager) Cancel(sessionID string) (*payment.Session, error) {
	m.lastID = sessionID
	if m.cancelErr != nil {
		return nil, m.cancelErr
	}
	return m.session, nil
}

func (m *mockSessionManager) Destroy(sessionID string) error {
	m.lastID = sessionID
	return m.destroyErr
}

var _ = Describe("PaymentHandler", func() {
	var (
		manager  *mockSessionManager
		router   *chi.Mux
		recorder *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		manager = &mockSessionManager{
			session: payment.NewSession(validTopUpRequest(), newFakeGateway(), payment.SessionConfig{
				Logger: quietLogger(),
			}),
		}
		handler := payment.NewHandler(manager, quietLogger())

		router = chi.NewRouter()
		router.Route("/payments", func(r chi.Router) {
			r.Post("/", handler.StartPayment)
			r.Get("/{sessionID}", handler.GetSession)
			r.Post("/{sessionID}/retry", handler.RetrySession)
			r.Post("/{sessionID}/cancel", handler.CancelSession)
			r.Delete("/{sessionID}", handler.DestroySession)
		})
		recorder = httptest.NewRecorder()
	})

	jsonRequest := func(method, target string, body interface{}) *http.Request {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, target, &buf)
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	Context("StartPayment", func() {
		It("should accept a valid request and return the session view", func() {
			reqBody := map[string]interface{}{
				"amount":       5000,
				"method":       "mtn_momo",
				"phone_number": "0788123456",
				"purpose":      map[string]interface{}{"type": "top_up"},
			}

			router.ServeHTTP(recorder, jsonRequest("POST", "/payments", reqBody))

			Expect(recorder.Code).To(Equal(http.StatusAccepted))
			var view payment.SessionView
			Expect(json.Unmarshal(recorder.Body.Bytes(), &view)).To(Succeed())
			Expect(view.SessionID).To(Equal(manager.session.ID))
			Expect(view.State).To(Equal(string(payment.StateInput)))

			Expect(manager.startCalls).To(Equal(1))
			Expect(manager.lastReq.Amount).To(Equal(int64(5000)))
			Expect(manager.lastReq.Method).To(Equal(payment.MethodMTNMoMo))
		})

		It("should return bad request for a malformed body", func() {
			req := httptest.NewRequest("POST", "/payments", bytes.NewBufferString("not json"))

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			Expect(manager.startCalls).To(BeZero())
		})

		It("should propagate validation rejections", func() {
			manager.startErr = errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed)
			reqBody := map[string]interface{}{
				"amount":  0,
				"method":  "mtn_momo",
				"purpose": map[string]interface{}{"type": "top_up"},
			}

			router.ServeHTTP(recorder, jsonRequest("POST", "/payments", reqBody))

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
			var resp map[string]interface{}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["error"]).ToNot(BeNil())
		})
	})

	Context("GetSession", func() {
		It("should return the session view", func() {
			router.ServeHTTP(recorder, jsonRequest("GET", "/payments/"+manager.session.ID, nil))

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(manager.lastID).To(Equal(manager.session.ID))
		})

		It("should return not found for an unknown session", func() {
			manager.getErr = errors.ErrSessionNotFound

			router.ServeHTTP(recorder, jsonRequest("GET", "/payments/unknown", nil))

			Expect(recorder.Code).To(Equal(http.StatusNotFound))
		})
	})

	Context("RetrySession", func() {
		It("should accept a retry of a failed session", func() {
			router.ServeHTTP(recorder, jsonRequest("POST", "/payments/"+manager.session.ID+"/retry", nil))

			Expect(recorder.Code).To(Equal(http.StatusAccepted))
			Expect(manager.lastID).To(Equal(manager.session.ID))
		})

		It("should return conflict when the session is not retryable", func() {
			manager.retryErr = errors.ErrInvalidSessionState

			router.ServeHTTP(recorder, jsonRequest("POST", "/payments/abc/retry", nil))

			Expect(recorder.Code).To(Equal(http.StatusConflict))
		})
	})

	Context("CancelSession", func() {
		It("should cancel and return the session view", func() {
			router.ServeHTTP(recorder, jsonRequest("POST", "/payments/"+manager.session.ID+"/cancel", nil))

			Expect(recorder.Code).To(Equal(http.StatusOK))
		})

		It("should return not found for an unknown session", func() {
			manager.cancelErr = errors.ErrSessionNotFound

			router.ServeHTTP(recorder, jsonRequest("POST", "/payments/unknown/cancel", nil))

			Expect(recorder.Code).To(Equal(http.StatusNotFound))
		})
	})

	Context("DestroySession", func() {
		It("should return no content on success", func() {
			router.ServeHTTP(recorder, jsonRequest("DELETE", "/payments/"+manager.session.ID, nil))

			Expect(recorder.Code).To(Equal(http.StatusNoContent))
			Expect(manager.lastID).To(Equal(manager.session.ID))
		})

		It("should return not found for an unknown session", func() {
			manager.destroyErr = errors.ErrSessionNotFound

			router.ServeHTTP(recorder, jsonRequest("DELETE", "/payments/unknown", nil))

			Expect(recorder.Code).To(Equal(http.StatusNotFound))
		})
	})
})
