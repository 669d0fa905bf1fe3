package payment_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/bosco250/myUrutiSaluni-sub007/internal"
	"github.com/bosco250/myUrutiSaluni-sub007/internal/core/events"
	"github.com/bosco250/myUrutiSaluni-sub007/internal/payment"
)

var _ = Describe("SessionManager", func() {
	var (
		gw        *fakeGateway
		bus       *events.EventBus
		manager   *payment.SessionManager
		published chan events.Event
	)

	BeforeEach(func() {
		gw = newFakeGateway()
		bus = events.NewEventBus(quietLogger())
		published = make(chan events.Event, 8)
		for _, eventType := range []string{
			events.EventTypePaymentSucceeded,
			events.EventTypePaymentFailed,
			events.EventTypePaymentCancelled,
		} {
			bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
				published <- event
				return nil
			})
		}

		manager = payment.NewSessionManager(gw, bus, payment.SessionConfig{
			Poll:   payment.PollConfig{Interval: time.Millisecond, MaxAttempts: 5},
			Wait:   instantWait,
			Logger: quietLogger(),
		}, quietLogger())
	})

	Context("StartPayment", func() {
		It("should reject invalid input synchronously without creating a session", func() {
			req := validTopUpRequest()
			req.Amount = 0

			sess, err := manager.StartPayment(req)

			Expect(err).To(HaveOccurred())
			Expect(sess).To(BeNil())
			initiate, _ := gw.calls()
			Expect(initiate).To(BeZero())
		})

		It("should run the session to success in the background and publish the outcome", func() {
			gw.statusScript = []statusResult{{status: payment.StatusCompleted}}

			sess, err := manager.StartPayment(validTopUpRequest())
			Expect(err).ToNot(HaveOccurred())

			Eventually(sess.State).Should(Equal(payment.StateSucceeded))

			var event events.Event
			Eventually(published).Should(Receive(&event))
			Expect(event.EventType()).To(Equal(events.EventTypePaymentSucceeded))
		})

		It("should publish a failure event when the payment is declined", func() {
			gw.statusScript = []statusResult{{status: payment.StatusFailed, reason: "insufficient funds"}}

			sess, err := manager.StartPayment(validTopUpRequest())
			Expect(err).ToNot(HaveOccurred())

			Eventually(sess.State).Should(Equal(payment.StateFailed))

			var event events.Event
			Eventually(published).Should(Receive(&event))
			Expect(event.EventType()).To(Equal(events.EventTypePaymentFailed))
			failed, ok := event.(*events.PaymentFailedEvent)
			Expect(ok).To(BeTrue())
			Expect(failed.SessionID).To(Equal(sess.ID))
		})
	})

	Context("Get", func() {
		It("should return registered sessions and reject unknown IDs", func() {
			gw.statusScript = []statusResult{{status: payment.StatusCompleted}}
			sess, err := manager.StartPayment(validTopUpRequest())
			Expect(err).ToNot(HaveOccurred())

			found, err := manager.Get(sess.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(found).To(BeIdenticalTo(sess))

			_, err = manager.Get("missing")
			Expect(err).To(MatchError(errors.ErrSessionNotFound))
		})
	})

	Context("Retry", func() {
		It("should resubmit a failed session and publish the new outcome", func() {
			gw.statusScript = []statusResult{
				{status: payment.StatusFailed, reason: "insufficient funds"},
				{status: payment.StatusCompleted},
			}
			sess, err := manager.StartPayment(validTopUpRequest())
			Expect(err).ToNot(HaveOccurred())
			Eventually(sess.State).Should(Equal(payment.StateFailed))
			Eventually(published).Should(Receive())

			_, err = manager.Retry(sess.ID)
			Expect(err).ToNot(HaveOccurred())

			Eventually(sess.State).Should(Equal(payment.StateSucceeded))
			initiate, _ := gw.calls()
			Expect(initiate).To(Equal(2))

			var event events.Event
			Eventually(published).Should(Receive(&event))
			Expect(event.EventType()).To(Equal(events.EventTypePaymentSucceeded))
		})

		It("should reject retrying a session that has not failed", func() {
			waitGate := make(chan struct{})
			manager = payment.NewSessionManager(gw, bus, payment.SessionConfig{
				Poll:   payment.PollConfig{Interval: time.Millisecond, MaxAttempts: 5},
				Logger: quietLogger(),
				Wait: func(ctx context.Context, d time.Duration) error {
					select {
					case <-waitGate:
						return nil
					case <-ctx.Done():
						return ctx.Err()
					}
				},
			}, quietLogger())

			sess, err := manager.StartPayment(validTopUpRequest())
			Expect(err).ToNot(HaveOccurred())

			_, err = manager.Retry(sess.ID)
			Expect(err).To(MatchError(errors.ErrInvalidSessionState))

			sess.Cancel()
		})
	})

	Context("Cancel and Destroy", func() {
		It("should cancel a processing session and publish the cancellation", func() {
			manager = payment.NewSessionManager(gw, bus, payment.SessionConfig{
				Poll:   payment.PollConfig{Interval: time.Millisecond, MaxAttempts: 5},
				Logger: quietLogger(),
				Wait: func(ctx context.Context, d time.Duration) error {
					<-ctx.Done()
					return ctx.Err()
				},
			}, quietLogger())

			sess, err := manager.StartPayment(validTopUpRequest())
			Expect(err).ToNot(HaveOccurred())

			cancelled, err := manager.Cancel(sess.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(cancelled.State()).To(Equal(payment.StateCancelled))

			var event events.Event
			Eventually(published).Should(Receive(&event))
			Expect(event.EventType()).To(Equal(events.EventTypePaymentCancelled))
		})

		It("should forget destroyed sessions", func() {
			gw.statusScript = []statusResult{{status: payment.StatusCompleted}}
			sess, err := manager.StartPayment(validTopUpRequest())
			Expect(err).ToNot(HaveOccurred())
			Eventually(sess.State).Should(Equal(payment.StateSucceeded))

			Expect(manager.Destroy(sess.ID)).To(Succeed())

			_, err = manager.Get(sess.ID)
			Expect(err).To(MatchError(errors.ErrSessionNotFound))
		})
	})
})
