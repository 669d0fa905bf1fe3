package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bosco250/myUrutiSaluni-sub007/internal/gateway"
	"github.com/bosco250/myUrutiSaluni-sub007/internal/payment"
	"github.com/bosco250/myUrutiSaluni-sub007/pkg/logger"
)

var (
	payAmount      int64
	payMethod      string
	payPhone       string
	payPurpose     string
	payEntityID    string
	payDescription string
)

var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Run a single payment from the terminal",
	Long:  `Submit one payment against the configured gateway and follow it until it settles. Ctrl-C cancels the session.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runPay(); err != nil {
			fmt.Fprintf(os.Stderr, "payment failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	payCmd.Flags().Int64Var(&payAmount, "amount", 0, "amount in RWF")
	payCmd.Flags().StringVar(&payMethod, "method", string(payment.MethodMTNMoMo), "payment method (mtn_momo, airtel_money, wallet)")
	payCmd.Flags().StringVar(&payPhone, "phone", "", "mobile money phone number")
	payCmd.Flags().StringVar(&payPurpose, "purpose", string(payment.PurposeTopUp), "payment purpose (top_up, service_payment, subscription)")
	payCmd.Flags().StringVar(&payEntityID, "entity-id", "", "entity the payment settles (appointment, subscription)")
	payCmd.Flags().StringVar(&payDescription, "description", "", "free-form payment description")
}

func runPay() error {
	config, err := loadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Level, config.Logging.Format)
	log := logger.LoggerWrapper()

	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:        config.Gateway.BaseURL,
		APIKey:         config.Gateway.APIKey,
		RequestTimeout: config.Gateway.RequestTimeout,
	}, log)

	req := payment.PaymentRequest{
		Amount:      payAmount,
		Method:      payment.Method(payMethod),
		PhoneNumber: payPhone,
		Purpose: payment.Purpose{
			Type:        payment.PurposeType(payPurpose),
			EntityID:    payEntityID,
			Description: payDescription,
		},
	}

	sess := payment.NewSession(req, gatewayClient, payment.SessionConfig{
		Poll: payment.PollConfig{
			Interval:    config.Payments.PollInterval,
			MaxAttempts: config.Payments.PollMaxAttempts,
		},
		Rules: payment.DefaultProviderRules().Merge(config.Payments.Providers),
		Limits: payment.Limits{
			MinTopUpAmount: config.Payments.MinTopUpAmount,
			MaxAmount:      config.Payments.MaxAmount,
		},
		Observer: func(p *payment.Payment) {
			log.Info("payment status", "payment_id", p.ID, "status", p.Status)
		},
		Logger: log,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		if _, ok := <-sigChan; ok {
			log.Info("cancelling payment session", "session_id", sess.ID)
			sess.Cancel()
		}
	}()

	if err := sess.Submit(context.Background()); err != nil {
		return err
	}

	snap := sess.Snapshot()
	if snap.Payment != nil {
		log.Info("payment settled",
			"session_id", snap.ID,
			"payment_id", snap.Payment.ID,
			"status", snap.Payment.Status)
	}
	fmt.Printf("payment %s\n", snap.State)
	return nil
}
