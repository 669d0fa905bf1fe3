package payment_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bosco250/myUrutiSaluni-sub007/internal/payment"
)

var _ = Describe("NormalizePhoneNumber", func() {
	It("should strip spaces, dashes and parentheses", func() {
		Expect(payment.NormalizePhoneNumber("078 812-34(56)")).To(Equal("788123456"))
	})

	It("should drop a single leading zero from ten-digit numbers", func() {
		Expect(payment.NormalizePhoneNumber("0788123456")).To(Equal("788123456"))
	})

	It("should leave nine-digit numbers untouched", func() {
		Expect(payment.NormalizePhoneNumber("788123456")).To(Equal("788123456"))
	})

	It("should not trim international numbers down to local form", func() {
		// 12 digits after stripping; normalization never guesses a country code
		Expect(payment.NormalizePhoneNumber("+250788123456")).To(Equal("250788123456"))
	})
})

var _ = Describe("ValidPhoneNumber", func() {
	var rules payment.ProviderRules

	BeforeEach(func() {
		rules = payment.DefaultProviderRules()
	})

	Context("with an Airtel number", func() {
		It("should accept the nine-digit local form", func() {
			Expect(payment.ValidPhoneNumber(rules, payment.MethodAirtelMoney, "728123456")).To(BeTrue())
		})

		It("should accept the ten-digit form with leading zero", func() {
			Expect(payment.ValidPhoneNumber(rules, payment.MethodAirtelMoney, "0728123456")).To(BeTrue())
		})

		It("should accept numbers with formatting characters", func() {
			Expect(payment.ValidPhoneNumber(rules, payment.MethodAirtelMoney, "072 812-3456")).To(BeTrue())
		})

		It("should reject a prefix belonging to no provider", func() {
			Expect(payment.ValidPhoneNumber(rules, payment.MethodAirtelMoney, "712345678")).To(BeFalse())
		})

		It("should reject numbers that are too short", func() {
			Expect(payment.ValidPhoneNumber(rules, payment.MethodAirtelMoney, "72812345")).To(BeFalse())
		})

		It("should reject an MTN number", func() {
			Expect(payment.ValidPhoneNumber(rules, payment.MethodAirtelMoney, "788123456")).To(BeFalse())
		})
	})

	Context("with an MTN number", func() {
		It("should accept 78 and 79 prefixes", func() {
			Expect(payment.ValidPhoneNumber(rules, payment.MethodMTNMoMo, "781234567")).To(BeTrue())
			Expect(payment.ValidPhoneNumber(rules, payment.MethodMTNMoMo, "0791234567")).To(BeTrue())
		})

		It("should reject an Airtel number", func() {
			Expect(payment.ValidPhoneNumber(rules, payment.MethodMTNMoMo, "728123456")).To(BeFalse())
		})
	})

	Context("with a method that has no prefix rules", func() {
		It("should reject every number", func() {
			Expect(payment.ValidPhoneNumber(rules, payment.MethodWallet, "788123456")).To(BeFalse())
		})
	})

	Context("with config-supplied overrides", func() {
		It("should use the overlay prefixes for the overridden method", func() {
			merged := rules.Merge(map[string][]string{"airtel_money": {"75"}})
			Expect(payment.ValidPhoneNumber(merged, payment.MethodAirtelMoney, "758123456")).To(BeTrue())
			Expect(payment.ValidPhoneNumber(merged, payment.MethodAirtelMoney, "728123456")).To(BeFalse())
		})

		It("should keep defaults for methods absent from the overlay", func() {
			merged := rules.Merge(map[string][]string{"airtel_money": {"75"}})
			Expect(payment.ValidPhoneNumber(merged, payment.MethodMTNMoMo, "788123456")).To(BeTrue())
		})
	})
})
