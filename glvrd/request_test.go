package glvrd_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/JohnPlummer/glvrd-client/glvrd"
)

var _ = Describe("Form encoding", func() {
	It("should join pairs in the given order", func() {
		Expect(glvrd.EncodeForm("text", "a", "app", "b")).To(Equal("text=a&app=b"))
		Expect(glvrd.EncodeForm()).To(BeEmpty())
	})

	It("should percent-encode each value as a whole", func() {
		Expect(glvrd.EncodeForm("text", "a b&c=d")).To(Equal("text=a%20b%26c%3Dd"))
		Expect(glvrd.EncodeForm("ids", "1,2,3")).To(Equal("ids=1%2C2%2C3"))
	})

	It("should encode non-ASCII text as UTF-8 bytes", func() {
		Expect(glvrd.EscapeComponent("Ё")).To(Equal("%D0%81"))
		Expect(glvrd.EscapeComponent("«")).To(Equal("%C2%AB"))
	})

	It("should leave unreserved characters alone", func() {
		Expect(glvrd.EscapeComponent("AZaz09-_.!~*'()")).To(Equal("AZaz09-_.!~*'()"))
		Expect(glvrd.EscapeComponent("+/?#")).To(Equal("%2B%2F%3F%23"))
	})
})
