package glvrd_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/JohnPlummer/glvrd-client/glvrd"
)

var _ = Describe("Validation", func() {
	limits := glvrd.ServiceLimits{MaxTextLength: 10, MaxHintsCount: 2}

	Describe("ValidateText", func() {
		It("should accept text within the limit", func() {
			result := glvrd.ValidateText("Текст", limits)
			Expect(result.Valid).To(BeTrue())
			Expect(result.Issues).To(BeEmpty())
		})

		It("should count characters, not bytes", func() {
			Expect(glvrd.ValidateText(strings.Repeat("ж", 10), limits).Valid).To(BeTrue())
		})

		It("should count UTF-16 code units like the service", func() {
			// each emoji is a surrogate pair
			result := glvrd.ValidateText(strings.Repeat("😀", 6), limits)
			Expect(result.Valid).To(BeFalse())
			Expect(result.Issues[0]).To(ContainSubstring("12 chars"))
		})

		It("should flag text over the limit", func() {
			result := glvrd.ValidateText(strings.Repeat("ж", 11), limits)
			Expect(result.Valid).To(BeFalse())
			Expect(result.Issues[0]).To(ContainSubstring("text too long (11 chars, maximum 10)"))
		})

		It("should flag blank text", func() {
			Expect(glvrd.ValidateText("  ", limits).Valid).To(BeFalse())
		})

		It("should skip the length check when limits are unknown", func() {
			Expect(glvrd.ValidateText(strings.Repeat("ж", 500), glvrd.ServiceLimits{}).Valid).To(BeTrue())
		})
	})

	Describe("ValidateHintIDs", func() {
		It("should accept a batch within the limit", func() {
			Expect(glvrd.ValidateHintIDs([]string{"a", "b"}, limits).Valid).To(BeTrue())
		})

		It("should flag empty and oversized batches", func() {
			Expect(glvrd.ValidateHintIDs(nil, limits).Valid).To(BeFalse())
			Expect(glvrd.ValidateHintIDs([]string{"a", ""}, limits).Issues).To(ContainElement(ContainSubstring("index 1 is empty")))

			result := glvrd.ValidateHintIDs([]string{"a", "b", "c"}, limits)
			Expect(result.Valid).To(BeFalse())
			Expect(result.Suggestions).To(ContainElement("request at most 2 hints at once"))
		})
	})
})
