package glvrd_test

import (
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/JohnPlummer/glvrd-client/glvrd"
)

const linksText = "Можно ли представить современный мир без ссылок? Едва ли. И до недавнего времени сервис «Главред» никак не отвечал на вызовы времени, связанные с необходимостью создания гипертекстовых связей в Глобальной паутине."

func resultWith(text string, hints ...*glvrd.Hint) *glvrd.ProofreadResult {
	res := &glvrd.ProofreadResult{Status: "ok", Text: text}
	for i, h := range hints {
		res.Fragments = append(res.Fragments, &glvrd.Fragment{Start: i, End: i + 1, HintID: "id", Hint: h})
	}
	return res
}

var _ = Describe("Score", func() {
	Describe("CountLetters", func() {
		It("should count every word with its trailing separators as one unit", func() {
			Expect(glvrd.CountLetters("Редактор суть писатель.")).To(Equal(3))
			Expect(glvrd.CountLetters("Одной из важных.")).To(Equal(3))
			Expect(glvrd.CountLetters(linksText)).To(Equal(30))
		})

		It("should keep leading separators and letters outside the word class", func() {
			Expect(glvrd.CountLetters("«Главред»")).To(Equal(2))
			Expect(glvrd.CountLetters("ёж")).To(Equal(2))
			Expect(glvrd.CountLetters("кто-то здесь")).To(Equal(2))
		})

		It("should count nothing for blank text", func() {
			Expect(glvrd.CountLetters("")).To(Equal(0))
			Expect(glvrd.CountLetters(" \t\n ")).To(Equal(0))
		})
	})

	Describe("ComputeScore", func() {
		It("should be zero for empty or whitespace-only text", func() {
			Expect(glvrd.ComputeScore(resultWith(""))).To(Equal(glvrd.Score(0)))
			Expect(glvrd.ComputeScore(resultWith("   \n"))).To(Equal(glvrd.Score(0)))
		})

		It("should give the maximum to a text without fragments", func() {
			Expect(glvrd.ComputeScore(resultWith("Редактор пишет ясно."))).To(Equal(glvrd.Score(10)))
		})

		It("should score the links paragraph at 4.5", func() {
			res := resultWith(linksText, nil, nil, nil, nil, nil, nil, nil)
			Expect(glvrd.ComputeScore(res)).To(Equal(glvrd.Score(4.5)))
		})

		It("should subtract hint penalties", func() {
			res := resultWith("Одной из важных.", &glvrd.Hint{Name: "Неопределенность"}, &glvrd.Hint{Penalty: 2})
			Expect(glvrd.ComputeScore(res)).To(Equal(glvrd.Score(0.1)))
		})

		It("should clamp at zero", func() {
			res := resultWith("Одной из важных.", &glvrd.Hint{Penalty: 50})
			Expect(glvrd.ComputeScore(res)).To(Equal(glvrd.Score(0)))

			crowded := resultWith("Слово.", nil, nil, nil)
			Expect(glvrd.ComputeScore(crowded)).To(Equal(glvrd.Score(0)))
		})

		It("should count fragments without hints but add no penalty for them", func() {
			withHint := resultWith("Одной из важных.", &glvrd.Hint{Penalty: 0}, nil)
			Expect(glvrd.ComputeScore(withHint)).To(Equal(glvrd.Score(0.3)))
		})

		It("should aggregate several results", func() {
			a := resultWith(strings.Repeat("слово ", 500))
			b := resultWith(strings.Repeat("слово ", 500), nil)
			Expect(glvrd.ComputeScore(a, b)).To(Equal(glvrd.Score(9.9)))
			Expect(glvrd.ComputeScore(a, nil)).To(Equal(glvrd.Score(10)))
		})

		It("should not modify the results", func() {
			res := resultWith("Одной из важных.", &glvrd.Hint{Penalty: 1})
			glvrd.ComputeScore(res)
			Expect(res.Score).To(BeNil())
			Expect(res.Fragments).To(HaveLen(1))
		})
	})

	Describe("rounding", func() {
		// 1000 words and one fragment give a raw score of 99
		thousand := strings.Repeat("слово ", 1000)

		It("should render multiples of ten as whole numbers", func() {
			score := glvrd.ComputeScore(resultWith(thousand, &glvrd.Hint{Penalty: 19}))
			Expect(score).To(Equal(glvrd.Score(8)))
			Expect(score.String()).To(Equal("8"))
		})

		It("should render other values with one decimal", func() {
			score := glvrd.ComputeScore(resultWith(thousand, &glvrd.Hint{Penalty: 15}))
			Expect(score).To(Equal(glvrd.Score(8.4)))
			Expect(score.String()).To(Equal("8.4"))
		})

		It("should round from the exact binary value", func() {
			// 84.5 / 10 is stored just below 8.45
			Expect(glvrd.ComputeScore(resultWith(thousand, &glvrd.Hint{Penalty: 14.5}))).To(Equal(glvrd.Score(8.4)))
		})

		It("should round exact ties up", func() {
			// 82.5 / 10 is exactly 8.25
			Expect(glvrd.ComputeScore(resultWith(thousand, &glvrd.Hint{Penalty: 16.5}))).To(Equal(glvrd.Score(8.3)))
		})

		It("should render zero as 0", func() {
			Expect(glvrd.Score(0).String()).To(Equal("0"))
		})
	})

	Describe("through the client", func() {
		It("should score a raw proofreading result of the links paragraph", func() {
			transport := newFakeTransport()
			transport.Handle("session", sessionHandler())
			transport.Handle("proofread", proofreadHandler("a", "b", "c", "d", "e", "f", "g"))
			client, err := glvrd.New(
				glvrd.NewDefaultConfig("Test App").WithBaseURL("https://api.test/v2/"),
				glvrd.WithTransport(transport),
				glvrd.WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
			)
			Expect(err).ToNot(HaveOccurred())

			res, err := client.Proofread(context.Background(), linksText, glvrd.SkipDecoration())
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Fragments[0].Hint).To(BeNil())
			Expect(res.Score).To(BeNil())
			Expect(glvrd.ComputeScore(res)).To(Equal(glvrd.Score(4.5)))
		})
	})
})
