package suggest_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sashabaranov/go-openai"

	"github.com/JohnPlummer/glvrd-client/glvrd"
	"github.com/JohnPlummer/glvrd-client/glvrd/suggest"
)

// mockAPIClient records requests and returns a canned completion
type mockAPIClient struct {
	requests []openai.ChatCompletionRequest
	content  string
	err      error
}

func (m *mockAPIClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return openai.ChatCompletionResponse{}, m.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: m.content}},
		},
	}, nil
}

var _ = Describe("Suggester", func() {
	var (
		ctx    context.Context
		mock   *mockAPIClient
		result *glvrd.ProofreadResult
	)

	BeforeEach(func() {
		ctx = context.Background()
		mock = &mockAPIClient{}
		result = &glvrd.ProofreadResult{
			Status: "ok",
			Text:   "Редактор суть писатель.",
			Fragments: []*glvrd.Fragment{
				{Start: 0, End: 8, HintID: "h1", Hint: &glvrd.Hint{Name: "Канцелярит", Description: "Упростите"}},
				{Start: 9, End: 13, HintID: "h2", Hint: &glvrd.Hint{Name: "Книжное слово", Description: "Уберите или замените"}},
			},
		}
	})

	It("should require an API key", func() {
		_, err := suggest.New(suggest.Config{})
		Expect(err).To(MatchError(suggest.ErrMissingAPIKey))
	})

	It("should map suggestions back to fragments", func() {
		mock.content = `{"suggestions":[{"index":2,"rewrite":"—","reason":"связка"},{"index":1,"rewrite":"Редактор","reason":"ок"}]}`
		s, err := suggest.NewWithClient(mock)
		Expect(err).ToNot(HaveOccurred())

		suggestions, err := s.Suggest(ctx, result)
		Expect(err).ToNot(HaveOccurred())
		Expect(suggestions).To(HaveLen(2))
		Expect(suggestions[0].Fragment).To(BeIdenticalTo(result.Fragments[0]))
		Expect(suggestions[0].Original).To(Equal("Редактор"))
		Expect(suggestions[1].Original).To(Equal("суть"))
		Expect(suggestions[1].Rewrite).To(Equal("—"))
	})

	It("should send the text, fragments and hints in the prompt", func() {
		mock.content = `{"suggestions":[]}`
		s, err := suggest.NewWithClient(mock, suggest.WithModel(openai.GPT4o))
		Expect(err).ToNot(HaveOccurred())

		_, err = s.Suggest(ctx, result)
		Expect(err).ToNot(HaveOccurred())

		req := mock.requests[0]
		Expect(req.Model).To(Equal(openai.GPT4o))
		Expect(req.ResponseFormat.Type).To(Equal(openai.ChatCompletionResponseFormatTypeJSONSchema))
		Expect(req.Messages[1].Content).To(ContainSubstring("Редактор суть писатель."))
		Expect(req.Messages[1].Content).To(ContainSubstring(`2. "суть" - Книжное слово: Уберите или замените`))
	})

	It("should skip fragments the model left out", func() {
		mock.content = `{"suggestions":[{"index":1,"rewrite":"Автор","reason":"проще"}]}`
		s, err := suggest.NewWithClient(mock)
		Expect(err).ToNot(HaveOccurred())

		suggestions, err := s.Suggest(ctx, result)
		Expect(err).ToNot(HaveOccurred())
		Expect(suggestions).To(HaveLen(1))
		Expect(suggestions[0].Rewrite).To(Equal("Автор"))
	})

	It("should not call the model without fragments", func() {
		s, err := suggest.NewWithClient(mock)
		Expect(err).ToNot(HaveOccurred())

		suggestions, err := s.Suggest(ctx, &glvrd.ProofreadResult{Text: "Чисто."})
		Expect(err).ToNot(HaveOccurred())
		Expect(suggestions).To(BeEmpty())
		Expect(mock.requests).To(BeEmpty())
	})

	It("should propagate API and parsing errors", func() {
		mock.err = errors.New("rate limited")
		s, err := suggest.NewWithClient(mock)
		Expect(err).ToNot(HaveOccurred())

		_, err = s.Suggest(ctx, result)
		Expect(err).To(MatchError(ContainSubstring("rate limited")))

		mock.err = nil
		mock.content = "not json"
		_, err = s.Suggest(ctx, result)
		Expect(err).To(MatchError(ContainSubstring("failed to unmarshal")))
	})

	It("should reject a nil result", func() {
		s, err := suggest.NewWithClient(mock)
		Expect(err).ToNot(HaveOccurred())
		_, err = s.Suggest(ctx, nil)
		Expect(err).To(MatchError(glvrd.ErrNilResult))
	})
})
