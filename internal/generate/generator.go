package generate

import "context"

// AnswerGenerator produces the answer stored alongside a chat message.
// Implementations must return a non-empty answer or an error.
type AnswerGenerator interface {
	Generate(ctx context.Context, message string) (string, error)
}

// PlaceholderAnswer is the fixed reply assigned when no real provider is
// configured.
const PlaceholderAnswer = "To add icons that indicate whether a message is from the user or from GPT, " +
	"you can use icon libraries like FontAwesome or Material Icons. For this example, " +
	"I’ll use FontAwesome icons, but you can easily swap in another icon set if you prefer."

// StaticGenerator answers every message with PlaceholderAnswer.
type StaticGenerator struct{}

func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

func (g *StaticGenerator) Generate(ctx context.Context, message string) (string, error) {
	return PlaceholderAnswer, nil
}
