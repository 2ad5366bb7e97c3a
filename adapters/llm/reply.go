package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/postureperfect/avatar-server/domain/entities"
)

// BuildPrompt renders the trainer persona prompt. The model is instructed to
// answer with nothing but a JSON object so the response can be parsed
// strictly.
func BuildPrompt(userMessage string, animations []string) string {
	return fmt.Sprintf(`You are an AI designed to simulate a virtual fitness trainer. Respond energetically and motivationally to the following user message.
Format your response as a JSON object with the following keys: "text" and "animation". Do not include any emoji in your response.
The "text" key should contain the response message, and the "animation" key should suggest the most appropriate animation from the following list:
%s.

Example format:
{
  "text": "Your response message here",
  "animation": "SuggestedAnimation"
}

User: "%s"
Trainer:`, strings.Join(animations, ", "), userMessage)
}

// replyPayload is the shape the model is asked to produce.
type replyPayload struct {
	Text      string `json:"text"`
	Animation string `json:"animation"`
}

// ParseReply parses a model response as strict JSON. Missing or empty output
// and invalid JSON fail with a GenerationError. A well-formed object with a
// missing text or an animation outside the vocabulary is repaired with
// defaults instead of failing.
func ParseReply(raw string, animations []string) (entities.GeneratedReply, error) {
	if raw == "" {
		return entities.GeneratedReply{}, &entities.GenerationError{Err: fmt.Errorf("model returned empty output")}
	}

	var payload replyPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return entities.GeneratedReply{}, &entities.GenerationError{Err: fmt.Errorf("model output is not valid JSON: %w", err)}
	}

	text := payload.Text
	if text == "" {
		text = entities.DefaultReplyText
	}

	animation := payload.Animation
	if !containsAnimation(animations, animation) {
		animation = entities.DefaultAnimation
	}

	return entities.GeneratedReply{
		Text:      text,
		Animation: animation,
	}, nil
}

func containsAnimation(animations []string, candidate string) bool {
	for _, a := range animations {
		if a == candidate {
			return true
		}
	}
	return false
}
