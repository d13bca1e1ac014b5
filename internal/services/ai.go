package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"neurospark-backend/internal/models"
)

// Static fallbacks used whenever Gemini is unavailable. An AI failure must
// never break the learning flow; the child always gets a message.
const (
	fallbackFeedback = "You're doing great! Keep up the amazing work!"
	emptyFeedback    = "Great job! Keep learning!"
	fallbackSummary  = "The learner is making steady progress and showing great effort!"
)

type GeminiService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	rateChan chan struct{} // Token bucket
}

func NewGeminiService(apiKey string, concurrentReqs int) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.7)
	model.SetTopP(0.95)

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:   client,
		model:    model,
		rateChan: rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(30 * time.Second):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// GenerateFeedback returns a short encouraging message for a finished
// session. Never returns an error: any failure falls back to a static
// message.
func (s *GeminiService) GenerateFeedback(ctx context.Context, activityType string, score, totalQuestions int) string {
	if err := s.acquireRate(ctx); err != nil {
		return fallbackFeedback
	}
	defer s.releaseRate()

	prompt := buildFeedbackPrompt(activityType, score, totalQuestions)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Printf("Gemini feedback error: %v", err)
		return fallbackFeedback
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return emptyFeedback
	}
	return text
}

// GenerateContent produces a learning item for the given type and
// difficulty. Unlike feedback, callers need the structured payload, so a
// Gemini failure is returned as an error.
func (s *GeminiService) GenerateContent(ctx context.Context, contentType string, difficulty int) (any, error) {
	if err := s.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer s.releaseRate()

	prompt, err := buildContentPrompt(contentType, difficulty)
	if err != nil {
		return nil, err
	}

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	rawText := stripCodeFence(extractText(resp))

	switch contentType {
	case "math":
		var q models.MathQuestion
		if err := json.Unmarshal([]byte(rawText), &q); err != nil || q.Question == "" || len(q.Options) == 0 {
			return nil, fmt.Errorf("Gemini returned an unusable math question")
		}
		return q, nil
	case "reading":
		var r models.ReadingContent
		if err := json.Unmarshal([]byte(rawText), &r); err != nil || r.Text == "" {
			return nil, fmt.Errorf("Gemini returned unusable reading content")
		}
		return r, nil
	}

	return nil, fmt.Errorf("unsupported content type %q", contentType)
}

// GenerateProgressSummary writes a short summary of recent activity for
// parents and teachers. Falls back to a static message on any failure.
func (s *GeminiService) GenerateProgressSummary(ctx context.Context, activities []models.Activity, timeframe string) string {
	if err := s.acquireRate(ctx); err != nil {
		return fallbackSummary
	}
	defer s.releaseRate()

	prompt := buildSummaryPrompt(activities, timeframe)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Printf("Gemini summary error: %v", err)
		return fallbackSummary
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return fallbackSummary
	}
	return text
}

// Helper functions

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func buildFeedbackPrompt(activityType string, score, totalQuestions int) string {
	var b strings.Builder

	b.WriteString("You are a supportive, encouraging learning assistant for neurodiverse children with learning disabilities like dyslexia and dyscalculia.\n\n")
	b.WriteString(fmt.Sprintf("Generate a short, positive, age-appropriate message (1-2 sentences) for a child who just completed a %s activity and got %d out of %d correct.\n\n", activityType, score, totalQuestions))
	b.WriteString(`Rules:
- Be warm, encouraging, and positive
- Keep it simple and easy to understand
- Focus on effort and progress, not just results
- Use child-friendly language
- Never make the child feel bad
- Respond with only the message, no extra formatting

Examples:
- "Great job! You're getting better every day!"
- "Wonderful work! Keep practicing and you'll be amazing!"
- "You're doing so well! I'm proud of your effort!"`)

	return b.String()
}

func buildContentPrompt(contentType string, difficulty int) (string, error) {
	switch contentType {
	case "math":
		return fmt.Sprintf(`Generate a simple math question suitable for a child with dyscalculia at difficulty level %d (1-5 scale).

Return ONLY a valid JSON object in this exact format, no markdown, no backticks:
{"question": "What is 5 + 3?", "options": ["6", "7", "8", "9"], "correct_answer": "8", "visual_aid": "5"}

For difficulty 1-2: Use numbers 1-10, addition/subtraction
For difficulty 3-4: Use numbers up to 20, simple multiplication
For difficulty 5: Use numbers up to 50, mixed operations

Keep it simple and supportive for children with learning disabilities.`, difficulty), nil
	case "reading":
		return fmt.Sprintf(`Generate a short, simple sentence for a child with dyslexia to practice reading. Difficulty level %d (1-5).

Return ONLY a valid JSON object, no markdown, no backticks:
{"text": "The cat sat on the mat.", "syllables": [["The"], ["cat"], ["sat"], ["on"], ["the"], ["mat."]]}

Use common, simple words appropriate for the difficulty level.`, difficulty), nil
	}

	return "", fmt.Errorf("unsupported content type %q", contentType)
}

func buildSummaryPrompt(activities []models.Activity, timeframe string) string {
	if len(activities) > 10 {
		activities = activities[:10]
	}
	activitiesJSON, _ := json.MarshalIndent(activities, "", "  ")

	var b strings.Builder
	b.WriteString("You are a supportive educator creating a progress summary for parents/teachers about a neurodiverse learner.\n\n")
	b.WriteString(fmt.Sprintf("Based on these activities from the past %s:\n%s\n\n", timeframe, activitiesJSON))
	b.WriteString(`Generate a warm, positive 2-3 sentence summary highlighting:
- Progress and improvements
- Areas of strength
- Encouraging next steps

Keep it professional yet warm and supportive. Focus on growth mindset.`)

	return b.String()
}
