package models

// AI-generated learning content shapes. These mirror what the client
// renders; the server validates them before caching or returning.

type MathQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	VisualAid     string   `json:"visual_aid,omitempty"`
}

type ReadingContent struct {
	Text      string     `json:"text"`
	Syllables [][]string `json:"syllables"`
}

type GenerateFeedbackRequest struct {
	ActivityType   string `json:"activity_type"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
}

type GenerateContentRequest struct {
	ContentType string `json:"content_type"` // "math" | "reading"
	Difficulty  int    `json:"difficulty"`   // 1-5
}

type GenerateSummaryRequest struct {
	Timeframe string `json:"timeframe"` // "week" | "month"
}
