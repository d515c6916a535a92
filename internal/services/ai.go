package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

type AIService struct {
	client *openai.Client
	model  string
}

// MeetingMinutes is the structured answer requested for meeting reports.
type MeetingMinutes struct {
	Summary    string   `json:"summary"`
	Agreements []string `json:"agreements"`
	NextSteps  []string `json:"next_steps"`
}

func NewAIService(apiKey, model string) *AIService {
	if model == "" {
		model = openai.GPT4o
	}
	return &AIService{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// DailySummary writes a short end-of-day status note for the workshop.
func (s *AIService) DailySummary(ctx context.Context, snapshot ProjectSnapshot) (string, error) {
	prompt := fmt.Sprintf(`Eres el asistente de planificación de un taller de fabricación industrial.
Redacta un resumen diario breve (máximo 200 palabras) del estado del proyecto para el jefe de taller.

Datos del proyecto:
%s

Indicaciones:
- Empieza por el avance global y las partes más retrasadas
- Menciona las tareas atrasadas, bloqueadas y sin asignar si las hay
- Termina con las prioridades para mañana
- Escribe en español, en texto plano, sin tablas`, snapshot.Render())

	content, err := s.complete(ctx, prompt, 0.4)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// MeetingMinutes turns free-form meeting notes into structured minutes.
func (s *AIService) MeetingMinutes(ctx context.Context, snapshot ProjectSnapshot, notes string) (*MeetingMinutes, error) {
	prompt := fmt.Sprintf(`Eres el asistente de planificación de un taller de fabricación industrial.
A partir de las notas de la reunión y del estado actual del proyecto, prepara el acta de la reunión.

Estado del proyecto:
%s

Notas de la reunión:
%s

Devuelve un objeto JSON con este formato:
{
  "summary": "resumen de la reunión en uno o dos párrafos",
  "agreements": ["acuerdo 1", "acuerdo 2"],
  "next_steps": ["responsable: acción y fecha", "..."]
}

Notas:
- Si no hay acuerdos o próximos pasos, devuelve listas vacías
- Devuelve solo JSON, sin texto adicional`, snapshot.Render(), notes)

	content, err := s.complete(ctx, prompt, 0.3)
	if err != nil {
		return nil, err
	}

	return ParseMeetingMinutes(content)
}

func (s *AIService) complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("OpenAI client not initialized")
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: temperature,
		},
	)

	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

// ParseMeetingMinutes decodes the model's JSON answer, tolerating a
// surrounding markdown code fence.
func ParseMeetingMinutes(content string) (*MeetingMinutes, error) {
	raw := strings.TrimSpace(content)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	}

	var minutes MeetingMinutes
	if err := json.Unmarshal([]byte(raw), &minutes); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}
	if strings.TrimSpace(minutes.Summary) == "" {
		return nil, fmt.Errorf("AI response has no summary")
	}

	return &minutes, nil
}

// Markdown renders the minutes as the stored report body.
func (m *MeetingMinutes) Markdown() string {
	var b strings.Builder
	b.WriteString("## Resumen\n\n")
	b.WriteString(strings.TrimSpace(m.Summary))
	b.WriteString("\n")

	writeList := func(title string, items []string) {
		b.WriteString("\n## " + title + "\n\n")
		if len(items) == 0 {
			b.WriteString("- (ninguno)\n")
			return
		}
		for _, item := range items {
			b.WriteString("- " + strings.TrimSpace(item) + "\n")
		}
	}
	writeList("Acuerdos", m.Agreements)
	writeList("Próximos pasos", m.NextSteps)

	return b.String()
}
