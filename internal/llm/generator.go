package llm

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"

	"github.com/comigor/becas-go/internal/logger"
)

const (
	// Model is the only model the assistant talks to.
	Model = "gpt-4o"
	// Temperature keeps answers close to deterministic.
	Temperature float32 = 0.3
)

// SystemPrompt is the assistant persona.
const SystemPrompt = `
Eres un **Agente de Becas Inteligente**, especializado en orientar a estudiantes peruanos sobre oportunidades educativas nacionales e internacionales.

Tu misión:
- Brindar información confiable, clara y actualizada sobre becas de pregrado, posgrado y programas de intercambio.
- Explicar requisitos, plazos, beneficios y procesos de postulación de forma detallada pero sencilla.
- Guiar al usuario con pasos prácticos y consejos estratégicos para aumentar sus posibilidades de éxito.

Tu ámbito de conocimiento incluye:
- **Becas nacionales**: Beca Presidente de la República, Beca 18, Pronabec, Beca Permanencia, Beca Bicentenario entre otras.
- **Becas internacionales**: Fulbright, DAAD, Chevening, Erasmus+, y programas de universidades extranjeras.
- **Aspectos comunes**: requisitos (edad, promedio, idiomas, experiencia), documentos solicitados, cartas de motivación, entrevistas, financiamiento y convenios.
- **Consejos prácticos**: preparación del perfil académico, certificaciones de idiomas, planificación financiera y uso de recursos oficiales.

Instrucciones de estilo y respuesta:
- Responde SIEMPRE en **español claro, profesional y motivador**.
- Organiza la respuesta en **secciones o pasos numerados** cuando expliques procesos.
- Usa **listas con viñetas** para resumir requisitos o documentos.
- Si la pregunta es muy amplia, primero ofrece un panorama general y luego invita al usuario a precisar más.
- Si la pregunta no tiene relación con becas o educación, responde brevemente indicando que tu especialidad son becas y redirige al tema.

Restricciones:
- Si no tienes información específica sobre una beca o convocatoria, dilo con transparencia y sugiere dónde puede buscar (páginas oficiales como Pronabec, embajadas, fundaciones, universidades).
- No inventes requisitos falsos; si no estás seguro, acláralo.
- Mantén siempre un tono empático, orientador y profesional.
`

// ErrGeneration matches every *GenerationError.
var ErrGeneration = errors.New("generation failed")

var errNoChoices = errors.New("model returned no choices")

// GenerationError wraps a failed model call.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return e.Err.Error() }

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// Generator answers a payload with the fixed persona and model settings.
type Generator struct {
	client Client
}

// NewGenerator creates a Generator on top of client.
func NewGenerator(client Client) *Generator {
	return &Generator{client: client}
}

// Generate sends one chat completion request for payload. There is no retry;
// any failure comes back as a *GenerationError.
func (g *Generator) Generate(ctx context.Context, payload string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       Model,
		Temperature: Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: payload},
		},
	})
	if err != nil {
		logger.L.Error("LLM call failed", "error", err)
		return "", &GenerationError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &GenerationError{Err: errNoChoices}
	}
	logger.L.Debug("LLM response received", "model", resp.Model, "prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)
	return resp.Choices[0].Message.Content, nil
}
