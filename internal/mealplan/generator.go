package mealplan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"shopping-consolidator/internal/logger"
)

// Generator produces a meal plan from a free-text request.
type Generator interface {
	Generate(ctx context.Context, request string) (*MealPlan, error)
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// GeminiClient is a client for the Google Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a new Gemini API client that answers in JSON.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	return &GeminiClient{client: client, model: model}, nil
}

// GenerateContent sends a prompt to the Gemini model and returns the generated text.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("generated content is not text")
	}
	return sb.String(), nil
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// LLMGenerator asks a text model for a plan in the payload shape Decode understands.
type LLMGenerator struct {
	llm TextGenerator
	log *logger.Logger
}

// NewLLMGenerator wraps llm as a Generator.
func NewLLMGenerator(llm TextGenerator, log *logger.Logger) *LLMGenerator {
	if log == nil {
		log = logger.Nop()
	}
	return &LLMGenerator{llm: llm, log: log.With("service", "MealPlanGenerator")}
}

// Generate requests a plan and decodes the answer.
func (g *LLMGenerator) Generate(ctx context.Context, request string) (*MealPlan, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return nil, fmt.Errorf("meal plan request is empty")
	}

	start := time.Now()
	text, err := g.llm.GenerateContent(ctx, buildPrompt(request))
	if err != nil {
		return nil, fmt.Errorf("failed to generate meal plan: %w", err)
	}

	plan, err := Parse([]byte(text))
	if err != nil {
		g.log.Warn("meal plan response did not decode", "error", err, "response_bytes", len(text))
		return nil, err
	}

	g.log.Info("meal plan generated",
		"days", len(plan.Days),
		"shopping_items", plan.ShoppingList.Len(),
		"latency", time.Since(start),
	)
	return plan, nil
}

func buildPrompt(request string) string {
	return `Create a meal plan for the request below. Answer with one JSON object only:
{
  "mealPlan": {"<Day>": {"<mealType>": {"name": "", "prepTime": "", "cookTime": "", "servings": 0, "ingredients": [""]}}},
  "shoppingList": {"<Category>": ["<quantity> <unit> <ingredient>"]},
  "totalEstimatedCost": ""
}
Shopping list lines must start with a numeric quantity and a unit where one applies, for example "2 cups milk" or "3 cloves garlic".

Request: ` + request
}
