// Package chat answers user messages, either through the OpenAI completion
// API or through a deterministic offline fallback when that call fails.
package chat

import (
	"context"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dharsanguruparan/insightmate/internal/assemble"
	"github.com/dharsanguruparan/insightmate/internal/model"
)

// Mode selects between generic and data-aware responses.
type Mode string

const (
	ModeGeneral      Mode = "general"
	ModePersonalized Mode = "personalized"
)

const generalSystemPrompt = `You are Insightmate, a helpful AI assistant. You can help with:
- General questions and conversation
- Programming and coding help
- Writing assistance
- Productivity tips
- Technical explanations
Be friendly, helpful, and concise in your responses.`

const personalizedSystemPrompt = `You are Insightmate, a personalized AI assistant with access to the user's portfolio, resume, and personal data. Use this information to provide context-aware, personalized responses about:
- Career advice based on their background
- Resume feedback and improvements
- Job application guidance
- Portfolio analysis
- Professional development suggestions
Always reference specific details from their data when relevant.
Be encouraging and provide actionable advice.`

const (
	maxTokens   = 1000
	temperature = 0.7
)

// completionClient is the slice of the OpenAI client the responder needs.
// *openai.Client satisfies it; tests substitute a failing or canned client.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Responder produces chat replies.
type Responder struct {
	client completionClient
	model  string
}

// New builds a Responder backed by the OpenAI API.
func New(apiKey, model string) *Responder {
	return NewWithClient(openai.NewClient(apiKey), model)
}

// NewWithClient builds a Responder around any completion client.
func NewWithClient(client completionClient, model string) *Responder {
	return &Responder{client: client, model: model}
}

// Respond answers a message. Any mode other than general is treated as
// personalized: the stored user data is rendered into the system prompt. A
// failed completion call falls back to a templated reply; the fallback never
// fails and the service is not retried within the same request.
func (r *Responder) Respond(ctx context.Context, message string, mode Mode, data *model.UserData) string {
	systemPrompt := generalSystemPrompt
	if mode != ModeGeneral {
		systemPrompt = fmt.Sprintf("%s\n\nUser Context:\n%s", personalizedSystemPrompt, assemble.Context(data))
	}
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil || len(resp.Choices) == 0 {
		if err != nil {
			log.Printf("completion call failed, using fallback: %v", err)
		}
		return r.fallback(message, mode, data)
	}
	return resp.Choices[0].Message.Content
}

func (r *Responder) fallback(message string, mode Mode, data *model.UserData) string {
	if mode == ModeGeneral {
		return fmt.Sprintf("I understand you're asking: %q\n"+
			"I'm currently running in fallback mode. Here are some ways I can help:\n"+
			"- Answer general questions about programming, career advice, and productivity\n"+
			"- Help with writing and communication\n"+
			"- Provide technical explanations\n"+
			"- Assist with project planning\n"+
			"Please note: To get full AI-powered responses, make sure to set up your OpenAI API key in the environment variables.", message)
	}
	var userInfo string
	if data != nil {
		if n := len(data.PortfolioLinks); n > 0 {
			userInfo += fmt.Sprintf("I can see you have %d portfolio links. ", n)
		}
		if n := len(data.Files); n > 0 {
			userInfo += fmt.Sprintf("You've uploaded %d files. ", n)
		}
	}
	return fmt.Sprintf("I understand you're asking: %q\n"+
		"%sI'm currently running in fallback mode, but I can still help with:\n"+
		"- General career advice based on your uploaded information\n"+
		"- Resume and portfolio feedback\n"+
		"- Job application guidance\n"+
		"- Professional development suggestions\n"+
		"To get personalized AI-powered insights, please set up your OpenAI API key.", message, userInfo)
}

// Prompts exposes the system prompts for inspection.
func (r *Responder) Prompts() map[string]string {
	return map[string]string{
		"general":      generalSystemPrompt,
		"personalized": personalizedSystemPrompt,
	}
}
