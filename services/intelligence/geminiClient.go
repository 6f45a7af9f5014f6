package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var errNoCandidates = errors.New("gemini returned no candidates")

type GeminiClient struct {
	client    *genai.Client
	modelName string
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, modelName: modelName}, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// model is built per call so tool settings never leak between requests.
func (g *GeminiClient) model(system string) *genai.GenerativeModel {
	model := g.client.GenerativeModel(g.modelName)
	model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	model.SetTemperature(0.1)
	return model
}

func firstParts(resp *genai.GenerateContentResponse) ([]genai.Part, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errNoCandidates
	}
	return resp.Candidates[0].Content.Parts, nil
}

func (g *GeminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := g.model(system).GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	parts, err := firstParts(resp)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, part := range parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}

func (g *GeminiClient) CallFunction(ctx context.Context, system, user string, spec FunctionSpec) (string, error) {
	model := g.model(system)
	model.Tools = []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  geminiSchema(spec),
		}},
	}}
	model.ToolConfig = &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode:                 genai.FunctionCallingAny,
			AllowedFunctionNames: []string{spec.Name},
		},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("gemini function call error: %w", err)
	}
	parts, err := firstParts(resp)
	if err != nil {
		return "", err
	}
	for _, part := range parts {
		if call, ok := part.(genai.FunctionCall); ok && call.Name == spec.Name {
			b, err := json.Marshal(call.Args)
			if err != nil {
				return "", fmt.Errorf("encode gemini function args: %w", err)
			}
			return string(b), nil
		}
	}
	return "", fmt.Errorf("gemini did not call %s", spec.Name)
}

func geminiSchema(spec FunctionSpec) *genai.Schema {
	props := make(map[string]*genai.Schema, len(spec.Params))
	for _, p := range spec.Params {
		t := genai.TypeString
		switch p.Type {
		case ParamInteger:
			t = genai.TypeInteger
		case ParamNumber:
			t = genai.TypeNumber
		}
		props[p.Name] = &genai.Schema{Type: t, Description: p.Description}
	}
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: spec.Required}
}
